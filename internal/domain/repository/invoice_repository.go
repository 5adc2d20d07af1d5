package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InvoiceRepository define el puerto de persistencia de facturas y sus líneas.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice, items []*entity.InvoiceItem) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error)
	// GetForUpdate bloquea la fila de la factura (saldos mutados por asignaciones).
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	ListBySplitGroup(ctx context.Context, splitGroupID string) ([]*entity.Invoice, error)
	// ListOutstandingByClient devuelve facturas con saldo pendiente del cliente
	// ordenadas por fecha de vencimiento ascendente (la más vieja primero).
	ListOutstandingByClient(ctx context.Context, clientID string) ([]*entity.Invoice, error)
	ListByClient(ctx context.Context, clientID string, from, to *time.Time) ([]*entity.Invoice, error)
	UpdateStatus(ctx context.Context, id, status, cancelReason string) error
	UpdateEInvoiceStatus(ctx context.Context, id, status string) error
	// ApplyPaymentAmounts actualiza paid/remaining/status de forma consistente:
	// remaining siempre queda igual a grand_total - paid.
	ApplyPaymentAmounts(ctx context.Context, id string, paid, remaining decimal.Decimal, status string) error
}
