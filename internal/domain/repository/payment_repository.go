package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// PaymentRepository define el puerto de persistencia de pagos y asignaciones.
type PaymentRepository interface {
	Create(ctx context.Context, p *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Payment, error)
	Update(ctx context.Context, p *entity.Payment) error
	CreateAllocation(ctx context.Context, a *entity.PaymentAllocation) error
	DeleteAllocation(ctx context.Context, allocationID string) error
	GetAllocation(ctx context.Context, allocationID string) (*entity.PaymentAllocation, error)
	ListAllocationsByPayment(ctx context.Context, paymentID string) ([]*entity.PaymentAllocation, error)
	ListAllocationsByInvoice(ctx context.Context, invoiceID string) ([]*entity.PaymentAllocation, error)
	ListByClient(ctx context.Context, clientID string, from, to *time.Time) ([]*entity.Payment, error)
}
