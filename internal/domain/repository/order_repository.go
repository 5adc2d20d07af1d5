package repository

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// OrderRepository define el puerto de persistencia de pedidos y sus líneas,
// incluido el contador de reserva de stock por línea.
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order, lines []*entity.OrderLine) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetLines(ctx context.Context, orderID string) ([]*entity.OrderLine, error)
	GetLine(ctx context.Context, lineID string) (*entity.OrderLine, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
	// ReleaseReservation descuenta qty del contador de reserva de la línea,
	// sin dejarlo negativo. Debe llamarse exactamente una vez por línea de nota.
	ReleaseReservation(ctx context.Context, orderLineID string, qty decimal.Decimal) error
	AddDeliveredQty(ctx context.Context, orderLineID string, qty decimal.Decimal) error
}
