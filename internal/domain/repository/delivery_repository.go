package repository

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// DeliveryRepository define el puerto de persistencia de entregas.
type DeliveryRepository interface {
	Create(ctx context.Context, d *entity.Delivery, lines []*entity.DeliveryLine) error
	GetByID(ctx context.Context, id string) (*entity.Delivery, error)
	GetLines(ctx context.Context, deliveryID string) ([]*entity.DeliveryLine, error)
	// ListByOrder devuelve todas las entregas hermanas de un pedido; el recálculo
	// de estado del pedido siempre relee esta lista dentro de la transacción.
	ListByOrder(ctx context.Context, orderID string) ([]*entity.Delivery, error)
	UpdateStatus(ctx context.Context, deliveryID, status string) error
	// SetNoticed marca/desmarca que la entrega tiene nota de entrega emitida.
	SetNoticed(ctx context.Context, deliveryID string, noticed bool) error
}

// DeliveryNoteRepository define el puerto de persistencia de notas de entrega.
type DeliveryNoteRepository interface {
	Create(ctx context.Context, n *entity.DeliveryNote, lines []*entity.DeliveryNoteLine) error
	GetByID(ctx context.Context, id string) (*entity.DeliveryNote, error)
	GetLines(ctx context.Context, noteID string) ([]*entity.DeliveryNoteLine, error)
	UpdateStatus(ctx context.Context, noteID, status, cancelReason string) error
	MarkDelivered(ctx context.Context, noteID string) error
	// UpdateLineCost persiste el costeo FIFO de una línea tras confirmar la entrega.
	UpdateLineCost(ctx context.Context, line *entity.DeliveryNoteLine) error
	// MarkReservationReleased deja constancia de que la reserva de la línea ya
	// fue liberada (guarda contra doble liberación).
	MarkReservationReleased(ctx context.Context, noteLineID string) error
	ListByIDs(ctx context.Context, ids []string) ([]*entity.DeliveryNote, error)
}
