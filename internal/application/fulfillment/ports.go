package fulfillment

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// TxRunner ejecuta los sagas de la máquina de estados dentro de una sola
// transacción: estado de nota, entrega y pedido, consumo de inventario y
// consecutivo, o se confirman todos juntos o ninguno.
type TxRunner interface {
	RunFulfillment(ctx context.Context, fn func(
		noteRepo repository.DeliveryNoteRepository,
		deliveryRepo repository.DeliveryRepository,
		orderRepo repository.OrderRepository,
		movRepo repository.StockMovementRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}
