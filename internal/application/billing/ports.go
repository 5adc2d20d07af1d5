package billing

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// TxRunner ejecuta las mutaciones de facturación dentro de una sola
// transacción: factura, estados de notas/entregas/pedidos y consecutivo.
type TxRunner interface {
	RunBilling(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		noteRepo repository.DeliveryNoteRepository,
		deliveryRepo repository.DeliveryRepository,
		orderRepo repository.OrderRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}
