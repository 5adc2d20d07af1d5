package treasury

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// TxRunner ejecuta las mutaciones de tesorería (pago + asignaciones + saldos de
// factura) dentro de una sola transacción.
type TxRunner interface {
	RunTreasury(ctx context.Context, fn func(
		paymentRepo repository.PaymentRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}
