package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Distribucion-api/internal/application/billing"
	"github.com/jhoicas/Distribucion-api/internal/application/fulfillment"
	"github.com/jhoicas/Distribucion-api/internal/application/inventory"
	"github.com/jhoicas/Distribucion-api/internal/application/treasury"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// Verificaciones de interfaz en compile-time.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ fulfillment.TxRunner = (*TxRunner)(nil)
var _ billing.TxRunner = (*TxRunner)(nil)
var _ treasury.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	orderRepo repository.OrderRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	movRepo := NewStockMovementRepository(tx)
	orderRepo := NewOrderRepository(tx)

	if err := fn(movRepo, orderRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunFulfillment inicia una transacción con los repos del flujo de entregas:
// notas, entregas, pedidos, libro de inventario y consecutivo.
func (r *TxRunner) RunFulfillment(ctx context.Context, fn func(
	noteRepo repository.DeliveryNoteRepository,
	deliveryRepo repository.DeliveryRepository,
	orderRepo repository.OrderRepository,
	movRepo repository.StockMovementRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	noteRepo := NewDeliveryNoteRepository(tx)
	deliveryRepo := NewDeliveryRepository(tx)
	orderRepo := NewOrderRepository(tx)
	movRepo := NewStockMovementRepository(tx)
	seqRepo := NewSequenceRepository(tx)

	if err := fn(noteRepo, deliveryRepo, orderRepo, movRepo, seqRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunBilling inicia una transacción con los repos de facturación.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	noteRepo repository.DeliveryNoteRepository,
	deliveryRepo repository.DeliveryRepository,
	orderRepo repository.OrderRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	invoiceRepo := NewInvoiceRepository(tx)
	noteRepo := NewDeliveryNoteRepository(tx)
	deliveryRepo := NewDeliveryRepository(tx)
	orderRepo := NewOrderRepository(tx)
	seqRepo := NewSequenceRepository(tx)

	if err := fn(invoiceRepo, noteRepo, deliveryRepo, orderRepo, seqRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunTreasury inicia una transacción con los repos de tesorería.
func (r *TxRunner) RunTreasury(ctx context.Context, fn func(
	paymentRepo repository.PaymentRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	paymentRepo := NewPaymentRepository(tx)
	invoiceRepo := NewInvoiceRepository(tx)

	if err := fn(paymentRepo, invoiceRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
