// Package treasury implementa la aplicación de pagos contra facturas
// pendientes (la más vieja por vencimiento primero) y el extracto del cliente.
package treasury

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

// PaymentUseCase aplica y anula pagos de clientes.
type PaymentUseCase struct {
	txRunner    TxRunner
	paymentRepo repository.PaymentRepository
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	log         *logger.Logger
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(
	txRunner TxRunner,
	paymentRepo repository.PaymentRepository,
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	log *logger.Logger,
) *PaymentUseCase {
	return &PaymentUseCase{
		txRunner:    txRunner,
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		log:         log,
	}
}

// ExplicitAllocation asigna a mano una porción del pago a una factura.
type ExplicitAllocation struct {
	InvoiceID string
	Amount    decimal.Decimal
}

// RecordPaymentInput entrada para RecordPayment.
type RecordPaymentInput struct {
	ClientID  string
	Amount    decimal.Decimal
	Date      time.Time
	Reference string
	// Allocations vacío = asignación automática la-más-vieja-primero.
	Allocations []ExplicitAllocation
}

// RecordPayment registra un pago y lo aplica contra las facturas pendientes
// del cliente. Sin asignaciones explícitas, recorre las facturas por fecha de
// vencimiento ascendente asignando min(resto del pago, saldo de la factura)
// hasta agotar el pago o las facturas elegibles. El sobrante queda en el pago
// (UnallocatedAmount), nunca se pierde. Todo en una transacción.
func (uc *PaymentUseCase) RecordPayment(ctx context.Context, companyID, userID string, in RecordPaymentInput) (*entity.Payment, error) {
	if in.ClientID == "" || !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	client, err := uc.clientRepo.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	if client.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	now := time.Now()
	payment := &entity.Payment{
		ID:                uuid.New().String(),
		CompanyID:         companyID,
		ClientID:          in.ClientID,
		Amount:            in.Amount,
		AllocatedAmount:   decimal.Zero,
		UnallocatedAmount: in.Amount,
		Date:              date,
		Status:            entity.PaymentStatusActive,
		Reference:         in.Reference,
		CreatedAt:         now,
		UpdatedAt:         now,
		CreatedBy:         userID,
	}

	err = uc.txRunner.RunTreasury(ctx, func(paymentRepo repository.PaymentRepository, invoiceRepo repository.InvoiceRepository) error {
		if err := paymentRepo.Create(ctx, payment); err != nil {
			return err
		}
		if len(in.Allocations) > 0 {
			return uc.applyExplicit(ctx, paymentRepo, invoiceRepo, payment, in.Allocations)
		}
		return uc.applyOldestDueFirst(ctx, paymentRepo, invoiceRepo, payment)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("payment_id", payment.ID).
		Str("allocated", payment.AllocatedAmount.String()).
		Str("unallocated", payment.UnallocatedAmount.String()).
		Msg("pago registrado")
	return payment, nil
}

// applyOldestDueFirst asigna el pago contra las facturas pendientes por
// vencimiento ascendente.
func (uc *PaymentUseCase) applyOldestDueFirst(ctx context.Context, paymentRepo repository.PaymentRepository, invoiceRepo repository.InvoiceRepository, payment *entity.Payment) error {
	invoices, err := invoiceRepo.ListOutstandingByClient(ctx, payment.ClientID)
	if err != nil {
		return err
	}
	rest := payment.Amount
	for _, inv := range invoices {
		if !rest.GreaterThan(decimal.Zero) {
			break
		}
		// bloquear la factura: sus saldos mutan
		locked, err := invoiceRepo.GetForUpdate(ctx, inv.ID)
		if err != nil {
			return err
		}
		if locked == nil || !locked.Outstanding() {
			continue
		}
		amount := decimal.Min(rest, locked.RemainingAmount)
		if err := uc.allocate(ctx, paymentRepo, invoiceRepo, payment, locked, amount); err != nil {
			return err
		}
		rest = rest.Sub(amount)
	}
	return paymentRepo.Update(ctx, payment)
}

// applyExplicit aplica asignaciones digitadas, validando cada monto contra el
// saldo de la factura y contra el total del pago.
func (uc *PaymentUseCase) applyExplicit(ctx context.Context, paymentRepo repository.PaymentRepository, invoiceRepo repository.InvoiceRepository, payment *entity.Payment, allocations []ExplicitAllocation) error {
	var total decimal.Decimal
	for _, a := range allocations {
		total = total.Add(a.Amount)
	}
	// la suma de asignaciones de un pago nunca supera su monto
	if total.GreaterThan(payment.Amount) {
		return domain.ErrIntegrity
	}
	for _, a := range allocations {
		if a.InvoiceID == "" || !a.Amount.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		inv, err := invoiceRepo.GetForUpdate(ctx, a.InvoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if inv.ClientID != payment.ClientID {
			return domain.ErrInvalidInput
		}
		// solo facturas vigentes con saldo reciben asignaciones; una anulada
		// no puede volver a ser pagable
		if !inv.Outstanding() {
			return domain.ErrConflict
		}
		// una asignación jamás excede el saldo de la factura
		if a.Amount.GreaterThan(inv.RemainingAmount) {
			return domain.ErrIntegrity
		}
		if err := uc.allocate(ctx, paymentRepo, invoiceRepo, payment, inv, a.Amount); err != nil {
			return err
		}
	}
	return paymentRepo.Update(ctx, payment)
}

// allocate crea la asignación y actualiza saldos del pago y la factura,
// manteniendo remaining == grand_total - paid en todo momento.
func (uc *PaymentUseCase) allocate(ctx context.Context, paymentRepo repository.PaymentRepository, invoiceRepo repository.InvoiceRepository, payment *entity.Payment, inv *entity.Invoice, amount decimal.Decimal) error {
	alloc := &entity.PaymentAllocation{
		ID:        uuid.New().String(),
		PaymentID: payment.ID,
		InvoiceID: inv.ID,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	if err := paymentRepo.CreateAllocation(ctx, alloc); err != nil {
		return err
	}
	paid := inv.PaidAmount.Add(amount)
	remaining := inv.GrandTotal.Sub(paid)
	status := entity.InvoiceStatusPartiallyPaid
	if !remaining.GreaterThan(decimal.Zero) {
		status = entity.InvoiceStatusPaid
	}
	if err := invoiceRepo.ApplyPaymentAmounts(ctx, inv.ID, paid, remaining, status); err != nil {
		return err
	}
	inv.PaidAmount = paid
	inv.RemainingAmount = remaining
	inv.Status = status
	payment.AllocatedAmount = payment.AllocatedAmount.Add(amount)
	payment.UnallocatedAmount = payment.Amount.Sub(payment.AllocatedAmount)
	payment.UpdatedAt = time.Now()
	return nil
}

// ReverseAllocation deshace una asignación: borra el vínculo y restaura los
// saldos de la factura y del pago. Es el paso previo obligatorio para poder
// anular un pago que ya tenía asignaciones.
func (uc *PaymentUseCase) ReverseAllocation(ctx context.Context, companyID, allocationID string) error {
	return uc.txRunner.RunTreasury(ctx, func(paymentRepo repository.PaymentRepository, invoiceRepo repository.InvoiceRepository) error {
		alloc, err := paymentRepo.GetAllocation(ctx, allocationID)
		if err != nil {
			return err
		}
		if alloc == nil {
			return domain.ErrNotFound
		}
		payment, err := paymentRepo.GetForUpdate(ctx, alloc.PaymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.ErrNotFound
		}
		if payment.CompanyID != companyID {
			return domain.ErrForbidden
		}
		inv, err := invoiceRepo.GetForUpdate(ctx, alloc.InvoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if err := paymentRepo.DeleteAllocation(ctx, allocationID); err != nil {
			return err
		}
		paid := inv.PaidAmount.Sub(alloc.Amount)
		remaining := inv.GrandTotal.Sub(paid)
		status := entity.InvoiceStatusPartiallyPaid
		if !paid.GreaterThan(decimal.Zero) {
			status = entity.InvoiceStatusIssued
		}
		if err := invoiceRepo.ApplyPaymentAmounts(ctx, inv.ID, paid, remaining, status); err != nil {
			return err
		}
		payment.AllocatedAmount = payment.AllocatedAmount.Sub(alloc.Amount)
		payment.UnallocatedAmount = payment.Amount.Sub(payment.AllocatedAmount)
		payment.UpdatedAt = time.Now()
		return paymentRepo.Update(ctx, payment)
	})
}

// CancelPayment anula un pago. Solo es legal con CERO asignaciones vigentes:
// un pago con asignaciones activas debe revertirlas primero (restricción
// impuesta, no consejo).
func (uc *PaymentUseCase) CancelPayment(ctx context.Context, companyID, paymentID string) error {
	return uc.txRunner.RunTreasury(ctx, func(paymentRepo repository.PaymentRepository, _ repository.InvoiceRepository) error {
		payment, err := paymentRepo.GetForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.ErrNotFound
		}
		if payment.CompanyID != companyID {
			return domain.ErrForbidden
		}
		if payment.Status == entity.PaymentStatusCancelled {
			return domain.ErrConflict
		}
		allocs, err := paymentRepo.ListAllocationsByPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if len(allocs) > 0 {
			return domain.ErrIntegrity
		}
		payment.Status = entity.PaymentStatusCancelled
		payment.UpdatedAt = time.Now()
		return paymentRepo.Update(ctx, payment)
	})
}
