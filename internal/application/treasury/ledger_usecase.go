package treasury

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/application/sequence"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// LedgerUseCase proyecta el extracto del cliente: unión de facturas (débito) y
// pagos (crédito) con saldo corrido. Observador de solo lectura sobre los
// flujos de facturación y tesorería.
type LedgerUseCase struct {
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	clientRepo  repository.ClientRepository
}

// NewLedgerUseCase construye la proyección.
func NewLedgerUseCase(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	clientRepo repository.ClientRepository,
) *LedgerUseCase {
	return &LedgerUseCase{invoiceRepo: invoiceRepo, paymentRepo: paymentRepo, clientRepo: clientRepo}
}

// ClientLedger devuelve los asientos del cliente en el rango dado (nil = sin
// límite) ordenados por fecha, con saldo corrido y marca de vencido calculada
// contra now (inyectable para tests).
func (uc *LedgerUseCase) ClientLedger(ctx context.Context, companyID, clientID string, from, to *time.Time, now time.Time) ([]*entity.ClientLedgerEntry, error) {
	client, err := uc.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	if client.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	invoices, err := uc.invoiceRepo.ListByClient(ctx, clientID, from, to)
	if err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.ListByClient(ctx, clientID, from, to)
	if err != nil {
		return nil, err
	}

	entries := make([]*entity.ClientLedgerEntry, 0, len(invoices)+len(payments))
	for _, inv := range invoices {
		if inv.Status == entity.InvoiceStatusCancelled {
			continue
		}
		entries = append(entries, &entity.ClientLedgerEntry{
			Type:       entity.LedgerEntryInvoice,
			DocumentID: inv.ID,
			Number:     sequence.Format(inv.Number),
			Date:       inv.IssueDate,
			DueDate:    inv.DueDate,
			Debit:      inv.GrandTotal,
			Overdue:    inv.Outstanding() && inv.DueDate.Before(now),
		})
	}
	for _, p := range payments {
		if p.Status == entity.PaymentStatusCancelled {
			continue
		}
		entries = append(entries, &entity.ClientLedgerEntry{
			Type:       entity.LedgerEntryPayment,
			DocumentID: p.ID,
			Number:     p.Reference,
			Date:       p.Date,
			Credit:     p.Amount,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date.Equal(entries[j].Date) {
			// a igual fecha, primero el débito (factura antes que su pago)
			return entries[i].Type == entity.LedgerEntryInvoice && entries[j].Type == entity.LedgerEntryPayment
		}
		return entries[i].Date.Before(entries[j].Date)
	})

	var balance decimal.Decimal
	for _, e := range entries {
		balance = balance.Add(e.Debit).Sub(e.Credit).Round(2)
		e.Balance = balance
	}
	return entries, nil
}

// ClientSummary resume la posición del cliente: saldo por cobrar, porción
// vencida y estado del cupo de crédito.
func (uc *LedgerUseCase) ClientSummary(ctx context.Context, companyID, clientID string, now time.Time) (*entity.ClientSummary, error) {
	client, err := uc.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	if client.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	outstanding, err := uc.invoiceRepo.ListOutstandingByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	summary := &entity.ClientSummary{ClientID: clientID, CreditLimit: client.CreditLimit}
	for _, inv := range outstanding {
		summary.Outstanding = summary.Outstanding.Add(inv.RemainingAmount).Round(2)
		if inv.DueDate.Before(now) {
			summary.Overdue = summary.Overdue.Add(inv.RemainingAmount).Round(2)
		}
		if summary.OldestDueDate == nil || inv.DueDate.Before(*summary.OldestDueDate) {
			due := inv.DueDate
			summary.OldestDueDate = &due
		}
	}
	if client.CreditLimit.GreaterThan(decimal.Zero) {
		summary.CreditExceeded = summary.Outstanding.GreaterThan(client.CreditLimit)
	}
	return summary, nil
}
