package treasury_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Distribucion-api/internal/application/treasury"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/testutil"
)

type ledgerFixture struct {
	uc       *treasury.LedgerUseCase
	invoices *testutil.InvoiceRepo
	payments *testutil.PaymentRepo
	clients  *testutil.ClientRepo
}

// newLedgerFixture arma dos facturas (una ya vencida ante now) y un pago
// parcial intermedio.
func newLedgerFixture(t *testing.T) (*ledgerFixture, time.Time) {
	t.Helper()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	clients := testutil.NewClientRepo()
	clients.Items[testClientID] = &entity.Client{
		ID: testClientID, CompanyID: testCompanyID,
		Name: "Tienda La Esquina", DueDays: 30, IsActive: true,
		CreditLimit: decimal.NewFromInt(120),
	}

	invoices := testutil.NewInvoiceRepo()
	invoices.Invoices["inv-vencida"] = &entity.Invoice{
		ID: "inv-vencida", CompanyID: testCompanyID, ClientID: testClientID,
		Number:          entity.DocumentNumber{Series: "FE", Number: 1, Year: 2026},
		IssueDate:       now.AddDate(0, -2, 0),
		DueDate:         now.AddDate(0, -1, 0), // ya venció
		Status:          entity.InvoiceStatusPartiallyPaid,
		GrandTotal:      decimal.NewFromInt(100),
		PaidAmount:      decimal.NewFromInt(40),
		RemainingAmount: decimal.NewFromInt(60),
	}
	invoices.Invoices["inv-vigente"] = &entity.Invoice{
		ID: "inv-vigente", CompanyID: testCompanyID, ClientID: testClientID,
		Number:          entity.DocumentNumber{Series: "FE", Number: 2, Year: 2026},
		IssueDate:       now.AddDate(0, 0, -5),
		DueDate:         now.AddDate(0, 0, 25),
		Status:          entity.InvoiceStatusIssued,
		GrandTotal:      decimal.NewFromInt(80),
		PaidAmount:      decimal.Zero,
		RemainingAmount: decimal.NewFromInt(80),
	}

	payments := testutil.NewPaymentRepo()
	payments.Payments["pay-1"] = &entity.Payment{
		ID: "pay-1", CompanyID: testCompanyID, ClientID: testClientID,
		Amount:          decimal.NewFromInt(40),
		AllocatedAmount: decimal.NewFromInt(40),
		Date:            now.AddDate(0, -1, -10),
		Status:          entity.PaymentStatusActive,
		Reference:       "CONS-8841",
	}

	uc := treasury.NewLedgerUseCase(invoices, payments, clients)
	return &ledgerFixture{uc: uc, invoices: invoices, payments: payments, clients: clients}, now
}

// TestClientLedger_SaldoCorrido: asientos ordenados por fecha con el saldo
// acumulado débito-crédito y la marca de vencido contra now.
func TestClientLedger_SaldoCorrido(t *testing.T) {
	f, now := newLedgerFixture(t)

	entries, err := f.uc.ClientLedger(context.Background(), testCompanyID, testClientID, nil, nil, now)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, entity.LedgerEntryInvoice, entries[0].Type)
	assert.Equal(t, "FE-000001", entries[0].Number)
	assert.True(t, entries[0].Balance.Equal(decimal.NewFromInt(100)))
	assert.True(t, entries[0].Overdue, "vencida y con saldo")

	assert.Equal(t, entity.LedgerEntryPayment, entries[1].Type)
	assert.Equal(t, "CONS-8841", entries[1].Number)
	assert.True(t, entries[1].Credit.Equal(decimal.NewFromInt(40)))
	assert.True(t, entries[1].Balance.Equal(decimal.NewFromInt(60)))

	assert.Equal(t, entity.LedgerEntryInvoice, entries[2].Type)
	assert.True(t, entries[2].Balance.Equal(decimal.NewFromInt(140)))
	assert.False(t, entries[2].Overdue)
}

// TestClientLedger_ExcluyeAnulados: facturas y pagos anulados no aparecen.
func TestClientLedger_ExcluyeAnulados(t *testing.T) {
	f, now := newLedgerFixture(t)
	f.invoices.Invoices["inv-vigente"].Status = entity.InvoiceStatusCancelled
	f.payments.Payments["pay-1"].Status = entity.PaymentStatusCancelled

	entries, err := f.uc.ClientLedger(context.Background(), testCompanyID, testClientID, nil, nil, now)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "FE-000001", entries[0].Number)
}

// TestClientLedger_RangoDeFechas: solo asientos dentro del rango pedido.
func TestClientLedger_RangoDeFechas(t *testing.T) {
	f, now := newLedgerFixture(t)
	from := now.AddDate(0, 0, -10)

	entries, err := f.uc.ClientLedger(context.Background(), testCompanyID, testClientID, &from, nil, now)
	require.NoError(t, err)
	require.Len(t, entries, 1, "solo la factura vigente emitida hace 5 días")
	assert.Equal(t, "FE-000002", entries[0].Number)
}

func TestClientLedger_ClienteAjeno(t *testing.T) {
	f, now := newLedgerFixture(t)

	_, err := f.uc.ClientLedger(context.Background(), "co-ajena", testClientID, nil, nil, now)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// TestClientSummary: saldo por cobrar, porción vencida, vencimiento más antiguo
// y cupo de crédito excedido.
func TestClientSummary(t *testing.T) {
	f, now := newLedgerFixture(t)

	s, err := f.uc.ClientSummary(context.Background(), testCompanyID, testClientID, now)
	require.NoError(t, err)

	assert.True(t, s.Outstanding.Equal(decimal.NewFromInt(140)), "60 + 80 pendientes")
	assert.True(t, s.Overdue.Equal(decimal.NewFromInt(60)), "solo la vencida")
	require.NotNil(t, s.OldestDueDate)
	assert.True(t, s.OldestDueDate.Equal(now.AddDate(0, -1, 0)))
	assert.True(t, s.CreditExceeded, "140 > cupo de 120")
}

// TestClientSummary_SinCupo: cupo cero nunca marca excedido.
func TestClientSummary_SinCupo(t *testing.T) {
	f, now := newLedgerFixture(t)
	f.clients.Items[testClientID].CreditLimit = decimal.Zero

	s, err := f.uc.ClientSummary(context.Background(), testCompanyID, testClientID, now)
	require.NoError(t, err)
	assert.False(t, s.CreditExceeded)
}
