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
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

const (
	testCompanyID = "co-1"
	testUserID    = "user-1"
	testClientID  = "cli-1"
)

type fixture struct {
	uc       *treasury.PaymentUseCase
	invoices *testutil.InvoiceRepo
	payments *testutil.PaymentRepo
	clients  *testutil.ClientRepo
}

// newFixture arma un cliente con dos facturas pendientes de 100 cada una; la
// primera vence antes.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	clients := testutil.NewClientRepo()
	clients.Items[testClientID] = &entity.Client{
		ID: testClientID, CompanyID: testCompanyID,
		Name: "Tienda La Esquina", DueDays: 30, IsActive: true,
	}

	invoices := testutil.NewInvoiceRepo()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, inv := range []struct {
		id  string
		due time.Time
	}{
		{"inv-vieja", base.AddDate(0, 0, 10)},
		{"inv-nueva", base.AddDate(0, 0, 20)},
	} {
		invoices.Invoices[inv.id] = &entity.Invoice{
			ID: inv.id, CompanyID: testCompanyID, ClientID: testClientID,
			Number:          entity.DocumentNumber{Series: "FE", Number: int64(i + 1), Year: 2026},
			IssueDate:       base,
			DueDate:         inv.due,
			Status:          entity.InvoiceStatusIssued,
			GrandTotal:      decimal.NewFromInt(100),
			PaidAmount:      decimal.Zero,
			RemainingAmount: decimal.NewFromInt(100),
		}
	}

	payments := testutil.NewPaymentRepo()
	tx := &testutil.TxRunner{Payments: payments, Invoices: invoices}
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	uc := treasury.NewPaymentUseCase(tx, payments, invoices, clients, log)
	return &fixture{uc: uc, invoices: invoices, payments: payments, clients: clients}
}

// TestRecordPayment_AutoAsignacion: 150 contra dos facturas de 100; la más
// próxima a vencer queda PAID y la siguiente PARTIALLY_PAID con saldo 50.
func TestRecordPayment_AutoAsignacion(t *testing.T) {
	f := newFixture(t)

	p, err := f.uc.RecordPayment(context.Background(), testCompanyID, testUserID, treasury.RecordPaymentInput{
		ClientID: testClientID,
		Amount:   decimal.NewFromInt(150),
	})
	require.NoError(t, err)

	vieja := f.invoices.Invoices["inv-vieja"]
	nueva := f.invoices.Invoices["inv-nueva"]
	assert.Equal(t, entity.InvoiceStatusPaid, vieja.Status)
	assert.True(t, vieja.RemainingAmount.IsZero())
	assert.Equal(t, entity.InvoiceStatusPartiallyPaid, nueva.Status)
	assert.True(t, nueva.RemainingAmount.Equal(decimal.NewFromInt(50)))

	assert.True(t, p.AllocatedAmount.Equal(decimal.NewFromInt(150)))
	assert.True(t, p.UnallocatedAmount.IsZero())

	allocs, err := f.payments.ListAllocationsByPayment(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, allocs, 2)
}

// TestRecordPayment_Sobrepago: el sobrante queda en el pago, nunca se pierde.
func TestRecordPayment_Sobrepago(t *testing.T) {
	f := newFixture(t)

	p, err := f.uc.RecordPayment(context.Background(), testCompanyID, testUserID, treasury.RecordPaymentInput{
		ClientID: testClientID,
		Amount:   decimal.NewFromInt(250),
	})
	require.NoError(t, err)

	assert.True(t, p.AllocatedAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, p.UnallocatedAmount.Equal(decimal.NewFromInt(50)), "sobrante disponible")
	assert.Equal(t, entity.InvoiceStatusPaid, f.invoices.Invoices["inv-vieja"].Status)
	assert.Equal(t, entity.InvoiceStatusPaid, f.invoices.Invoices["inv-nueva"].Status)
}

// TestRecordPayment_IgnoraAnuladas: las facturas anuladas no son elegibles.
func TestRecordPayment_IgnoraAnuladas(t *testing.T) {
	f := newFixture(t)
	f.invoices.Invoices["inv-vieja"].Status = entity.InvoiceStatusCancelled

	p, err := f.uc.RecordPayment(context.Background(), testCompanyID, testUserID, treasury.RecordPaymentInput{
		ClientID: testClientID,
		Amount:   decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceStatusCancelled, f.invoices.Invoices["inv-vieja"].Status)
	assert.Equal(t, entity.InvoiceStatusPaid, f.invoices.Invoices["inv-nueva"].Status)
	assert.True(t, p.UnallocatedAmount.IsZero())
}

// TestRecordPayment_AsignacionExplicitaContraAnulada: una factura anulada no
// acepta asignaciones explícitas; sus saldos y estado quedan intactos.
func TestRecordPayment_AsignacionExplicitaContraAnulada(t *testing.T) {
	f := newFixture(t)
	f.invoices.Invoices["inv-vieja"].Status = entity.InvoiceStatusCancelled

	_, err := f.uc.RecordPayment(context.Background(), testCompanyID, testUserID, treasury.RecordPaymentInput{
		ClientID: testClientID,
		Amount:   decimal.NewFromInt(50),
		Allocations: []treasury.ExplicitAllocation{
			{InvoiceID: "inv-vieja", Amount: decimal.NewFromInt(50)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	vieja := f.invoices.Invoices["inv-vieja"]
	assert.Equal(t, entity.InvoiceStatusCancelled, vieja.Status, "sigue anulada")
	assert.True(t, vieja.PaidAmount.IsZero())
	assert.Empty(t, f.payments.Allocations, "ninguna asignación creada")
}

// TestRecordPayment_AsignacionExplicita: el llamador elige la factura nueva
// aunque la vieja venza antes.
func TestRecordPayment_AsignacionExplicita(t *testing.T) {
	f := newFixture(t)

	p, err := f.uc.RecordPayment(context.Background(), testCompanyID, testUserID, treasury.RecordPaymentInput{
		ClientID: testClientID,
		Amount:   decimal.NewFromInt(80),
		Allocations: []treasury.ExplicitAllocation{
			{InvoiceID: "inv-nueva", Amount: decimal.NewFromInt(60)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceStatusIssued, f.invoices.Invoices["inv-vieja"].Status, "la vieja intacta")
	assert.True(t, f.invoices.Invoices["inv-nueva"].RemainingAmount.Equal(decimal.NewFromInt(40)))
	assert.True(t, p.UnallocatedAmount.Equal(decimal.NewFromInt(20)))
}

// TestRecordPayment_AsignacionExcedeElPago: la suma de asignaciones nunca
// supera el monto del pago.
func TestRecordPayment_AsignacionExcedeElPago(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.RecordPayment(context.Background(), testCompanyID, testUserID, treasury.RecordPaymentInput{
		ClientID: testClientID,
		Amount:   decimal.NewFromInt(100),
		Allocations: []treasury.ExplicitAllocation{
			{InvoiceID: "inv-vieja", Amount: decimal.NewFromInt(70)},
			{InvoiceID: "inv-nueva", Amount: decimal.NewFromInt(70)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

// TestRecordPayment_AsignacionExcedeSaldo: una asignación mayor al saldo de la
// factura se rechaza.
func TestRecordPayment_AsignacionExcedeSaldo(t *testing.T) {
	f := newFixture(t)
	f.invoices.Invoices["inv-vieja"].PaidAmount = decimal.NewFromInt(90)
	f.invoices.Invoices["inv-vieja"].RemainingAmount = decimal.NewFromInt(10)

	_, err := f.uc.RecordPayment(context.Background(), testCompanyID, testUserID, treasury.RecordPaymentInput{
		ClientID: testClientID,
		Amount:   decimal.NewFromInt(50),
		Allocations: []treasury.ExplicitAllocation{
			{InvoiceID: "inv-vieja", Amount: decimal.NewFromInt(20)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

func TestRecordPayment_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.RecordPayment(ctx, testCompanyID, testUserID, treasury.RecordPaymentInput{
		ClientID: testClientID, Amount: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "monto cero")

	_, err = f.uc.RecordPayment(ctx, "co-ajena", testUserID, treasury.RecordPaymentInput{
		ClientID: testClientID, Amount: decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden, "cliente de otra empresa")
}

// TestReverseAllocation: deshacer la asignación restaura saldos y estado de la
// factura y libera el monto en el pago.
func TestReverseAllocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.uc.RecordPayment(ctx, testCompanyID, testUserID, treasury.RecordPaymentInput{
		ClientID: testClientID,
		Amount:   decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	allocs, err := f.payments.ListAllocationsByPayment(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, allocs, 1)

	require.NoError(t, f.uc.ReverseAllocation(ctx, testCompanyID, allocs[0].ID))

	vieja := f.invoices.Invoices["inv-vieja"]
	assert.Equal(t, entity.InvoiceStatusIssued, vieja.Status)
	assert.True(t, vieja.PaidAmount.IsZero())
	assert.True(t, vieja.RemainingAmount.Equal(decimal.NewFromInt(100)))

	assert.True(t, f.payments.Payments[p.ID].AllocatedAmount.IsZero())
	assert.True(t, f.payments.Payments[p.ID].UnallocatedAmount.Equal(decimal.NewFromInt(100)))
}

// TestCancelPayment: con asignaciones vigentes se rechaza; tras revertirlas
// procede, y anular dos veces es conflicto.
func TestCancelPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.uc.RecordPayment(ctx, testCompanyID, testUserID, treasury.RecordPaymentInput{
		ClientID: testClientID,
		Amount:   decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	err = f.uc.CancelPayment(ctx, testCompanyID, p.ID)
	assert.ErrorIs(t, err, domain.ErrIntegrity, "asignaciones vigentes")

	allocs, err := f.payments.ListAllocationsByPayment(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, f.uc.ReverseAllocation(ctx, testCompanyID, allocs[0].ID))

	require.NoError(t, f.uc.CancelPayment(ctx, testCompanyID, p.ID))
	assert.Equal(t, entity.PaymentStatusCancelled, f.payments.Payments[p.ID].Status)

	err = f.uc.CancelPayment(ctx, testCompanyID, p.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "ya anulado")
}
