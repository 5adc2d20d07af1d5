package billing_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Distribucion-api/internal/application/billing"
	"github.com/jhoicas/Distribucion-api/internal/application/sequence"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/testutil"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

const (
	testCompanyID = "co-1"
	testUserID    = "user-1"
	testClientID  = "cli-1"
	otherClientID = "cli-2"
	testOrderID   = "ord-1"
	deliveryID    = "del-1"
	noteID        = "note-1"
)

type fixture struct {
	uc         *billing.InvoiceUseCase
	invoices   *testutil.InvoiceRepo
	notes      *testutil.DeliveryNoteRepo
	deliveries *testutil.DeliveryRepo
	orders     *testutil.OrderRepo
	clients    *testutil.ClientRepo
	companies  *testutil.CompanyRepo
}

// newFixture arma una nota DELIVERED con tres líneas (producto, servicio,
// manual), su entrega y pedido, dos clientes y la serie FE activa.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	companies := testutil.NewCompanyRepo()
	companies.Items[testCompanyID] = &entity.Company{
		ID:          testCompanyID,
		Name:        "Distribuidora El Valle",
		TaxID:       "900123456",
		Email:       "facturacion@elvalle.co",
		BankName:    "Bancolombia",
		BankAccount: "123-456789-00",
	}

	clients := testutil.NewClientRepo()
	clients.Items[testClientID] = &entity.Client{
		ID: testClientID, CompanyID: testCompanyID,
		Name: "Tienda La Esquina", TaxID: "800987654", DueDays: 30, IsActive: true,
	}
	clients.Items[otherClientID] = &entity.Client{
		ID: otherClientID, CompanyID: testCompanyID,
		Name: "Supermercado Central", TaxID: "800111222", DueDays: 15, IsActive: true,
	}

	orders := testutil.NewOrderRepo()
	require.NoError(t, orders.Create(ctx, &entity.Order{
		ID: testOrderID, CompanyID: testCompanyID, ClientID: testClientID,
		Status: entity.OrderStatusDelivered,
	}, nil))

	deliveries := testutil.NewDeliveryRepo()
	require.NoError(t, deliveries.Create(ctx, &entity.Delivery{
		ID: deliveryID, CompanyID: testCompanyID, OrderID: testOrderID,
		Status: entity.DeliveryStatusDelivered, Noticed: true,
	}, nil))

	notes := testutil.NewDeliveryNoteRepo()
	require.NoError(t, notes.Create(ctx, &entity.DeliveryNote{
		ID: noteID, CompanyID: testCompanyID, DeliveryID: deliveryID,
		OrderID: testOrderID, ClientID: testClientID,
		Number: entity.DocumentNumber{Series: "AVZ", Number: 7, Year: 2026},
		Status: entity.NoteStatusDelivered,
	}, []*entity.DeliveryNoteLine{
		{
			ID: "nl-prod", NoteID: noteID, ProductID: "prod-1", ProductName: "Agua 600ml",
			ItemKind: entity.ItemKindProduct,
			Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromFloat(10),
			VATRate: decimal.NewFromFloat(0.19), LineCostFIFO: decimal.NewFromFloat(60),
		},
		{
			ID: "nl-srv", NoteID: noteID, ProductID: "srv-1", ProductName: "Flete urbano",
			ItemKind: entity.ItemKindService, ServiceID: "srv-1",
			Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(20),
			VATRate: decimal.Zero,
		},
		{
			ID: "nl-man", NoteID: noteID, ProductName: "Descuento acordado",
			IsManual: true, ItemKind: entity.ItemKindProduct,
			Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(5),
			VATRate: decimal.Zero,
		},
	}))

	invoices := testutil.NewInvoiceRepo()
	series := testutil.NewSeriesRepo(&entity.Series{
		ID: "s-fe", CompanyID: testCompanyID, Name: "FE",
		DocType: entity.DocTypeInvoice, IsActive: true,
	})
	tx := &testutil.TxRunner{
		Invoices:   invoices,
		Notes:      notes,
		Deliveries: deliveries,
		Orders:     orders,
		Seq:        testutil.NewSequenceRepo(),
	}
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	uc := billing.NewInvoiceUseCase(tx, sequence.NewNumberingService(series),
		invoices, notes, deliveries, orders, clients, companies, log)

	return &fixture{uc: uc, invoices: invoices, notes: notes,
		deliveries: deliveries, orders: orders, clients: clients, companies: companies}
}

// TestConsolidate_ClasificacionYTotales: cada línea cae en su categoría por
// prioridad (manual > servicio > producto) y los totales suman por categoría
// con redondeo en cada paso.
func TestConsolidate_ClasificacionYTotales(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Consolidate(context.Background(), testCompanyID, []string{noteID})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)

	byCategory := map[string]*entity.InvoiceItem{}
	for _, it := range res.Items {
		byCategory[it.Category] = it
	}
	require.Contains(t, byCategory, entity.LineCategoryProduct)
	require.Contains(t, byCategory, entity.LineCategoryService)
	require.Contains(t, byCategory, entity.LineCategoryManual)

	prod := byCategory[entity.LineCategoryProduct]
	assert.True(t, prod.Subtotal.Equal(decimal.NewFromFloat(100)))
	assert.True(t, prod.VATAmount.Equal(decimal.NewFromFloat(19)))
	assert.True(t, prod.Cost.Equal(decimal.NewFromFloat(60)))

	assert.True(t, res.Totals.Product.Margin.Equal(decimal.NewFromFloat(40)),
		"margen producto = (100-60)/100*100")
	assert.True(t, res.Totals.Overall.Subtotal.Equal(decimal.NewFromFloat(125)))
	assert.True(t, res.Totals.Overall.VAT.Equal(decimal.NewFromFloat(19)))
}

// TestConsolidate_NotaNoEntregada: solo notas DELIVERED son facturables.
func TestConsolidate_NotaNoEntregada(t *testing.T) {
	f := newFixture(t)
	f.notes.Notes[noteID].Status = entity.NoteStatusInTransit

	_, err := f.uc.Consolidate(context.Background(), testCompanyID, []string{noteID})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// TestCreateInvoice_Emision: consecutivo FE-1, snapshots congelados, vencimiento
// según plazo del cliente, fuentes a INVOICED y pedido recalculado.
func TestCreateInvoice_Emision(t *testing.T) {
	f := newFixture(t)

	inv, err := f.uc.CreateInvoice(context.Background(), testCompanyID, testUserID, billing.CreateInvoiceInput{
		ClientID:      testClientID,
		SourceNoteIDs: []string{noteID},
	})
	require.NoError(t, err)

	assert.Equal(t, "FE", inv.Number.Series)
	assert.Equal(t, int64(1), inv.Number.Number)
	assert.Equal(t, entity.InvoiceStatusIssued, inv.Status)
	assert.Equal(t, entity.EInvoiceStatusNone, inv.EInvoiceStatus)
	assert.Equal(t, "Tienda La Esquina", inv.ClientSnapshot.Name)
	assert.Equal(t, "Distribuidora El Valle", inv.CompanySnapshot.Name)
	assert.True(t, inv.DueDate.Equal(inv.IssueDate.AddDate(0, 0, 30)), "plazo del cliente")

	// 125 + 19 de IVA
	assert.True(t, inv.GrandTotal.Equal(decimal.NewFromFloat(144)))
	assert.True(t, inv.RemainingAmount.Equal(inv.GrandTotal))
	assert.True(t, inv.PaidAmount.IsZero())

	assert.Equal(t, entity.NoteStatusInvoiced, f.notes.Notes[noteID].Status)
	assert.Equal(t, entity.DeliveryStatusInvoiced, f.deliveries.Deliveries[deliveryID].Status)
	assert.Equal(t, entity.OrderStatusInvoiced, f.orders.Orders[testOrderID].Status)
}

// TestCreateInvoice_EmpresaSinDatosFiscales: sin email/banco la generación se
// bloquea completa con error de dependencia.
func TestCreateInvoice_EmpresaSinDatosFiscales(t *testing.T) {
	f := newFixture(t)
	f.companies.Items[testCompanyID].BankAccount = ""

	_, err := f.uc.CreateInvoice(context.Background(), testCompanyID, testUserID, billing.CreateInvoiceInput{
		ClientID:      testClientID,
		SourceNoteIDs: []string{noteID},
	})
	assert.ErrorIs(t, err, domain.ErrDependency)
	assert.Equal(t, entity.NoteStatusDelivered, f.notes.Notes[noteID].Status, "nada cambió")
}

// TestCreateInvoice_SoloManual: factura sin notas origen, con líneas digitadas.
func TestCreateInvoice_SoloManual(t *testing.T) {
	f := newFixture(t)

	inv, err := f.uc.CreateInvoice(context.Background(), testCompanyID, testUserID, billing.CreateInvoiceInput{
		ClientID: testClientID,
		ManualItems: []billing.ManualItemInput{{
			Description: "Alquiler de estiba",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.NewFromFloat(30),
			VATRate:     decimal.NewFromFloat(19), // porcentaje, no fracción
		}},
	})
	require.NoError(t, err)
	// 60 + 19% = 71.40
	assert.True(t, inv.GrandTotal.Equal(decimal.NewFromFloat(71.40)),
		"la tarifa se acepta como porcentaje o fracción, got %s", inv.GrandTotal)
	assert.True(t, inv.Totals.Manual.Subtotal.Equal(decimal.NewFromFloat(60)))
}

// TestCreateSplitInvoices_60_40: dos hermanas con un SplitGroupID, consecutivos
// propios, snapshot fiscal de cada cliente y sumas exactas (el residuo de
// redondeo va a la última).
func TestCreateSplitInvoices_60_40(t *testing.T) {
	f := newFixture(t)

	ids, err := f.uc.CreateSplitInvoices(context.Background(), testCompanyID, testUserID,
		billing.SplitCommonData{SourceNoteIDs: []string{noteID}},
		nil,
		[]billing.SplitConfig{
			{ClientID: testClientID, Percentage: decimal.NewFromInt(60)},
			{ClientID: otherClientID, Percentage: decimal.NewFromInt(40)},
		})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	first := f.invoices.Invoices[ids[0]]
	second := f.invoices.Invoices[ids[1]]

	assert.NotEmpty(t, first.SplitGroupID)
	assert.Equal(t, first.SplitGroupID, second.SplitGroupID)
	assert.NotEqual(t, first.Number.Number, second.Number.Number)
	assert.Equal(t, "Tienda La Esquina", first.ClientSnapshot.Name)
	assert.Equal(t, "Supermercado Central", second.ClientSnapshot.Name)

	// las hermanas suman exacto el original: subtotal 125, IVA 19
	sumSub := first.Totals.Overall.Subtotal.Add(second.Totals.Overall.Subtotal)
	sumVAT := first.Totals.Overall.VAT.Add(second.Totals.Overall.VAT)
	assert.True(t, sumSub.Equal(decimal.NewFromFloat(125)), "subtotales suman el original, got %s", sumSub)
	assert.True(t, sumVAT.Equal(decimal.NewFromFloat(19)))

	assert.Equal(t, entity.NoteStatusInvoiced, f.notes.Notes[noteID].Status)
}

// TestCreateSplitInvoices_PorcentajesInvalidos: una suma distinta de 100 es
// error de integridad del llamador; jamás se reescala en silencio.
func TestCreateSplitInvoices_PorcentajesInvalidos(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateSplitInvoices(context.Background(), testCompanyID, testUserID,
		billing.SplitCommonData{SourceNoteIDs: []string{noteID}},
		nil,
		[]billing.SplitConfig{
			{ClientID: testClientID, Percentage: decimal.NewFromInt(60)},
			{ClientID: otherClientID, Percentage: decimal.NewFromInt(30)},
		})
	assert.ErrorIs(t, err, domain.ErrIntegrity)
	assert.Empty(t, f.invoices.Invoices, "ninguna hermana emitida")
}

// TestCancelInvoice_RevierteFuentes: la anulación devuelve nota y entrega a
// DELIVERED y recalcula el pedido.
func TestCancelInvoice_RevierteFuentes(t *testing.T) {
	f := newFixture(t)
	inv, err := f.uc.CreateInvoice(context.Background(), testCompanyID, testUserID, billing.CreateInvoiceInput{
		ClientID: testClientID, SourceNoteIDs: []string{noteID},
	})
	require.NoError(t, err)

	require.NoError(t, f.uc.CancelInvoice(context.Background(), testCompanyID, inv.ID, "cliente devolvió la mercancía"))

	assert.Equal(t, entity.InvoiceStatusCancelled, f.invoices.Invoices[inv.ID].Status)
	assert.Equal(t, entity.NoteStatusDelivered, f.notes.Notes[noteID].Status)
	assert.Equal(t, entity.DeliveryStatusDelivered, f.deliveries.Deliveries[deliveryID].Status)
	assert.Equal(t, entity.OrderStatusDelivered, f.orders.Orders[testOrderID].Status)
}

// TestCancelInvoice_ConPagoRechazada: pagos aplicados bloquean la anulación.
func TestCancelInvoice_ConPagoRechazada(t *testing.T) {
	f := newFixture(t)
	inv, err := f.uc.CreateInvoice(context.Background(), testCompanyID, testUserID, billing.CreateInvoiceInput{
		ClientID: testClientID, SourceNoteIDs: []string{noteID},
	})
	require.NoError(t, err)
	inv.PaidAmount = decimal.NewFromFloat(10)

	err = f.uc.CancelInvoice(context.Background(), testCompanyID, inv.ID, "intento de anulación")
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

// TestCancelInvoice_HermanaDeDivision: una hermana no se anula suelta; solo en
// bloque por grupo.
func TestCancelInvoice_HermanaDeDivision(t *testing.T) {
	f := newFixture(t)
	ids, err := f.uc.CreateSplitInvoices(context.Background(), testCompanyID, testUserID,
		billing.SplitCommonData{SourceNoteIDs: []string{noteID}},
		nil,
		[]billing.SplitConfig{
			{ClientID: testClientID, Percentage: decimal.NewFromInt(50)},
			{ClientID: otherClientID, Percentage: decimal.NewFromInt(50)},
		})
	require.NoError(t, err)

	err = f.uc.CancelInvoice(context.Background(), testCompanyID, ids[0], "anulación individual")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// TestCancelSplitGroup_TodoONada: con una hermana enviada a la autoridad el
// grupo completo se rechaza y ninguna cambia de estado.
func TestCancelSplitGroup_TodoONada(t *testing.T) {
	f := newFixture(t)
	ids, err := f.uc.CreateSplitInvoices(context.Background(), testCompanyID, testUserID,
		billing.SplitCommonData{SourceNoteIDs: []string{noteID}},
		nil,
		[]billing.SplitConfig{
			{ClientID: testClientID, Percentage: decimal.NewFromInt(50)},
			{ClientID: otherClientID, Percentage: decimal.NewFromInt(50)},
		})
	require.NoError(t, err)
	groupID := f.invoices.Invoices[ids[0]].SplitGroupID

	// una hermana ya salió del dominio propio
	f.invoices.Invoices[ids[1]].EInvoiceStatus = entity.EInvoiceStatusSent

	err = f.uc.CancelSplitGroup(context.Background(), testCompanyID, groupID, "anulación del grupo")
	assert.ErrorIs(t, err, domain.ErrIntegrity)
	assert.Equal(t, entity.InvoiceStatusIssued, f.invoices.Invoices[ids[0]].Status, "ninguna hermana anulada")
	assert.Equal(t, entity.InvoiceStatusIssued, f.invoices.Invoices[ids[1]].Status)

	// sin el bloqueo, el grupo completo se anula y las fuentes vuelven
	f.invoices.Invoices[ids[1]].EInvoiceStatus = entity.EInvoiceStatusNone
	require.NoError(t, f.uc.CancelSplitGroup(context.Background(), testCompanyID, groupID, "anulación del grupo"))
	assert.Equal(t, entity.InvoiceStatusCancelled, f.invoices.Invoices[ids[0]].Status)
	assert.Equal(t, entity.InvoiceStatusCancelled, f.invoices.Invoices[ids[1]].Status)
	assert.Equal(t, entity.NoteStatusDelivered, f.notes.Notes[noteID].Status)
}
