package fulfillment_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Distribucion-api/internal/application/fulfillment"
	"github.com/jhoicas/Distribucion-api/internal/application/inventory"
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
	testProductID = "prod-1"
	testOrderID   = "ord-1"
	testLineID    = "ordline-1"
	deliveryID    = "del-1"
)

type fixture struct {
	uc         *fulfillment.UseCase
	ledger     *inventory.LedgerUseCase
	orders     *testutil.OrderRepo
	deliveries *testutil.DeliveryRepo
	notes      *testutil.DeliveryNoteRepo
	movRepo    *testutil.StockMovementRepo
	series     *testutil.SeriesRepo
}

// newFixture arma un pedido confirmado con una entrega programada de 10
// unidades reservadas, stock en capas y una serie AVZ activa.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	products := testutil.NewProductRepo()
	products.Items[testProductID] = &entity.Product{
		ID:            testProductID,
		CompanyID:     testCompanyID,
		Name:          "Agua 600ml",
		Kind:          entity.ItemKindProduct,
		UnitFactor:    decimal.NewFromInt(1),
		ReferenceCost: decimal.NewFromFloat(4),
		IsActive:      true,
	}

	orders := testutil.NewOrderRepo()
	require.NoError(t, orders.Create(ctx, &entity.Order{
		ID:        testOrderID,
		CompanyID: testCompanyID,
		ClientID:  testClientID,
		Status:    entity.OrderStatusScheduled,
	}, []*entity.OrderLine{{
		ID:               testLineID,
		OrderID:          testOrderID,
		ProductID:        testProductID,
		ProductName:      "Agua 600ml",
		Quantity:         decimal.NewFromInt(10),
		UnitFactor:       decimal.NewFromInt(1),
		UnitPrice:        decimal.NewFromFloat(10),
		VATRate:          decimal.NewFromFloat(0.19),
		ReservedQuantity: decimal.NewFromInt(10),
	}}))

	deliveries := testutil.NewDeliveryRepo()
	require.NoError(t, deliveries.Create(ctx, &entity.Delivery{
		ID:        deliveryID,
		CompanyID: testCompanyID,
		OrderID:   testOrderID,
		Status:    entity.DeliveryStatusScheduled,
		Location:  "BODEGA-1",
	}, []*entity.DeliveryLine{{
		ID:          "delline-1",
		DeliveryID:  deliveryID,
		OrderLineID: testLineID,
		ProductID:   testProductID,
		ProductName: "Agua 600ml",
		Quantity:    decimal.NewFromInt(10),
		UnitPrice:   decimal.NewFromFloat(10),
		VATRate:     decimal.NewFromFloat(0.19),
	}}))

	movRepo := testutil.NewStockMovementRepo()
	notes := testutil.NewDeliveryNoteRepo()
	series := testutil.NewSeriesRepo(&entity.Series{
		ID: "s-avz", CompanyID: testCompanyID, Name: "AVZ",
		DocType: entity.DocTypeDeliveryNote, IsActive: true,
	})

	tx := &testutil.TxRunner{
		Mov:        movRepo,
		Orders:     orders,
		Deliveries: deliveries,
		Notes:      notes,
		Seq:        testutil.NewSequenceRepo(),
	}
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	ledger := inventory.NewLedgerUseCase(tx, products, log)
	uc := fulfillment.NewUseCase(tx, sequence.NewNumberingService(series), ledger,
		deliveries, notes, orders, products, log)

	return &fixture{uc: uc, ledger: ledger, orders: orders, deliveries: deliveries,
		notes: notes, movRepo: movRepo, series: series}
}

func (f *fixture) stock(t *testing.T, qty, cost float64) {
	t.Helper()
	c := decimal.NewFromFloat(cost)
	_, err := f.ledger.RegisterMovement(context.Background(), inventory.MovementInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		ProductID: testProductID,
		Type:      entity.MovementTypeGoodsIn,
		Quantity:  decimal.NewFromFloat(qty),
		UnitCost:  &c,
	})
	require.NoError(t, err)
}

func (f *fixture) createNote(t *testing.T) *entity.DeliveryNote {
	t.Helper()
	res, err := f.uc.CreateDeliveryNote(context.Background(), testCompanyID, testUserID, deliveryID, "")
	require.NoError(t, err)
	require.False(t, res.RequireSeriesSelection)
	require.NotNil(t, res.Note)
	return res.Note
}

// TestCreateDeliveryNote_Emision: la nota nace IN_TRANSIT con consecutivo
// AVZ-1, líneas congeladas de la entrega, y la entrega pasa a IN_TRANSIT con
// el flag de nota puesto.
func TestCreateDeliveryNote_Emision(t *testing.T) {
	f := newFixture(t)

	note := f.createNote(t)

	assert.Equal(t, entity.NoteStatusInTransit, note.Status)
	assert.Equal(t, "AVZ", note.Number.Series)
	assert.Equal(t, int64(1), note.Number.Number)
	assert.Equal(t, testClientID, note.ClientID)

	delivery := f.deliveries.Deliveries[deliveryID]
	assert.Equal(t, entity.DeliveryStatusInTransit, delivery.Status)
	assert.True(t, delivery.Noticed)

	lines, err := f.notes.GetLines(context.Background(), note.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, testLineID, lines[0].OrderLineID)
	assert.Equal(t, entity.ItemKindProduct, lines[0].ItemKind)
	assert.False(t, lines[0].ReservationReleased)
}

// TestCreateDeliveryNote_SegundaNotaRechazada: con nota vigente la entrega no
// admite otra.
func TestCreateDeliveryNote_SegundaNotaRechazada(t *testing.T) {
	f := newFixture(t)
	f.createNote(t)

	_, err := f.uc.CreateDeliveryNote(context.Background(), testCompanyID, testUserID, deliveryID, "")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// TestCreateDeliveryNote_SeriesAmbigua: con dos series activas y sin elección
// explícita se devuelven las opciones; nada queda emitido.
func TestCreateDeliveryNote_SeriesAmbigua(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.series.Create(context.Background(), &entity.Series{
		ID: "s-avb", CompanyID: testCompanyID, Name: "AVB",
		DocType: entity.DocTypeDeliveryNote, IsActive: true,
	}))

	res, err := f.uc.CreateDeliveryNote(context.Background(), testCompanyID, testUserID, deliveryID, "")
	require.NoError(t, err)
	assert.True(t, res.RequireSeriesSelection)
	assert.ElementsMatch(t, []string{"AVZ", "AVB"}, res.SeriesChoices)
	assert.Nil(t, res.Note)
	assert.Empty(t, f.notes.Notes, "no debe emitirse nada")
	assert.False(t, f.deliveries.Deliveries[deliveryID].Noticed)

	// eligiendo una de las dos sí emite
	res, err = f.uc.CreateDeliveryNote(context.Background(), testCompanyID, testUserID, deliveryID, "AVB")
	require.NoError(t, err)
	assert.Equal(t, "AVB", res.Note.Number.Series)
}

// TestConfirmDeliveryNote_Saga: en una sola operación libera la reserva,
// consume FIFO con desglose, marca nota y entrega DELIVERED y recalcula el
// pedido (única entrega => DELIVERED).
func TestConfirmDeliveryNote_Saga(t *testing.T) {
	f := newFixture(t)
	f.stock(t, 10, 5)
	f.stock(t, 10, 8)
	note := f.createNote(t)

	res, err := f.uc.ConfirmDeliveryNote(context.Background(), testCompanyID, testUserID, note.ID)
	require.NoError(t, err)
	assert.False(t, res.ProvisionalCosting)
	assert.Equal(t, entity.NoteStatusDelivered, res.Note.Status)
	require.NotNil(t, res.Note.DeliveredAt)

	// reserva liberada exactamente una vez y entregado acumulado
	line := f.orders.Lines[testLineID]
	assert.True(t, line.ReservedQuantity.IsZero())
	assert.True(t, line.DeliveredQty.Equal(decimal.NewFromInt(10)))

	// costo FIFO persistido en la línea de la nota (toda de la capa de 5.00)
	noteLines, _ := f.notes.GetLines(context.Background(), note.ID)
	require.Len(t, noteLines, 1)
	assert.True(t, noteLines[0].ReservationReleased)
	assert.True(t, noteLines[0].UnitCostFIFO.Equal(decimal.NewFromFloat(5)))
	assert.True(t, noteLines[0].LineCostFIFO.Equal(decimal.NewFromFloat(50)))
	assert.False(t, noteLines[0].CostProvisional)

	assert.Equal(t, entity.DeliveryStatusDelivered, f.deliveries.Deliveries[deliveryID].Status)
	assert.Equal(t, entity.OrderStatusDelivered, f.orders.Orders[testOrderID].Status)
}

// TestConfirmDeliveryNote_DobleConfirmacion: la segunda confirmación es un
// conflicto de estado y no altera nada.
func TestConfirmDeliveryNote_DobleConfirmacion(t *testing.T) {
	f := newFixture(t)
	f.stock(t, 20, 5)
	note := f.createNote(t)

	_, err := f.uc.ConfirmDeliveryNote(context.Background(), testCompanyID, testUserID, note.ID)
	require.NoError(t, err)
	movsAfterFirst := len(f.movRepo.Movements)

	_, err = f.uc.ConfirmDeliveryNote(context.Background(), testCompanyID, testUserID, note.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, f.movRepo.Movements, movsAfterFirst, "sin salidas duplicadas")
	line := f.orders.Lines[testLineID]
	assert.True(t, line.DeliveredQty.Equal(decimal.NewFromInt(10)), "sin doble liberación")
}

// TestConfirmDeliveryNote_CosteoProvisional: stock insuficiente confirma igual
// con advertencia de costo provisional.
func TestConfirmDeliveryNote_CosteoProvisional(t *testing.T) {
	f := newFixture(t)
	f.stock(t, 4, 5) // faltan 6
	note := f.createNote(t)

	res, err := f.uc.ConfirmDeliveryNote(context.Background(), testCompanyID, testUserID, note.ID)
	require.NoError(t, err, "la sobreventa no bloquea el despacho")
	assert.True(t, res.ProvisionalCosting)

	noteLines, _ := f.notes.GetLines(context.Background(), note.ID)
	assert.True(t, noteLines[0].CostProvisional)
}

// TestCancelDeliveryNote_EnTransito: anula la nota, la entrega vuelve a
// SCHEDULED con el flag limpio, el pedido se recalcula y el inventario queda
// intacto.
func TestCancelDeliveryNote_EnTransito(t *testing.T) {
	f := newFixture(t)
	f.stock(t, 20, 5)
	note := f.createNote(t)

	cancelled, err := f.uc.CancelDeliveryNote(context.Background(), testCompanyID, testUserID, note.ID, "cliente reprogramó la visita")
	require.NoError(t, err)
	assert.Equal(t, entity.NoteStatusCancelled, cancelled.Status)
	assert.Equal(t, "cliente reprogramó la visita", cancelled.CancelReason)

	delivery := f.deliveries.Deliveries[deliveryID]
	assert.Equal(t, entity.DeliveryStatusScheduled, delivery.Status)
	assert.False(t, delivery.Noticed, "puede emitirse una nota nueva")
	assert.Equal(t, entity.OrderStatusConfirmed, f.orders.Orders[testOrderID].Status)

	// en tránsito aún no hubo salida: el libro solo tiene la entrada
	assert.Len(t, f.movRepo.Movements, 1)
	// la reserva sigue viva
	assert.True(t, f.orders.Lines[testLineID].ReservedQuantity.Equal(decimal.NewFromInt(10)))
}

// TestCancelDeliveryNote_MotivoCorto: el motivo exige longitud mínima.
func TestCancelDeliveryNote_MotivoCorto(t *testing.T) {
	f := newFixture(t)
	note := f.createNote(t)

	_, err := f.uc.CancelDeliveryNote(context.Background(), testCompanyID, testUserID, note.ID, "corto")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestCancelDeliveryNote_TrasEntrega: después de la entrega física el stock ya
// se consumió; la anulación se rechaza.
func TestCancelDeliveryNote_TrasEntrega(t *testing.T) {
	f := newFixture(t)
	f.stock(t, 20, 5)
	note := f.createNote(t)
	_, err := f.uc.ConfirmDeliveryNote(context.Background(), testCompanyID, testUserID, note.ID)
	require.NoError(t, err)

	_, err = f.uc.CancelDeliveryNote(context.Background(), testCompanyID, testUserID, note.ID, "motivo suficientemente largo")
	assert.ErrorIs(t, err, domain.ErrConflict)
}
