package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Distribucion-api/internal/application/inventory"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/testutil"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

const (
	testCompanyID = "co-1"
	testUserID    = "user-1"
	testProductID = "prod-1"
)

type fixture struct {
	uc       *inventory.LedgerUseCase
	movRepo  *testutil.StockMovementRepo
	products *testutil.ProductRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	products := testutil.NewProductRepo()
	products.Items[testProductID] = &entity.Product{
		ID:            testProductID,
		CompanyID:     testCompanyID,
		SKU:           "SKU-1",
		Name:          "Agua 600ml",
		Kind:          entity.ItemKindProduct,
		UnitFactor:    decimal.NewFromInt(1),
		ReferenceCost: decimal.NewFromFloat(4.50),
		IsActive:      true,
	}
	movRepo := testutil.NewStockMovementRepo()
	tx := &testutil.TxRunner{Mov: movRepo, Orders: testutil.NewOrderRepo()}
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	return &fixture{
		uc:       inventory.NewLedgerUseCase(tx, products, log),
		movRepo:  movRepo,
		products: products,
	}
}

func (f *fixture) goodsIn(t *testing.T, qty, cost float64) {
	t.Helper()
	c := decimal.NewFromFloat(cost)
	_, err := f.uc.RegisterMovement(context.Background(), inventory.MovementInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		ProductID: testProductID,
		Type:      entity.MovementTypeGoodsIn,
		Quantity:  decimal.NewFromFloat(qty),
		UnitCost:  &c,
	})
	require.NoError(t, err)
}

// TestReleaseReservations: decrementa la reserva de cada línea referenciada
// y salta referencias vacías o con cantidad no positiva.
func TestReleaseReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	orders := testutil.NewOrderRepo()
	require.NoError(t, orders.Create(ctx, &entity.Order{ID: "ord-1", CompanyID: testCompanyID},
		[]*entity.OrderLine{
			{ID: "ol-1", OrderID: "ord-1", ProductID: testProductID, ReservedQuantity: decimal.NewFromInt(10)},
			{ID: "ol-2", OrderID: "ord-1", ProductID: testProductID, ReservedQuantity: decimal.NewFromInt(4)},
		}))

	err := f.uc.ReleaseReservationsInTx(ctx, orders, []inventory.ReservationRelease{
		{OrderLineID: "ol-1", Quantity: decimal.NewFromInt(6)},
		{OrderLineID: "", Quantity: decimal.NewFromInt(3)},      // sin referencia: se salta
		{OrderLineID: "ol-2", Quantity: decimal.Zero},           // cantidad no positiva: se salta
		{OrderLineID: "ol-1", Quantity: decimal.NewFromInt(99)}, // nunca queda negativa
	})
	require.NoError(t, err)

	assert.True(t, orders.Lines["ol-1"].ReservedQuantity.IsZero())
	assert.True(t, orders.Lines["ol-2"].ReservedQuantity.Equal(decimal.NewFromInt(4)), "intacta")
}

func (f *fixture) saleOut(t *testing.T, qty float64) *entity.MovementCost {
	t.Helper()
	cost, err := f.uc.RegisterMovement(context.Background(), inventory.MovementInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		ProductID: testProductID,
		Type:      entity.MovementTypeSaleOut,
		Quantity:  decimal.NewFromFloat(qty),
	})
	require.NoError(t, err)
	require.NotNil(t, cost)
	return cost
}

// TestFIFO_ConsumoCruzandoCapas: capas 10@5.00 y 10@8.00, salida de 15.
// Consume 10 de la primera y 5 de la segunda: costo de línea 50+40=90,
// unitario ponderado 6.00, remanente total 5 en la segunda capa.
func TestFIFO_ConsumoCruzandoCapas(t *testing.T) {
	f := newFixture(t)
	f.goodsIn(t, 10, 5)
	f.goodsIn(t, 10, 8)

	cost := f.saleOut(t, 15)

	assert.True(t, cost.LineCostFIFO.Equal(decimal.NewFromFloat(90)), "line cost = 10*5 + 5*8, got %s", cost.LineCostFIFO)
	assert.True(t, cost.UnitCostFIFO.Equal(decimal.NewFromFloat(6)), "unit cost = 90/15, got %s", cost.UnitCostFIFO)
	assert.False(t, cost.Provisional)
	require.Len(t, cost.Breakdown, 2)
	assert.Equal(t, entity.CostTypeReal, cost.Breakdown[0].CostType)
	assert.True(t, cost.Breakdown[0].Quantity.Equal(decimal.NewFromFloat(10)))
	assert.True(t, cost.Breakdown[1].Quantity.Equal(decimal.NewFromFloat(5)))

	available, err := f.uc.Available(context.Background(), testCompanyID, testProductID)
	require.NoError(t, err)
	assert.True(t, available.Equal(decimal.NewFromFloat(5)), "remanente 20-15, got %s", available)
}

// TestFIFO_OrdenDeConsumo: la capa más vieja se consume primero aunque sea la
// más cara.
func TestFIFO_OrdenDeConsumo(t *testing.T) {
	f := newFixture(t)
	f.goodsIn(t, 10, 9) // la más vieja, más cara
	f.goodsIn(t, 10, 3)

	cost := f.saleOut(t, 10)

	assert.True(t, cost.UnitCostFIFO.Equal(decimal.NewFromFloat(9)),
		"debe salir íntegramente de la capa más vieja")
	require.Len(t, cost.Breakdown, 1)
}

// TestFIFO_SobreventaCosteoProvisional: capas para 10 y salida de 12. No falla:
// la porción faltante sale con el último costo conocido y marca provisional.
func TestFIFO_SobreventaCosteoProvisional(t *testing.T) {
	f := newFixture(t)
	f.goodsIn(t, 10, 5)

	cost := f.saleOut(t, 12)

	assert.True(t, cost.Provisional, "faltante de stock degrada a provisional, nunca error")
	require.Len(t, cost.Breakdown, 2)
	assert.Equal(t, entity.CostTypeReal, cost.Breakdown[0].CostType)
	assert.Equal(t, entity.CostTypeProvisional, cost.Breakdown[1].CostType)
	assert.True(t, cost.Breakdown[1].Quantity.Equal(decimal.NewFromFloat(2)))
	// último costo conocido = 5.00 (la capa agotada)
	assert.True(t, cost.Breakdown[1].UnitCost.Equal(decimal.NewFromFloat(5)))
	assert.True(t, cost.LineCostFIFO.Equal(decimal.NewFromFloat(60)), "10*5 + 2*5")
}

// TestFIFO_SinCapas_CostoDeReferencia: sin ninguna entrada previa el costo
// provisional cae al costo de referencia del producto.
func TestFIFO_SinCapas_CostoDeReferencia(t *testing.T) {
	f := newFixture(t)

	cost := f.saleOut(t, 4)

	assert.True(t, cost.Provisional)
	require.Len(t, cost.Breakdown, 1)
	assert.True(t, cost.Breakdown[0].UnitCost.Equal(decimal.NewFromFloat(4.50)),
		"fallback al costo de referencia del producto")
}

// TestRegisterMovement_Validaciones: entradas sin costo, cantidades no
// positivas, producto ajeno y servicios sin inventario.
func TestRegisterMovement_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.RegisterMovement(ctx, inventory.MovementInput{
		CompanyID: testCompanyID, ProductID: testProductID,
		Type: entity.MovementTypeGoodsIn, Quantity: decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "GOODS_IN exige costo unitario")

	_, err = f.uc.RegisterMovement(ctx, inventory.MovementInput{
		CompanyID: testCompanyID, ProductID: testProductID,
		Type: entity.MovementTypeSaleOut, Quantity: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad debe ser positiva")

	_, err = f.uc.RegisterMovement(ctx, inventory.MovementInput{
		CompanyID: "otra-empresa", ProductID: testProductID,
		Type: entity.MovementTypeSaleOut, Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	f.products.Items["svc-1"] = &entity.Product{
		ID: "svc-1", CompanyID: testCompanyID, Kind: entity.ItemKindService,
	}
	_, err = f.uc.RegisterMovement(ctx, inventory.MovementInput{
		CompanyID: testCompanyID, ProductID: "svc-1",
		Type: entity.MovementTypeSaleOut, Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "los servicios no llevan inventario")
}

// TestLibroAppendOnly: las correcciones agregan movimientos, nunca editan.
// Tras entrada y salida el libro tiene ambos registros.
func TestLibroAppendOnly(t *testing.T) {
	f := newFixture(t)
	f.goodsIn(t, 10, 5)
	f.saleOut(t, 3)

	movs, err := f.uc.ListMovements(context.Background(), testCompanyID, testProductID, nil, nil, 50, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeGoodsIn, movs[0].Type)
	assert.Equal(t, entity.MovementTypeSaleOut, movs[1].Type)
	assert.True(t, movs[0].RemainingQuantity.Equal(decimal.NewFromFloat(7)),
		"la capa refleja el consumo sin editar el movimiento de entrada")
}
