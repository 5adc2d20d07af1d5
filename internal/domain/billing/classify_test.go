package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Distribucion-api/internal/domain/billing"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// TestClassify_Prioridad verifica que cada línea cae en exactamente una
// categoría con prioridad manual > servicio > embalaje > producto.
func TestClassify_Prioridad(t *testing.T) {
	cases := []struct {
		name string
		in   billing.LineClass
		want string
	}{
		{"manual gana sobre todo", billing.LineClass{IsManual: true, ServiceID: "srv-1", ItemKind: entity.ItemKindPackaging}, entity.LineCategoryManual},
		{"servicio por referencia", billing.LineClass{ServiceID: "srv-1", ItemKind: entity.ItemKindProduct}, entity.LineCategoryService},
		{"servicio por clase de artículo", billing.LineClass{ItemKind: entity.ItemKindService}, entity.LineCategoryService},
		{"embalaje", billing.LineClass{ItemKind: entity.ItemKindPackaging}, entity.LineCategoryPackaging},
		{"producto por defecto", billing.LineClass{ItemKind: entity.ItemKindProduct}, entity.LineCategoryProduct},
		{"clase desconocida cae a producto", billing.LineClass{ItemKind: "OTRO"}, entity.LineCategoryProduct},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, billing.Classify(tc.in))
		})
	}
}

// TestAccumulateLine_TotalesPorCategoria suma líneas en categorías distintas y
// verifica categoría + agregado con redondeo en cada paso.
func TestAccumulateLine_TotalesPorCategoria(t *testing.T) {
	var totals entity.InvoiceTotals

	billing.AccumulateLine(&totals, entity.LineCategoryProduct,
		decimal.NewFromFloat(100), decimal.NewFromFloat(19), decimal.NewFromFloat(60))
	billing.AccumulateLine(&totals, entity.LineCategoryService,
		decimal.NewFromFloat(50), decimal.Zero, decimal.Zero)

	assert.True(t, totals.Product.Subtotal.Equal(decimal.NewFromFloat(100)))
	assert.True(t, totals.Product.Profit.Equal(decimal.NewFromFloat(40)))
	assert.True(t, totals.Product.Margin.Equal(decimal.NewFromFloat(40)), "margen = 40/100*100")
	assert.True(t, totals.Service.Subtotal.Equal(decimal.NewFromFloat(50)))
	assert.True(t, totals.Overall.Subtotal.Equal(decimal.NewFromFloat(150)))
	assert.True(t, totals.Overall.VAT.Equal(decimal.NewFromFloat(19)))
	assert.True(t, billing.GrandTotal(&totals).Equal(decimal.NewFromFloat(169)))
}

// TestCategoryTotals_MargenCeroConSubtotalCero cubre la división por cero:
// costo sin subtotal deja el margen en 0, no en NaN ni pánico.
func TestCategoryTotals_MargenCeroConSubtotalCero(t *testing.T) {
	var ct entity.CategoryTotals
	ct.Add(decimal.Zero, decimal.Zero, decimal.NewFromFloat(10))

	assert.True(t, ct.Margin.IsZero(), "margen debe ser 0 cuando el subtotal es 0")
	assert.True(t, ct.Profit.Equal(decimal.NewFromFloat(-10)))
}
