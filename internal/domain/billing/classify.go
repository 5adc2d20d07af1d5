// Package billing contiene reglas puras de facturación: clasificación de
// líneas y acumulación de totales por categoría.
package billing

import (
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LineClass son los atributos de una línea relevantes para clasificarla.
type LineClass struct {
	IsManual  bool
	ServiceID string
	ItemKind  string
}

// Classify asigna la línea a exactamente una categoría, por prioridad:
// manual gana sobre servicio, servicio sobre embalaje, embalaje sobre producto.
func Classify(l LineClass) string {
	switch {
	case l.IsManual:
		return entity.LineCategoryManual
	case l.ServiceID != "" || l.ItemKind == entity.ItemKindService:
		return entity.LineCategoryService
	case l.ItemKind == entity.ItemKindPackaging:
		return entity.LineCategoryPackaging
	default:
		return entity.LineCategoryProduct
	}
}

// AccumulateLine suma una línea ya clasificada en los totales de la factura
// (categoría correspondiente + agregado), redondeando en cada paso.
func AccumulateLine(t *entity.InvoiceTotals, category string, subtotal, vat, cost decimal.Decimal) {
	switch category {
	case entity.LineCategoryManual:
		t.Manual.Add(subtotal, vat, cost)
	case entity.LineCategoryService:
		t.Service.Add(subtotal, vat, cost)
	case entity.LineCategoryPackaging:
		t.Packaging.Add(subtotal, vat, cost)
	default:
		t.Product.Add(subtotal, vat, cost)
	}
	t.Overall.Add(subtotal, vat, cost)
}

// GrandTotal devuelve el total a pagar: subtotal agregado más IVA agregado.
func GrandTotal(t *entity.InvoiceTotals) decimal.Decimal {
	return t.Overall.Subtotal.Add(t.Overall.VAT).Round(2)
}
