package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clase de artículo: determina la categoría de facturación y si lleva inventario.
const (
	ItemKindProduct   = "PRODUCT"   // producto almacenable (lleva capas FIFO)
	ItemKindPackaging = "PACKAGING" // embalaje retornable/almacenable
	ItemKindService   = "SERVICE"   // servicio, sin inventario
)

// Product representa un artículo del catálogo.
// UnitFactor convierte la unidad de venta a la unidad base del inventario
// (ej: caja de 12 -> UnitFactor = 12, inventario en unidades).
type Product struct {
	ID            string
	CompanyID     string
	SKU           string
	Name          string
	Kind          string          // PRODUCT, PACKAGING, SERVICE
	UnitMeasure   string          // unidad base (UND, KG, LT...)
	UnitFactor    decimal.Decimal // factor de conversión unidad venta -> unidad base
	Price         decimal.Decimal // precio de lista
	ReferenceCost decimal.Decimal // costo de referencia (fallback para costeo provisional)
	VATRate       decimal.Decimal // tarifa IVA como fracción (0.19) o porcentaje (19)
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Stockable indica si el artículo se controla en el libro de inventario.
func (p *Product) Stockable() bool {
	return p.Kind == ItemKindProduct || p.Kind == ItemKindPackaging
}
