package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementTypeGoodsIn    = "GOODS_IN"   // entrada (recepción de proveedor)
	MovementTypeSaleOut    = "SALE_OUT"   // salida por venta (consume capas FIFO)
	MovementTypeAdjustment = "ADJUSTMENT" // ajuste (+ crea capa, - consume capas)
	MovementTypeTransfer   = "TRANSFER"   // traslado entre ubicaciones
)

// Tipos de costo de una entrada de desglose.
const (
	CostTypeReal        = "REAL"        // costo tomado de una capa FIFO existente
	CostTypeProvisional = "PROVISIONAL" // faltante de stock: último costo conocido, pendiente de conciliar
)

// StockMovement es un registro inmutable del libro de inventario (append-only).
// Las correcciones son movimientos compensatorios nuevos; nunca se edita ni borra.
//
// Para GOODS_IN el registro es además una capa FIFO: RemainingQuantity arranca
// igual a Quantity y se decrementa a medida que salidas posteriores la consumen.
type StockMovement struct {
	ID                string
	CompanyID         string
	ProductID         string
	ItemKind          string // PRODUCT | PACKAGING
	Type              string
	Quantity          decimal.Decimal // siempre en unidad base, positiva
	UnitCost          decimal.Decimal
	RemainingQuantity decimal.Decimal // solo capas (GOODS_IN / ADJUSTMENT positivo)
	Location          string
	ReferenceID       string // documento origen (nota de entrega, recepción, ajuste)
	Date              time.Time
	CreatedAt         time.Time
	CreatedBy         string
}

// CostBreakdownEntry documenta qué capa FIFO financió cada porción de una salida.
// Se adjunta a la línea saliente (línea de nota de entrega o de storno) para dejar
// rastro auditable del costo histórico.
type CostBreakdownEntry struct {
	ID               string
	SourceMovementID string // capa consumida; vacío cuando el costo es provisional
	NoteLineID       string // línea saliente a la que pertenece el desglose
	EntryDate        time.Time
	Quantity         decimal.Decimal
	UnitCost         decimal.Decimal
	CostType         string // REAL | PROVISIONAL
}

// MovementCost es el resultado de costeo de una salida FIFO.
type MovementCost struct {
	UnitCostFIFO decimal.Decimal
	LineCostFIFO decimal.Decimal
	Breakdown    []CostBreakdownEntry
	Provisional  bool // true si alguna porción quedó con costo provisional
}
