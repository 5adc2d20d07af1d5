package dto

import "github.com/shopspring/decimal"

// RegisterMovementRequest cuerpo para registrar un movimiento de inventario.
// unit_cost es obligatorio en GOODS_IN.
type RegisterMovementRequest struct {
	ProductID   string           `json:"product_id"`
	Type        string           `json:"type"` // GOODS_IN, SALE_OUT, ADJUSTMENT, TRANSFER
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	Location    string           `json:"location"`
	ReferenceID string           `json:"reference_id"`
}

// CostBreakdownDTO una porción del desglose de costo FIFO.
type CostBreakdownDTO struct {
	SourceMovementID string          `json:"source_movement_id,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	CostType         string          `json:"cost_type"` // REAL | PROVISIONAL
}

// MovementCostResponse costeo FIFO devuelto para salidas.
type MovementCostResponse struct {
	UnitCostFIFO decimal.Decimal    `json:"unit_cost_fifo"`
	LineCostFIFO decimal.Decimal    `json:"line_cost_fifo"`
	Breakdown    []CostBreakdownDTO `json:"breakdown"`
	Provisional  bool               `json:"provisional"`
}
