package inventory

import (
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// WeightedUnitCost calcula el costo unitario FIFO de una salida como promedio
// ponderado por cantidad de las capas consumidas (servicio de dominio).
// UnitCostFIFO = sum(qty_i * cost_i) / sum(qty_i)
func WeightedUnitCost(breakdown []entity.CostBreakdownEntry) decimal.Decimal {
	var totalQty, totalCost decimal.Decimal
	for _, e := range breakdown {
		totalQty = totalQty.Add(e.Quantity)
		totalCost = totalCost.Add(e.Quantity.Mul(e.UnitCost))
	}
	if totalQty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return totalCost.Div(totalQty).Round(4)
}

// LineCost calcula el costo total de la salida sumando cada porción del
// desglose (no UnitCostFIFO*qty, para no arrastrar error de redondeo).
func LineCost(breakdown []entity.CostBreakdownEntry) decimal.Decimal {
	var total decimal.Decimal
	for _, e := range breakdown {
		total = total.Add(e.Quantity.Mul(e.UnitCost))
	}
	return total.Round(2)
}
