package dto

import "github.com/shopspring/decimal"

// CreateDeliveryNoteRequest cuerpo para emitir una nota de entrega.
// series es opcional: si hay varias activas y no se envía, la respuesta pide
// selección explícita.
type CreateDeliveryNoteRequest struct {
	DeliveryID string `json:"delivery_id"`
	Series     string `json:"series,omitempty"`
}

// CancelDeliveryNoteRequest cuerpo para anular una nota en tránsito.
type CancelDeliveryNoteRequest struct {
	Reason string `json:"reason"`
}

// DeliveryNoteLineResponse línea de nota con su costeo FIFO (tras confirmar).
type DeliveryNoteLineResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	UnitCostFIFO    decimal.Decimal `json:"unit_cost_fifo"`
	LineCostFIFO    decimal.Decimal `json:"line_cost_fifo"`
	CostProvisional bool            `json:"cost_provisional"`
}

// DeliveryNoteResponse nota de entrega en respuestas.
type DeliveryNoteResponse struct {
	ID                     string                     `json:"id"`
	DeliveryID             string                     `json:"delivery_id"`
	OrderID                string                     `json:"order_id"`
	Number                 string                     `json:"number,omitempty"`
	Status                 string                     `json:"status,omitempty"`
	ProvisionalCosting     bool                       `json:"provisional_costing,omitempty"`
	Lines                  []DeliveryNoteLineResponse `json:"lines,omitempty"`
	RequireSeriesSelection bool                       `json:"require_series_selection,omitempty"`
	SeriesChoices          []string                   `json:"series_choices,omitempty"`
}
