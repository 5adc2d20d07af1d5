package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ManualItemRequest línea digitada a mano para facturas.
type ManualItemRequest struct {
	Description string          `json:"description"`
	ServiceID   string          `json:"service_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	Cost        decimal.Decimal `json:"cost"`
}

// CreateInvoiceRequest cuerpo para emitir una factura. Los totales NO se
// aceptan del cliente: siempre se re-derivan en el servidor desde las líneas.
type CreateInvoiceRequest struct {
	ClientID      string              `json:"client_id"`
	Series        string              `json:"series,omitempty"`
	SourceNoteIDs []string            `json:"source_note_ids,omitempty"`
	ManualItems   []ManualItemRequest `json:"manual_items,omitempty"`
	PeriodFrom    time.Time           `json:"period_from"`
	PeriodTo      time.Time           `json:"period_to"`
}

// SplitConfigRequest porcentaje por entidad de facturación; deben sumar 100.
type SplitConfigRequest struct {
	ClientID   string          `json:"client_id"`
	Percentage decimal.Decimal `json:"percentage"`
}

// CreateSplitInvoicesRequest cuerpo para dividir una facturación entre varias
// entidades.
type CreateSplitInvoicesRequest struct {
	Series        string               `json:"series,omitempty"`
	SourceNoteIDs []string             `json:"source_note_ids,omitempty"`
	ManualItems   []ManualItemRequest  `json:"manual_items,omitempty"`
	PeriodFrom    time.Time            `json:"period_from"`
	PeriodTo      time.Time            `json:"period_to"`
	SplitConfigs  []SplitConfigRequest `json:"split_configs"`
}

// CancelRequest motivo de anulación (factura, grupo de división).
type CancelRequest struct {
	Reason string `json:"reason"`
}

// CategoryTotalsDTO totales de una categoría de línea.
type CategoryTotalsDTO struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	VAT      decimal.Decimal `json:"vat"`
	Cost     decimal.Decimal `json:"cost"`
	Profit   decimal.Decimal `json:"profit"`
	Margin   decimal.Decimal `json:"margin"`
}

// InvoiceItemResponse línea de factura clasificada.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
}

// InvoiceResponse factura en respuestas.
type InvoiceResponse struct {
	ID              string                `json:"id"`
	ClientID        string                `json:"client_id"`
	Number          string                `json:"number"`
	IssueDate       string                `json:"issue_date"`
	DueDate         string                `json:"due_date"`
	Status          string                `json:"status"`
	EInvoiceStatus  string                `json:"einvoice_status"`
	SplitGroupID    string                `json:"split_group_id,omitempty"`
	GrandTotal      decimal.Decimal       `json:"grand_total"`
	PaidAmount      decimal.Decimal       `json:"paid_amount"`
	RemainingAmount decimal.Decimal       `json:"remaining_amount"`
	Items           []InvoiceItemResponse `json:"items,omitempty"`
}
