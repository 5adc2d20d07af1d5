package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationRequest asignación explícita de una porción del pago.
type AllocationRequest struct {
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// RecordPaymentRequest cuerpo para registrar un pago. Sin allocations se
// asigna automáticamente contra las facturas más viejas por vencimiento.
type RecordPaymentRequest struct {
	ClientID    string              `json:"client_id"`
	Amount      decimal.Decimal     `json:"amount"`
	Date        time.Time           `json:"date"`
	Reference   string              `json:"reference,omitempty"`
	Allocations []AllocationRequest `json:"allocations,omitempty"`
}

// PaymentResponse pago en respuestas.
type PaymentResponse struct {
	ID                string          `json:"id"`
	ClientID          string          `json:"client_id"`
	Amount            decimal.Decimal `json:"amount"`
	AllocatedAmount   decimal.Decimal `json:"allocated_amount"`
	UnallocatedAmount decimal.Decimal `json:"unallocated_amount"`
	Date              string          `json:"date"`
	Status            string          `json:"status"`
}

// LedgerEntryResponse asiento del extracto con saldo corrido.
type LedgerEntryResponse struct {
	Type       string          `json:"type"` // INVOICE | PAYMENT
	DocumentID string          `json:"document_id"`
	Number     string          `json:"number"`
	Date       string          `json:"date"`
	DueDate    string          `json:"due_date,omitempty"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	Balance    decimal.Decimal `json:"balance"`
	Overdue    bool            `json:"overdue"`
}

// ClientSummaryResponse posición del cliente (saldo, vencido, cupo).
type ClientSummaryResponse struct {
	ClientID       string          `json:"client_id"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	Overdue        decimal.Decimal `json:"overdue"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	CreditExceeded bool            `json:"credit_exceeded"`
}
