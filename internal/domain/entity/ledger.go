package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de asiento en el extracto del cliente.
const (
	LedgerEntryInvoice = "INVOICE" // débito: aumenta la deuda
	LedgerEntryPayment = "PAYMENT" // crédito: disminuye la deuda
)

// ClientLedgerEntry es un asiento del extracto del cliente: unión de facturas
// (débito) y pagos (crédito) ordenados por fecha, con saldo corrido.
type ClientLedgerEntry struct {
	Type       string
	DocumentID string
	Number     string // número formateado del documento, o referencia del pago
	Date       time.Time
	DueDate    time.Time // solo facturas
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	Balance    decimal.Decimal // saldo corrido tras este asiento
	Overdue    bool            // factura vencida con saldo pendiente
}

// ClientSummary resume la posición del cliente para extracto y cupo de crédito.
type ClientSummary struct {
	ClientID       string
	Outstanding    decimal.Decimal // saldo total por cobrar
	Overdue        decimal.Decimal // porción vencida del saldo
	CreditLimit    decimal.Decimal
	CreditExceeded bool
	OldestDueDate  *time.Time
}
