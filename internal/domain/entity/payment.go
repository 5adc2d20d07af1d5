package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del pago.
const (
	PaymentStatusActive    = "ACTIVE"
	PaymentStatusCancelled = "CANCELLED"
)

// Payment es dinero recibido de un cliente. La suma de sus asignaciones nunca
// supera Amount; el sobrante (cliente pagó más que su deuda) queda en
// UnallocatedAmount sobre el propio pago, no se pierde.
type Payment struct {
	ID                string
	CompanyID         string
	ClientID          string
	Amount            decimal.Decimal
	AllocatedAmount   decimal.Decimal
	UnallocatedAmount decimal.Decimal
	Date              time.Time
	Status            string
	Reference         string // consignación, cheque, etc.
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CreatedBy         string
}

// PaymentAllocation vincula una porción de un pago con una factura.
// La suma de asignaciones contra una factura nunca supera su GrandTotal.
type PaymentAllocation struct {
	ID        string
	PaymentID string
	InvoiceID string
	Amount    decimal.Decimal
	CreatedAt time.Time
}
