package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del pedido. Avanzan de forma monótona; CANCELLED es terminal y
// alcanzable desde cualquier estado no terminal.
const (
	OrderStatusDraft              = "DRAFT"
	OrderStatusConfirmed          = "CONFIRMED"
	OrderStatusScheduled          = "SCHEDULED"
	OrderStatusPartiallyDelivered = "PARTIALLY_DELIVERED"
	OrderStatusDelivered          = "DELIVERED"
	OrderStatusPartiallyInvoiced  = "PARTIALLY_INVOICED"
	OrderStatusInvoiced           = "INVOICED"
	OrderStatusCompleted          = "COMPLETED"
	OrderStatusCancelled          = "CANCELLED"
)

// Order es la cabecera del pedido de cliente.
type Order struct {
	ID        string
	CompanyID string
	ClientID  string
	Status    string
	OrderDate time.Time
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
}

// OrderLine es una línea de pedido. Congela precio, IVA y conversión de unidad
// al momento del pedido; ReservedQuantity es el contador de reserva, separado de
// la cantidad física del inventario.
type OrderLine struct {
	ID               string
	OrderID          string
	ProductID        string
	ProductName      string          // snapshot del nombre al momento del pedido
	Quantity         decimal.Decimal // en unidad de venta
	UnitFactor       decimal.Decimal // snapshot de conversión a unidad base
	UnitPrice        decimal.Decimal // snapshot de precio
	VATRate          decimal.Decimal // snapshot de IVA
	ReservedQuantity decimal.Decimal // reserva pendiente de liberar (unidad base)
	DeliveredQty     decimal.Decimal // acumulado entregado (unidad base)
}

// BaseQuantity devuelve la cantidad de la línea en unidad base de inventario.
func (l *OrderLine) BaseQuantity() decimal.Decimal {
	if l.UnitFactor.IsZero() {
		return l.Quantity
	}
	return l.Quantity.Mul(l.UnitFactor)
}

// Terminal indica si el pedido ya no admite transiciones.
func (o *Order) Terminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}
