package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la entrega (un intento físico de envío, atado a un solo pedido).
const (
	DeliveryStatusCreated   = "CREATED"
	DeliveryStatusScheduled = "SCHEDULED"
	DeliveryStatusInTransit = "IN_TRANSIT"
	DeliveryStatusDelivered = "DELIVERED"
	DeliveryStatusInvoiced  = "INVOICED"
	DeliveryStatusCancelled = "CANCELLED"
)

// Delivery representa un envío físico de un subconjunto de líneas del pedido.
// Noticed indica que ya tiene nota de entrega emitida (se limpia si la nota se anula).
type Delivery struct {
	ID           string
	CompanyID    string
	OrderID      string
	Status       string
	Noticed      bool
	ScheduledFor time.Time
	Location     string // ubicación/bodega de despacho
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedBy    string
}

// DeliveryLine asigna a este envío una cantidad de una línea del pedido.
type DeliveryLine struct {
	ID          string
	DeliveryID  string
	OrderLineID string
	ProductID   string
	ProductName string
	Quantity    decimal.Decimal // en unidad base
	UnitPrice   decimal.Decimal // snapshot desde la línea del pedido
	VATRate     decimal.Decimal
}

// Active indica si la entrega cuenta para el recálculo de estado del pedido.
func (d *Delivery) Active() bool {
	return d.Status != DeliveryStatusCancelled
}

// DeliveredOrBeyond indica que la mercancía ya salió (entregada o facturada).
func (d *Delivery) DeliveredOrBeyond() bool {
	return d.Status == DeliveryStatusDelivered || d.Status == DeliveryStatusInvoiced
}
