package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la nota de entrega (aviz). CANCELLED solo es alcanzable desde
// IN_TRANSIT: después de la entrega física el stock ya fue consumido.
const (
	NoteStatusInTransit = "IN_TRANSIT"
	NoteStatusDelivered = "DELIVERED"
	NoteStatusInvoiced  = "INVOICED"
	NoteStatusCancelled = "CANCELLED"
)

// DeliveryNote es el documento fiscal/logístico que acompaña la mercancía.
// Inmutable tras su creación salvo estado y campos de costo. Sus líneas son una
// copia estructural de las líneas de la entrega al momento de emisión (snapshot,
// nunca referencia viva).
type DeliveryNote struct {
	ID           string
	CompanyID    string
	DeliveryID   string
	OrderID      string
	ClientID     string
	Number       DocumentNumber // tripleta {serie, consecutivo, año}, única global
	Status       string
	CancelReason string
	IssuedAt     time.Time
	DeliveredAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedBy    string
}

// DeliveryNoteLine es una línea congelada de la nota. Los campos de costo FIFO se
// rellenan al confirmar la entrega; ReservationReleased garantiza que la reserva
// de la línea de pedido se libere exactamente una vez.
type DeliveryNoteLine struct {
	ID                  string
	NoteID              string
	OrderLineID         string
	ProductID           string
	ProductName         string
	ItemKind            string
	IsManual            bool   // línea agregada a mano (sin producto de catálogo)
	ServiceID           string // referencia de servicio, si aplica
	Quantity            decimal.Decimal
	UnitPrice           decimal.Decimal
	VATRate             decimal.Decimal
	UnitCostFIFO        decimal.Decimal
	LineCostFIFO        decimal.Decimal
	CostProvisional     bool
	ReservationReleased bool
}

// Subtotal de la línea sin IVA.
func (l *DeliveryNoteLine) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice).Round(2)
}
