package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estado de cobro de la factura.
const (
	InvoiceStatusIssued        = "ISSUED"
	InvoiceStatusPartiallyPaid = "PARTIALLY_PAID"
	InvoiceStatusPaid          = "PAID"
	InvoiceStatusCancelled     = "CANCELLED"
)

// Estado del ciclo de factura electrónica ante la autoridad fiscal.
// SENT y ACCEPTED bloquean la anulación (el documento ya salió del dominio propio).
const (
	EInvoiceStatusNone     = "NONE"
	EInvoiceStatusDraft    = "DRAFT"
	EInvoiceStatusSent     = "SENT"
	EInvoiceStatusAccepted = "ACCEPTED"
	EInvoiceStatusRejected = "REJECTED"
)

// Categorías de línea de factura, en orden de prioridad de clasificación:
// manual > servicio > embalaje > producto.
const (
	LineCategoryManual    = "MANUAL"
	LineCategoryService   = "SERVICE"
	LineCategoryPackaging = "PACKAGING"
	LineCategoryProduct   = "PRODUCT"
)

// CategoryTotals acumula totales por categoría de línea.
// Cada paso de agregación redondea a 2 decimales (igual que muestra la UI).
type CategoryTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	VAT      decimal.Decimal `json:"vat"`
	Cost     decimal.Decimal `json:"cost"`
	Profit   decimal.Decimal `json:"profit"`
	Margin   decimal.Decimal `json:"margin"` // profit / subtotal * 100; 0 si subtotal es 0
}

// Add acumula una línea redondeando en cada paso.
func (t *CategoryTotals) Add(subtotal, vat, cost decimal.Decimal) {
	t.Subtotal = t.Subtotal.Add(subtotal).Round(2)
	t.VAT = t.VAT.Add(vat).Round(2)
	t.Cost = t.Cost.Add(cost).Round(2)
	t.Profit = t.Subtotal.Sub(t.Cost).Round(2)
	if t.Subtotal.IsZero() {
		t.Margin = decimal.Zero
		return
	}
	t.Margin = t.Profit.Div(t.Subtotal).Mul(decimal.NewFromInt(100)).Round(2)
}

// InvoiceTotals desglosa los totales de la factura por categoría y en agregado.
type InvoiceTotals struct {
	Product   CategoryTotals `json:"product"`
	Packaging CategoryTotals `json:"packaging"`
	Service   CategoryTotals `json:"service"`
	Manual    CategoryTotals `json:"manual"`
	Overall   CategoryTotals `json:"overall"`
}

// Invoice es la factura emitida desde una o más notas de entrega (o manual).
// CompanySnapshot y ClientSnapshot se congelan a la emisión y nunca se releen.
// RemainingAmount == GrandTotal - PaidAmount en todo momento; PaidAmount es la
// suma de las asignaciones de pago vinculadas.
type Invoice struct {
	ID              string
	CompanyID       string
	ClientID        string
	Number          DocumentNumber
	IssueDate       time.Time
	DueDate         time.Time
	PeriodFrom      time.Time
	PeriodTo        time.Time
	Status          string
	EInvoiceStatus  string
	Approved        bool   // aprobada internamente; bloquea anulación
	SplitGroupID    string // vacío si no proviene de una división
	SplitPercentage decimal.Decimal
	SourceNoteIDs   []string
	CompanySnapshot CompanySnapshot
	ClientSnapshot  ClientSnapshot
	Totals          InvoiceTotals
	GrandTotal      decimal.Decimal
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal
	CancelReason    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CreatedBy       string
}

// InvoiceItem es una línea de factura ya clasificada.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	NoteLineID  string // línea de nota origen; vacío en líneas manuales
	ProductID   string
	Description string
	Category    string // MANUAL | SERVICE | PACKAGING | PRODUCT
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
	Subtotal    decimal.Decimal
	VATAmount   decimal.Decimal
	Cost        decimal.Decimal
}

// Cancellable indica si la factura admite anulación: no enviada/aceptada
// externamente, sin pagos aplicados, no aprobada y no anulada ya.
func (i *Invoice) Cancellable() bool {
	if i.Status == InvoiceStatusCancelled {
		return false
	}
	if i.EInvoiceStatus == EInvoiceStatusSent || i.EInvoiceStatus == EInvoiceStatusAccepted {
		return false
	}
	if i.PaidAmount.GreaterThan(decimal.Zero) {
		return false
	}
	return !i.Approved
}

// Outstanding indica si la factura aún tiene saldo por cobrar.
func (i *Invoice) Outstanding() bool {
	return i.Status != InvoiceStatusCancelled && i.RemainingAmount.GreaterThan(decimal.Zero)
}
