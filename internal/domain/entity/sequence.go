package entity

import "time"

// Tipos de documento que consumen numeración consecutiva.
const (
	DocTypeDeliveryNote = "DELIVERY_NOTE"
	DocTypeInvoice      = "INVOICE"
)

// Series representa una serie de numeración autorizada para un tipo de documento
// (ej: "AVZ" para notas de entrega, "FE" para facturas). Puede haber varias activas
// por tipo; en ese caso el llamador debe elegir explícitamente.
type Series struct {
	ID        string
	CompanyID string
	Name      string // prefijo de la serie (AVZ, FE, ...)
	DocType   string // DELIVERY_NOTE | INVOICE
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SeriesCounter es el contador consecutivo por (serie, año calendario).
// Solo se muta con incremento atómico; nunca se decrementa ni se reutiliza
// entre años. Un número consumido por una transacción que hace rollback queda
// permanentemente sin usar (decisión de diseño, no defecto).
type SeriesCounter struct {
	Series     string
	Year       int
	LastNumber int64
	UpdatedAt  time.Time
}

// DocumentNumber es la tripleta de numeración de un documento fiscal.
// Debe ser globalmente única por (Series, Year, Number).
type DocumentNumber struct {
	Series string
	Number int64
	Year   int
}
