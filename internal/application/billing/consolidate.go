package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	domainbilling "github.com/jhoicas/Distribucion-api/internal/domain/billing"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// ConsolidationResult son las líneas aplanadas de una o más notas de entrega
// con sus totales por categoría.
type ConsolidationResult struct {
	Items  []*entity.InvoiceItem
	Totals entity.InvoiceTotals
}

// Consolidate aplana las líneas de las notas dadas en una sola lista,
// clasificando cada línea en exactamente una categoría (manual > servicio >
// embalaje > producto) y sumando subtotal/IVA/costo/utilidad por categoría y en
// agregado. Cada paso de agregación redondea a 2 decimales, igual que la UI
// muestra las sumas corridas.
func (uc *InvoiceUseCase) Consolidate(ctx context.Context, companyID string, noteIDs []string) (*ConsolidationResult, error) {
	if len(noteIDs) == 0 {
		return nil, domain.ErrInvalidInput
	}
	notes, err := uc.noteRepo.ListByIDs(ctx, noteIDs)
	if err != nil {
		return nil, err
	}
	if len(notes) != len(noteIDs) {
		return nil, domain.ErrNotFound
	}

	result := &ConsolidationResult{}
	for _, note := range notes {
		if note.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
		// solo notas entregadas (costo FIFO ya fijado) son facturables
		if note.Status != entity.NoteStatusDelivered {
			return nil, domain.ErrConflict
		}
		lines, err := uc.noteRepo.GetLines(ctx, note.ID)
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			item := itemFromNoteLine(l)
			result.Items = append(result.Items, item)
			domainbilling.AccumulateLine(&result.Totals, item.Category, item.Subtotal, item.VATAmount, item.Cost)
		}
	}
	return result, nil
}

// itemFromNoteLine convierte una línea de nota (snapshot con costo FIFO) en
// línea de factura clasificada.
func itemFromNoteLine(l *entity.DeliveryNoteLine) *entity.InvoiceItem {
	subtotal := l.Quantity.Mul(l.UnitPrice).Round(2)
	vat := subtotal.Mul(normalizeRate(l.VATRate)).Round(2)
	return &entity.InvoiceItem{
		ID:          uuid.New().String(),
		NoteLineID:  l.ID,
		ProductID:   l.ProductID,
		Description: l.ProductName,
		Category: domainbilling.Classify(domainbilling.LineClass{
			IsManual:  l.IsManual,
			ServiceID: l.ServiceID,
			ItemKind:  l.ItemKind,
		}),
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
		VATRate:   l.VATRate,
		Subtotal:  subtotal,
		VATAmount: vat,
		Cost:      l.LineCostFIFO,
	}
}

// normalizeRate acepta la tarifa como fracción (0.19) o porcentaje (19).
func normalizeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(decimal.NewFromInt(100))
	}
	return rate
}
