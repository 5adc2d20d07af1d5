package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	domainbilling "github.com/jhoicas/Distribucion-api/internal/domain/billing"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// SplitConfig asigna un porcentaje del evento económico a una entidad de
// facturación. Los porcentajes los aporta el llamador y deben sumar 100: el
// motor NO los normaliza; una suma distinta es error del llamador y se
// rechaza en validación, nunca se reescala en silencio.
type SplitConfig struct {
	ClientID   string
	Percentage decimal.Decimal
}

// SplitCommonData son los datos comunes a todas las facturas hermanas.
type SplitCommonData struct {
	Series        string
	SourceNoteIDs []string
	PeriodFrom    time.Time
	PeriodTo      time.Time
}

// CreateSplitInvoices particiona de forma determinista los MISMOS ítems
// económicos entre N entidades de facturación, produciendo N facturas hermanas
// que comparten un SplitGroupID. Cada hermana obtiene su propio consecutivo y
// su propio snapshot fiscal del cliente (refrescado al momento de la división,
// no copiado de una "madre"). El residuo de redondeo de cada línea se asigna a
// la última configuración para que las hermanas sumen exacto el original.
func (uc *InvoiceUseCase) CreateSplitInvoices(ctx context.Context, companyID, userID string, common SplitCommonData, manualItems []ManualItemInput, configs []SplitConfig) ([]string, error) {
	if len(configs) < 2 {
		return nil, domain.ErrInvalidInput
	}
	var pctSum decimal.Decimal
	for _, c := range configs {
		if c.ClientID == "" || !c.Percentage.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		pctSum = pctSum.Add(c.Percentage)
	}
	if !pctSum.Equal(hundred) {
		return nil, domain.ErrIntegrity
	}

	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if !company.FiscalReady() {
		return nil, domain.ErrDependency
	}

	// Snapshot fiscal fresco por cada entidad destino.
	clients := make([]*entity.Client, len(configs))
	for i, c := range configs {
		cl, err := uc.clientRepo.GetByID(ctx, c.ClientID)
		if err != nil {
			return nil, err
		}
		if cl == nil {
			return nil, domain.ErrNotFound
		}
		if cl.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
		clients[i] = cl
	}

	seriesName, _, err := uc.numbering.ResolveSeries(ctx, companyID, entity.DocTypeInvoice, common.Series)
	if err != nil {
		return nil, err
	}
	if seriesName == "" {
		return nil, domain.ErrInvalidInput
	}

	// Ítems base: consolidación de notas + líneas manuales.
	var baseItems []*entity.InvoiceItem
	if len(common.SourceNoteIDs) > 0 {
		cons, err := uc.Consolidate(ctx, companyID, common.SourceNoteIDs)
		if err != nil {
			return nil, err
		}
		baseItems = cons.Items
	}
	for _, m := range manualItems {
		if !m.Quantity.GreaterThan(decimal.Zero) || m.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		subtotal := m.Quantity.Mul(m.UnitPrice).Round(2)
		baseItems = append(baseItems, &entity.InvoiceItem{
			ID:          uuid.New().String(),
			Description: m.Description,
			Category:    domainbilling.Classify(domainbilling.LineClass{IsManual: m.ServiceID == "", ServiceID: m.ServiceID}),
			Quantity:    m.Quantity,
			UnitPrice:   m.UnitPrice,
			VATRate:     m.VATRate,
			Subtotal:    subtotal,
			VATAmount:   subtotal.Mul(normalizeRate(m.VATRate)).Round(2),
			Cost:        m.Cost,
		})
	}
	if len(baseItems) == 0 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	splitGroupID := uuid.New().String()
	invoiceIDs := make([]string, 0, len(configs))

	err = uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		noteRepo repository.DeliveryNoteRepository,
		deliveryRepo repository.DeliveryRepository,
		orderRepo repository.OrderRepository,
		seqRepo repository.SequenceRepository,
	) error {
		// residuo por línea: lo ya asignado a hermanas anteriores
		type assigned struct{ subtotal, vat, cost, qty decimal.Decimal }
		carried := make([]assigned, len(baseItems))

		for ci, cfg := range configs {
			last := ci == len(configs)-1
			var totals entity.InvoiceTotals
			items := make([]*entity.InvoiceItem, 0, len(baseItems))
			for bi, base := range baseItems {
				var sub, vat, cost, qty decimal.Decimal
				if last {
					// la última hermana absorbe el residuo de redondeo
					sub = base.Subtotal.Sub(carried[bi].subtotal)
					vat = base.VATAmount.Sub(carried[bi].vat)
					cost = base.Cost.Sub(carried[bi].cost)
					qty = base.Quantity.Sub(carried[bi].qty)
				} else {
					frac := cfg.Percentage.Div(hundred)
					sub = base.Subtotal.Mul(frac).Round(2)
					vat = base.VATAmount.Mul(frac).Round(2)
					cost = base.Cost.Mul(frac).Round(2)
					qty = base.Quantity.Mul(frac).Round(4)
					carried[bi].subtotal = carried[bi].subtotal.Add(sub)
					carried[bi].vat = carried[bi].vat.Add(vat)
					carried[bi].cost = carried[bi].cost.Add(cost)
					carried[bi].qty = carried[bi].qty.Add(qty)
				}
				items = append(items, &entity.InvoiceItem{
					ID:          uuid.New().String(),
					NoteLineID:  base.NoteLineID,
					ProductID:   base.ProductID,
					Description: base.Description,
					Category:    base.Category,
					Quantity:    qty,
					UnitPrice:   base.UnitPrice,
					VATRate:     base.VATRate,
					Subtotal:    sub,
					VATAmount:   vat,
					Cost:        cost,
				})
				domainbilling.AccumulateLine(&totals, base.Category, sub, vat, cost)
			}

			number, err := uc.numbering.NextNumber(ctx, seqRepo, seriesName, now.Year())
			if err != nil {
				return err
			}
			grandTotal := domainbilling.GrandTotal(&totals)
			client := clients[ci]
			inv := &entity.Invoice{
				ID:              uuid.New().String(),
				CompanyID:       companyID,
				ClientID:        cfg.ClientID,
				Number:          number,
				IssueDate:       now,
				DueDate:         now.AddDate(0, 0, client.DueDays),
				PeriodFrom:      common.PeriodFrom,
				PeriodTo:        common.PeriodTo,
				Status:          entity.InvoiceStatusIssued,
				EInvoiceStatus:  entity.EInvoiceStatusNone,
				SplitGroupID:    splitGroupID,
				SplitPercentage: cfg.Percentage,
				SourceNoteIDs:   common.SourceNoteIDs,
				CompanySnapshot: company.Snapshot(),
				ClientSnapshot:  client.Snapshot(),
				Totals:          totals,
				GrandTotal:      grandTotal,
				PaidAmount:      decimal.Zero,
				RemainingAmount: grandTotal,
				CreatedAt:       now,
				UpdatedAt:       now,
				CreatedBy:       userID,
			}
			for _, it := range items {
				it.InvoiceID = inv.ID
			}
			if err := invoiceRepo.Create(ctx, inv, items); err != nil {
				return err
			}
			invoiceIDs = append(invoiceIDs, inv.ID)
		}
		return uc.markSourcesInvoiced(ctx, noteRepo, deliveryRepo, orderRepo, common.SourceNoteIDs)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("split_group_id", splitGroupID).
		Int("invoices", len(invoiceIDs)).
		Msg("facturas divididas emitidas")
	return invoiceIDs, nil
}
