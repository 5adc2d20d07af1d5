package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/application/sequence"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	domainbilling "github.com/jhoicas/Distribucion-api/internal/domain/billing"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	domainrules "github.com/jhoicas/Distribucion-api/internal/domain/fulfillment"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

// InvoiceUseCase crea facturas desde notas de entrega consolidadas (o líneas
// manuales), con divisiones por porcentaje y anulación de grupos.
type InvoiceUseCase struct {
	txRunner     TxRunner
	numbering    *sequence.NumberingService
	invoiceRepo  repository.InvoiceRepository
	noteRepo     repository.DeliveryNoteRepository
	deliveryRepo repository.DeliveryRepository
	orderRepo    repository.OrderRepository
	clientRepo   repository.ClientRepository
	companyRepo  repository.CompanyRepository
	log          *logger.Logger
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	txRunner TxRunner,
	numbering *sequence.NumberingService,
	invoiceRepo repository.InvoiceRepository,
	noteRepo repository.DeliveryNoteRepository,
	deliveryRepo repository.DeliveryRepository,
	orderRepo repository.OrderRepository,
	clientRepo repository.ClientRepository,
	companyRepo repository.CompanyRepository,
	log *logger.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:     txRunner,
		numbering:    numbering,
		invoiceRepo:  invoiceRepo,
		noteRepo:     noteRepo,
		deliveryRepo: deliveryRepo,
		orderRepo:    orderRepo,
		clientRepo:   clientRepo,
		companyRepo:  companyRepo,
		log:          log,
	}
}

// ManualItemInput es una línea digitada a mano (sin nota de entrega origen).
type ManualItemInput struct {
	Description string
	ServiceID   string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
	Cost        decimal.Decimal
}

// CreateInvoiceInput entrada para CreateInvoice.
type CreateInvoiceInput struct {
	ClientID      string
	Series        string
	SourceNoteIDs []string
	ManualItems   []ManualItemInput
	PeriodFrom    time.Time
	PeriodTo      time.Time
}

// CreateInvoice emite una factura. Los totales se re-derivan SIEMPRE en el
// servidor a partir de las líneas (jamás se confían totales del cliente).
// En una sola transacción: consecutivo, factura con snapshots fiscales
// congelados, notas origen a INVOICED, entregas a INVOICED y recálculo de cada
// pedido relacionado sobre el eje de facturación.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, companyID, userID string, in CreateInvoiceInput) (*entity.Invoice, error) {
	if in.ClientID == "" || (len(in.SourceNoteIDs) == 0 && len(in.ManualItems) == 0) {
		return nil, domain.ErrInvalidInput
	}

	client, err := uc.clientRepo.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	if client.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	// Sin email/banco configurados la generación se bloquea completa: nunca
	// sale un documento fiscal incompleto.
	if !company.FiscalReady() {
		return nil, domain.ErrDependency
	}

	seriesName, _, err := uc.numbering.ResolveSeries(ctx, companyID, entity.DocTypeInvoice, in.Series)
	if err != nil {
		return nil, err
	}
	if seriesName == "" {
		return nil, domain.ErrInvalidInput // serie ambigua: el llamador debe elegir
	}

	// Consolidación de notas + líneas manuales; totales server-side.
	var items []*entity.InvoiceItem
	var totals entity.InvoiceTotals
	if len(in.SourceNoteIDs) > 0 {
		cons, err := uc.Consolidate(ctx, companyID, in.SourceNoteIDs)
		if err != nil {
			return nil, err
		}
		items = cons.Items
		totals = cons.Totals
	}
	for _, m := range in.ManualItems {
		if !m.Quantity.GreaterThan(decimal.Zero) || m.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		subtotal := m.Quantity.Mul(m.UnitPrice).Round(2)
		vat := subtotal.Mul(normalizeRate(m.VATRate)).Round(2)
		category := domainbilling.Classify(domainbilling.LineClass{IsManual: m.ServiceID == "", ServiceID: m.ServiceID})
		items = append(items, &entity.InvoiceItem{
			ID:          uuid.New().String(),
			Description: m.Description,
			Category:    category,
			Quantity:    m.Quantity,
			UnitPrice:   m.UnitPrice,
			VATRate:     m.VATRate,
			Subtotal:    subtotal,
			VATAmount:   vat,
			Cost:        m.Cost,
		})
		domainbilling.AccumulateLine(&totals, category, subtotal, vat, m.Cost)
	}

	now := time.Now()
	grandTotal := domainbilling.GrandTotal(&totals)
	inv := &entity.Invoice{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		ClientID:        in.ClientID,
		IssueDate:       now,
		DueDate:         now.AddDate(0, 0, client.DueDays),
		PeriodFrom:      in.PeriodFrom,
		PeriodTo:        in.PeriodTo,
		Status:          entity.InvoiceStatusIssued,
		EInvoiceStatus:  entity.EInvoiceStatusNone,
		SourceNoteIDs:   in.SourceNoteIDs,
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

	err = uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		noteRepo repository.DeliveryNoteRepository,
		deliveryRepo repository.DeliveryRepository,
		orderRepo repository.OrderRepository,
		seqRepo repository.SequenceRepository,
	) error {
		number, err := uc.numbering.NextNumber(ctx, seqRepo, seriesName, now.Year())
		if err != nil {
			return err
		}
		inv.Number = number
		for _, it := range items {
			it.InvoiceID = inv.ID
		}
		if err := invoiceRepo.Create(ctx, inv, items); err != nil {
			return err
		}
		return uc.markSourcesInvoiced(ctx, noteRepo, deliveryRepo, orderRepo, in.SourceNoteIDs)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("number", sequence.Format(inv.Number)).
		Str("grand_total", inv.GrandTotal.String()).
		Msg("factura emitida")
	return inv, nil
}

// markSourcesInvoiced pasa notas y entregas origen a INVOICED y recalcula cada
// pedido relacionado con la regla todas/algunas/ninguna sobre el eje de
// facturación (misma forma que la entrega, pero mirando INVOICED).
func (uc *InvoiceUseCase) markSourcesInvoiced(
	ctx context.Context,
	noteRepo repository.DeliveryNoteRepository,
	deliveryRepo repository.DeliveryRepository,
	orderRepo repository.OrderRepository,
	noteIDs []string,
) error {
	orderIDs := make(map[string]struct{})
	for _, noteID := range noteIDs {
		note, err := noteRepo.GetByID(ctx, noteID)
		if err != nil {
			return err
		}
		if note == nil {
			return domain.ErrNotFound
		}
		if !domainrules.NoteCanTransition(note.Status, entity.NoteStatusInvoiced) {
			return domain.ErrConflict
		}
		if err := noteRepo.UpdateStatus(ctx, note.ID, entity.NoteStatusInvoiced, ""); err != nil {
			return err
		}
		if err := deliveryRepo.UpdateStatus(ctx, note.DeliveryID, entity.DeliveryStatusInvoiced); err != nil {
			return err
		}
		orderIDs[note.OrderID] = struct{}{}
	}
	for orderID := range orderIDs {
		siblings, err := deliveryRepo.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := orderRepo.UpdateStatus(ctx, orderID, domainrules.OrderStatusAfterInvoicing(siblings)); err != nil {
			return err
		}
	}
	return nil
}

// GetInvoice obtiene una factura con sus líneas.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, companyID, id string) (*entity.Invoice, []*entity.InvoiceItem, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if inv == nil {
		return nil, nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, nil, domain.ErrForbidden
	}
	items, err := uc.invoiceRepo.GetItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return inv, items, nil
}
