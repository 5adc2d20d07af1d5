package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/Distribucion-api/internal/application/sequence"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// InvoicePDFGenerator genera la representación gráfica de una factura.
type InvoicePDFGenerator interface {
	Generate(ctx context.Context, invoice *entity.Invoice, items []*entity.InvoiceItem) ([]byte, error)
}

// EInvoiceXMLBuilder construye el documento UBL de la factura electrónica.
type EInvoiceXMLBuilder interface {
	Build(invoice *entity.Invoice, items []*entity.InvoiceItem) ([]byte, error)
}

// Transiciones permitidas del ciclo de factura electrónica. SENT y ACCEPTED
// son los estados que bloquean la anulación de la factura.
var eInvoiceTransitions = map[string][]string{
	entity.EInvoiceStatusNone:     {entity.EInvoiceStatusDraft},
	entity.EInvoiceStatusDraft:    {entity.EInvoiceStatusSent},
	entity.EInvoiceStatusSent:     {entity.EInvoiceStatusAccepted, entity.EInvoiceStatusRejected},
	entity.EInvoiceStatusRejected: {entity.EInvoiceStatusSent},
}

// DocumentUseCase genera PDF y XML de facturas y administra el ciclo de
// factura electrónica.
type DocumentUseCase struct {
	invoiceRepo repository.InvoiceRepository
	pdfGen      InvoicePDFGenerator
	xmlBuilder  EInvoiceXMLBuilder
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(
	invoiceRepo repository.InvoiceRepository,
	pdfGen InvoicePDFGenerator,
	xmlBuilder EInvoiceXMLBuilder,
) *DocumentUseCase {
	return &DocumentUseCase{
		invoiceRepo: invoiceRepo,
		pdfGen:      pdfGen,
		xmlBuilder:  xmlBuilder,
	}
}

// DownloadInvoicePDF carga la factura, verifica tenencia y genera el PDF desde
// los snapshots congelados. Retorna también el nombre de archivo sugerido.
func (uc *DocumentUseCase) DownloadInvoicePDF(ctx context.Context, companyID, invoiceID string) (pdfBytes []byte, filename string, err error) {
	inv, items, err := uc.load(ctx, companyID, invoiceID)
	if err != nil {
		return nil, "", err
	}
	if inv.Status == entity.InvoiceStatusCancelled {
		return nil, "", domain.ErrConflict
	}
	pdfBytes, err = uc.pdfGen.Generate(ctx, inv, items)
	if err != nil {
		return nil, "", fmt.Errorf("generar pdf: %w", err)
	}
	filename = fmt.Sprintf("factura_%s.pdf", sequence.Format(inv.Number))
	return pdfBytes, filename, nil
}

// BuildEInvoiceXML genera el XML UBL de la factura. La primera generación
// exitosa mueve el ciclo de NONE a DRAFT.
func (uc *DocumentUseCase) BuildEInvoiceXML(ctx context.Context, companyID, invoiceID string) (xmlBytes []byte, filename string, err error) {
	inv, items, err := uc.load(ctx, companyID, invoiceID)
	if err != nil {
		return nil, "", err
	}
	if inv.Status == entity.InvoiceStatusCancelled {
		return nil, "", domain.ErrConflict
	}
	xmlBytes, err = uc.xmlBuilder.Build(inv, items)
	if err != nil {
		return nil, "", fmt.Errorf("generar xml: %w", err)
	}
	if inv.EInvoiceStatus == entity.EInvoiceStatusNone {
		if err := uc.invoiceRepo.UpdateEInvoiceStatus(ctx, inv.ID, entity.EInvoiceStatusDraft); err != nil {
			return nil, "", err
		}
	}
	filename = fmt.Sprintf("factura_%s.xml", sequence.Format(inv.Number))
	return xmlBytes, filename, nil
}

// SetEInvoiceStatus avanza el ciclo de factura electrónica validando la transición.
func (uc *DocumentUseCase) SetEInvoiceStatus(ctx context.Context, companyID, invoiceID, status string) error {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv == nil {
		return domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return domain.ErrForbidden
	}
	allowed := false
	for _, next := range eInvoiceTransitions[inv.EInvoiceStatus] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return domain.ErrConflict
	}
	return uc.invoiceRepo.UpdateEInvoiceStatus(ctx, inv.ID, status)
}

func (uc *DocumentUseCase) load(ctx context.Context, companyID, invoiceID string) (*entity.Invoice, []*entity.InvoiceItem, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if inv == nil {
		return nil, nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, nil, domain.ErrForbidden
	}
	items, err := uc.invoiceRepo.GetItems(ctx, inv.ID)
	if err != nil {
		return nil, nil, err
	}
	return inv, items, nil
}
