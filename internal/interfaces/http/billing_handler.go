package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Distribucion-api/internal/application/billing"
	"github.com/jhoicas/Distribucion-api/internal/application/dto"
	"github.com/jhoicas/Distribucion-api/internal/application/sequence"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// BillingHandler maneja facturas: emisión, división, anulación y documentos (protegido).
type BillingHandler struct {
	invoices  *billing.InvoiceUseCase
	documents *billing.DocumentUseCase
}

// NewBillingHandler construye el handler.
func NewBillingHandler(invoices *billing.InvoiceUseCase, documents *billing.DocumentUseCase) *BillingHandler {
	return &BillingHandler{invoices: invoices, documents: documents}
}

// CreateInvoice godoc
// @Summary      Emitir factura
// @Description  Consolida notas de entrega DELIVERED y líneas manuales en una
//
//	factura. Los totales se re-derivan en el servidor, nunca se aceptan
//	del cliente.
//
// @Tags         billing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "cliente, notas origen y/o líneas manuales"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      424   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *BillingHandler) CreateInvoice(c *fiber.Ctx) error {
	companyID, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err := h.invoices.CreateInvoice(c.Context(), companyID, userID, billing.CreateInvoiceInput{
		ClientID:      in.ClientID,
		Series:        in.Series,
		SourceNoteIDs: in.SourceNoteIDs,
		ManualItems:   manualItems(in.ManualItems),
		PeriodFrom:    in.PeriodFrom,
		PeriodTo:      in.PeriodTo,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoiceResponse(inv, nil))
}

// CreateSplitInvoices godoc
// @Summary      Dividir una facturación entre varias entidades
// @Description  Crea N facturas hermanas con un SplitGroupID compartido. Los
//
//	porcentajes deben sumar exactamente 100; el residuo de redondeo se
//	asigna a la última configuración.
//
// @Tags         billing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSplitInvoicesRequest  true  "notas origen y configuraciones de división"
// @Success      201   {object}  map[string][]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/invoices/split [post]
func (h *BillingHandler) CreateSplitInvoices(c *fiber.Ctx) error {
	companyID, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateSplitInvoicesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	configs := make([]billing.SplitConfig, 0, len(in.SplitConfigs))
	for _, sc := range in.SplitConfigs {
		configs = append(configs, billing.SplitConfig{ClientID: sc.ClientID, Percentage: sc.Percentage})
	}
	ids, err := h.invoices.CreateSplitInvoices(c.Context(), companyID, userID,
		billing.SplitCommonData{
			Series:        in.Series,
			SourceNoteIDs: in.SourceNoteIDs,
			PeriodFrom:    in.PeriodFrom,
			PeriodTo:      in.PeriodTo,
		},
		manualItems(in.ManualItems),
		configs,
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"invoice_ids": ids})
}

// GetInvoice godoc
// @Summary      Consultar factura con sus líneas
// @Tags         billing
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *BillingHandler) GetInvoice(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	inv, items, err := h.invoices.GetInvoice(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoiceResponse(inv, items))
}

// CancelInvoice godoc
// @Summary      Anular una factura individual
// @Description  Rechazada si la factura pertenece a un grupo de división (usar
//
//	el endpoint del grupo), fue enviada/aceptada externamente, tiene
//	pagos o está aprobada.
//
// @Tags         billing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la factura"
// @Param        body  body  dto.CancelRequest  true  "motivo"
// @Success      200   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/cancel [post]
func (h *BillingHandler) CancelInvoice(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CancelRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.invoices.CancelInvoice(c.Context(), companyID, c.Params("id"), in.Reason); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "factura anulada"})
}

// CancelSplitGroup godoc
// @Summary      Anular un grupo de división completo
// @Description  Todo o nada: si alguna hermana no es anulable (enviada,
//
//	aceptada, pagada o aprobada) no se anula ninguna.
//
// @Tags         billing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "SplitGroupID"
// @Param        body  body  dto.CancelRequest  true  "motivo"
// @Success      200   {object}  map[string]string
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/invoices/split-groups/{id}/cancel [post]
func (h *BillingHandler) CancelSplitGroup(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CancelRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.invoices.CancelSplitGroup(c.Context(), companyID, c.Params("id"), in.Reason); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "grupo de división anulado"})
}

// DownloadPDF godoc
// @Summary      Descargar la representación gráfica (PDF)
// @Tags         billing
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la factura"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *BillingHandler) DownloadPDF(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	pdfBytes, filename, err := h.documents.DownloadInvoicePDF(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// DownloadXML godoc
// @Summary      Descargar el XML UBL de la factura electrónica
// @Description  La primera generación exitosa mueve el ciclo electrónico de
//
//	NONE a DRAFT.
//
// @Tags         billing
// @Security     Bearer
// @Produce      application/xml
// @Param        id  path  string  true  "ID de la factura"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/xml [get]
func (h *BillingHandler) DownloadXML(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	xmlBytes, filename, err := h.documents.BuildEInvoiceXML(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(xmlBytes)
}

// SetEInvoiceStatus godoc
// @Summary      Avanzar el ciclo de factura electrónica
// @Description  Transiciones válidas: NONE->DRAFT->SENT->ACCEPTED|REJECTED,
//
//	REJECTED->SENT. SENT y ACCEPTED bloquean la anulación.
//
// @Tags         billing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la factura"
// @Param        body  body  map[string]string  true  "status destino"
// @Success      200   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/einvoice-status [put]
func (h *BillingHandler) SetEInvoiceStatus(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.documents.SetEInvoiceStatus(c.Context(), companyID, c.Params("id"), in.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "estado actualizado"})
}

func manualItems(in []dto.ManualItemRequest) []billing.ManualItemInput {
	items := make([]billing.ManualItemInput, 0, len(in))
	for _, m := range in {
		items = append(items, billing.ManualItemInput{
			Description: m.Description,
			ServiceID:   m.ServiceID,
			Quantity:    m.Quantity,
			UnitPrice:   m.UnitPrice,
			VATRate:     m.VATRate,
			Cost:        m.Cost,
		})
	}
	return items
}

func invoiceResponse(inv *entity.Invoice, items []*entity.InvoiceItem) dto.InvoiceResponse {
	resp := dto.InvoiceResponse{
		ID:              inv.ID,
		ClientID:        inv.ClientID,
		Number:          sequence.Format(inv.Number),
		IssueDate:       inv.IssueDate.Format("2006-01-02"),
		DueDate:         inv.DueDate.Format("2006-01-02"),
		Status:          inv.Status,
		EInvoiceStatus:  inv.EInvoiceStatus,
		SplitGroupID:    inv.SplitGroupID,
		GrandTotal:      inv.GrandTotal,
		PaidAmount:      inv.PaidAmount,
		RemainingAmount: inv.RemainingAmount,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Description: it.Description,
			Category:    it.Category,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			VATRate:     it.VATRate,
			Subtotal:    it.Subtotal,
			VATAmount:   it.VATAmount,
		})
	}
	return resp
}
