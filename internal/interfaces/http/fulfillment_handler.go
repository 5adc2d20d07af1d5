package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Distribucion-api/internal/application/dto"
	"github.com/jhoicas/Distribucion-api/internal/application/fulfillment"
	"github.com/jhoicas/Distribucion-api/internal/application/sequence"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// FulfillmentHandler maneja las notas de entrega (protegido).
type FulfillmentHandler struct {
	uc *fulfillment.UseCase
}

// NewFulfillmentHandler construye el handler.
func NewFulfillmentHandler(uc *fulfillment.UseCase) *FulfillmentHandler {
	return &FulfillmentHandler{uc: uc}
}

// CreateNote godoc
// @Summary      Emitir nota de entrega
// @Description  Congela las líneas de la entrega, obtiene el consecutivo y pasa
//
//	la entrega a IN_TRANSIT. Si hay varias series activas y no se envió
//	series, responde pidiendo selección explícita.
//
// @Tags         fulfillment
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDeliveryNoteRequest  true  "delivery_id y serie opcional"
// @Success      201   {object}  dto.DeliveryNoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      424   {object}  dto.ErrorResponse
// @Router       /api/delivery-notes [post]
func (h *FulfillmentHandler) CreateNote(c *fiber.Ctx) error {
	companyID, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateDeliveryNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.CreateDeliveryNote(c.Context(), companyID, userID, in.DeliveryID, in.Series)
	if err != nil {
		return respondError(c, err)
	}
	if result.RequireSeriesSelection {
		return c.Status(fiber.StatusConflict).JSON(dto.DeliveryNoteResponse{
			RequireSeriesSelection: true,
			SeriesChoices:          result.SeriesChoices,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(noteResponse(result.Note, result.Lines, false))
}

// ConfirmNote godoc
// @Summary      Confirmar entrega de una nota
// @Description  IN_TRANSIT -> DELIVERED: libera reservas, consume capas FIFO y
//
//	recalcula estados de entrega y pedido en una sola transacción.
//
// @Tags         fulfillment
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la nota"
// @Success      200  {object}  dto.DeliveryNoteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/delivery-notes/{id}/confirm [post]
func (h *FulfillmentHandler) ConfirmNote(c *fiber.Ctx) error {
	companyID, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	result, err := h.uc.ConfirmDeliveryNote(c.Context(), companyID, userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	resp := noteResponse(result.Note, nil, result.ProvisionalCosting)
	return c.JSON(resp)
}

// CancelNote godoc
// @Summary      Anular una nota en tránsito
// @Description  Solo desde IN_TRANSIT y con motivo obligatorio. La entrega
//
//	vuelve a SCHEDULED; el libro de inventario no se toca.
//
// @Tags         fulfillment
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la nota"
// @Param        body  body  dto.CancelDeliveryNoteRequest  true  "motivo (mínimo 10 caracteres)"
// @Success      200   {object}  dto.DeliveryNoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/delivery-notes/{id}/cancel [post]
func (h *FulfillmentHandler) CancelNote(c *fiber.Ctx) error {
	companyID, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CancelDeliveryNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	note, err := h.uc.CancelDeliveryNote(c.Context(), companyID, userID, c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(noteResponse(note, nil, false))
}

func noteResponse(n *entity.DeliveryNote, lines []*entity.DeliveryNoteLine, provisional bool) dto.DeliveryNoteResponse {
	resp := dto.DeliveryNoteResponse{
		ID:                 n.ID,
		DeliveryID:         n.DeliveryID,
		OrderID:            n.OrderID,
		Number:             sequence.Format(n.Number),
		Status:             n.Status,
		ProvisionalCosting: provisional,
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.DeliveryNoteLineResponse{
			ID:              l.ID,
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			UnitCostFIFO:    l.UnitCostFIFO,
			LineCostFIFO:    l.LineCostFIFO,
			CostProvisional: l.CostProvisional,
		})
	}
	return resp
}
