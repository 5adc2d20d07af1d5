package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Distribucion-api/internal/application/dto"
	"github.com/jhoicas/Distribucion-api/internal/application/treasury"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// TreasuryHandler maneja pagos, asignaciones y extracto de clientes (protegido).
type TreasuryHandler struct {
	payments *treasury.PaymentUseCase
	ledger   *treasury.LedgerUseCase
}

// NewTreasuryHandler construye el handler.
func NewTreasuryHandler(payments *treasury.PaymentUseCase, ledger *treasury.LedgerUseCase) *TreasuryHandler {
	return &TreasuryHandler{payments: payments, ledger: ledger}
}

// RecordPayment godoc
// @Summary      Registrar pago de cliente
// @Description  Sin asignaciones explícitas se aplica automáticamente contra
//
//	las facturas pendientes por vencimiento ascendente. El sobrante queda
//	sin asignar sobre el pago.
//
// @Tags         treasury
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordPaymentRequest  true  "cliente, monto y asignaciones opcionales"
// @Success      201   {object}  dto.PaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/payments [post]
func (h *TreasuryHandler) RecordPayment(c *fiber.Ctx) error {
	companyID, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.RecordPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	allocations := make([]treasury.ExplicitAllocation, 0, len(in.Allocations))
	for _, a := range in.Allocations {
		allocations = append(allocations, treasury.ExplicitAllocation{InvoiceID: a.InvoiceID, Amount: a.Amount})
	}
	payment, err := h.payments.RecordPayment(c.Context(), companyID, userID, treasury.RecordPaymentInput{
		ClientID:    in.ClientID,
		Amount:      in.Amount,
		Date:        in.Date,
		Reference:   in.Reference,
		Allocations: allocations,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(paymentResponse(payment))
}

// ReverseAllocation godoc
// @Summary      Revertir una asignación pago-factura
// @Description  Restaura el saldo de la factura y el monto sin asignar del pago.
// @Tags         treasury
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la asignación"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/payments/allocations/{id} [delete]
func (h *TreasuryHandler) ReverseAllocation(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.payments.ReverseAllocation(c.Context(), companyID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "asignación revertida"})
}

// CancelPayment godoc
// @Summary      Anular un pago
// @Description  Solo se permite si el pago no tiene asignaciones vigentes:
//
//	primero hay que revertirlas una a una.
//
// @Tags         treasury
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del pago"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/payments/{id}/cancel [post]
func (h *TreasuryHandler) CancelPayment(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.payments.CancelPayment(c.Context(), companyID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "pago anulado"})
}

// ClientLedger godoc
// @Summary      Extracto del cliente
// @Description  Unión de facturas (débito) y pagos (crédito) ordenados por
//
//	fecha con saldo corrido.
//
// @Tags         treasury
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del cliente"
// @Param        from   query  string  false  "Fecha inicial"
// @Param        to     query  string  false  "Fecha final"
// @Success      200  {array}   dto.LedgerEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clients/{id}/ledger [get]
func (h *TreasuryHandler) ClientLedger(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rango de fechas inválido"})
	}
	entries, err := h.ledger.ClientLedger(c.Context(), companyID, c.Params("id"), from, to, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := dto.LedgerEntryResponse{
			Type:       e.Type,
			DocumentID: e.DocumentID,
			Number:     e.Number,
			Date:       e.Date.Format("2006-01-02"),
			Debit:      e.Debit,
			Credit:     e.Credit,
			Balance:    e.Balance,
			Overdue:    e.Overdue,
		}
		if e.Type == entity.LedgerEntryInvoice {
			resp.DueDate = e.DueDate.Format("2006-01-02")
		}
		out = append(out, resp)
	}
	return c.JSON(fiber.Map{"total": len(out), "entries": out})
}

// ClientSummary godoc
// @Summary      Posición del cliente (saldo, vencido, cupo)
// @Tags         treasury
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del cliente"
// @Success      200  {object}  dto.ClientSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clients/{id}/summary [get]
func (h *TreasuryHandler) ClientSummary(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	summary, err := h.ledger.ClientSummary(c.Context(), companyID, c.Params("id"), time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ClientSummaryResponse{
		ClientID:       summary.ClientID,
		Outstanding:    summary.Outstanding,
		Overdue:        summary.Overdue,
		CreditLimit:    summary.CreditLimit,
		CreditExceeded: summary.CreditExceeded,
	})
}

func paymentResponse(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:                p.ID,
		ClientID:          p.ClientID,
		Amount:            p.Amount,
		AllocatedAmount:   p.AllocatedAmount,
		UnallocatedAmount: p.UnallocatedAmount,
		Date:              p.Date.Format("2006-01-02"),
		Status:            p.Status,
	}
}
