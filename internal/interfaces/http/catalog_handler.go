package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Distribucion-api/internal/application/catalog"
	"github.com/jhoicas/Distribucion-api/internal/application/dto"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// CatalogHandler maneja los datos maestros: artículos, clientes y empresa (protegido).
type CatalogHandler struct {
	products *catalog.ProductUseCase
	clients  *catalog.ClientUseCase
	company  *catalog.CompanyUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(products *catalog.ProductUseCase, clients *catalog.ClientUseCase, company *catalog.CompanyUseCase) *CatalogHandler {
	return &CatalogHandler{products: products, clients: clients, company: company}
}

// CreateProduct godoc
// @Summary      Crear artículo del catálogo
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductRequest  true  "sku, nombre, clase y precios"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	p := productFromRequest(in)
	if err := h.products.Create(c.Context(), companyID, p); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": p.ID})
}

// GetProduct godoc
// @Summary      Consultar artículo
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del artículo"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	p, err := h.products.GetByID(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

// ListProducts godoc
// @Summary      Listar artículos
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  map[string]string
// @Router       /api/products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.products.List(c.Context(), companyID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "products": list})
}

// UpdateProduct godoc
// @Summary      Actualizar artículo
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del artículo"
// @Param        body  body  dto.ProductRequest  true  "campos a actualizar"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	p := productFromRequest(in)
	p.ID = c.Params("id")
	if err := h.products.Update(c.Context(), companyID, p); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "artículo actualizado"})
}

// CreateClient godoc
// @Summary      Crear cliente
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ClientRequest  true  "nombre, NIT, plazo y cupo"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/clients [post]
func (h *CatalogHandler) CreateClient(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ClientRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	cl := clientFromRequest(in)
	if err := h.clients.Create(c.Context(), companyID, cl); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": cl.ID})
}

// GetClient godoc
// @Summary      Consultar cliente
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del cliente"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [get]
func (h *CatalogHandler) GetClient(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	cl, err := h.clients.GetByID(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cl)
}

// ListClients godoc
// @Summary      Listar clientes
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  map[string]string
// @Router       /api/clients [get]
func (h *CatalogHandler) ListClients(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.clients.List(c.Context(), companyID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "clients": list})
}

// UpdateClient godoc
// @Summary      Actualizar cliente
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del cliente"
// @Param        body  body  dto.ClientRequest  true  "campos a actualizar"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [put]
func (h *CatalogHandler) UpdateClient(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ClientRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	cl := clientFromRequest(in)
	cl.ID = c.Params("id")
	if err := h.clients.Update(c.Context(), companyID, cl); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "cliente actualizado"})
}

// GetCompany godoc
// @Summary      Consultar empresa emisora
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/company [get]
func (h *CatalogHandler) GetCompany(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	co, err := h.company.Get(c.Context(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"company":      co,
		"fiscal_ready": co.FiscalReady(),
	})
}

// UpdateCompany godoc
// @Summary      Actualizar empresa emisora
// @Description  Email, banco y cuenta bancaria son requisito para emitir
//
//	documentos fiscales: mientras falten, la emisión responde 424.
//
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CompanyRequest  true  "datos fiscales y bancarios"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/company [put]
func (h *CatalogHandler) UpdateCompany(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	co := &entity.Company{
		Name:        in.Name,
		TaxID:       in.TaxID,
		Address:     in.Address,
		City:        in.City,
		Phone:       in.Phone,
		Email:       in.Email,
		BankName:    in.BankName,
		BankAccount: in.BankAccount,
	}
	if err := h.company.Update(c.Context(), companyID, co); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "empresa actualizada", "fiscal_ready": co.FiscalReady()})
}

func productFromRequest(in dto.ProductRequest) *entity.Product {
	p := &entity.Product{
		SKU:           in.SKU,
		Name:          in.Name,
		Kind:          in.Kind,
		UnitMeasure:   in.UnitMeasure,
		UnitFactor:    in.UnitFactor,
		Price:         in.Price,
		ReferenceCost: in.ReferenceCost,
		VATRate:       in.VATRate,
		IsActive:      true,
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return p
}

func clientFromRequest(in dto.ClientRequest) *entity.Client {
	cl := &entity.Client{
		Name:        in.Name,
		TaxID:       in.TaxID,
		Address:     in.Address,
		City:        in.City,
		Phone:       in.Phone,
		Email:       in.Email,
		DueDays:     in.DueDays,
		CreditLimit: in.CreditLimit,
		IsActive:    true,
	}
	if in.IsActive != nil {
		cl.IsActive = *in.IsActive
	}
	return cl
}
