package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Distribucion-api/internal/application/billing"
	"github.com/jhoicas/Distribucion-api/internal/application/catalog"
	"github.com/jhoicas/Distribucion-api/internal/application/fulfillment"
	"github.com/jhoicas/Distribucion-api/internal/application/inventory"
	"github.com/jhoicas/Distribucion-api/internal/application/treasury"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC    *catalog.ProductUseCase
	ClientUC     *catalog.ClientUseCase
	CompanyUC    *catalog.CompanyUseCase
	Ledger       *inventory.LedgerUseCase
	Fulfillment  *fulfillment.UseCase
	Invoices     *billing.InvoiceUseCase
	Documents    *billing.DocumentUseCase
	Payments     *treasury.PaymentUseCase
	ClientLedger *treasury.LedgerUseCase
	JWTSecret    string
}

// Router registra las rutas de la API. Todas las rutas de negocio van detrás
// del middleware JWT; el token aporta companyID y userID.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo (protegido)
	catalogHandler := NewCatalogHandler(deps.ProductUC, deps.ClientUC, deps.CompanyUC)
	products := protected.Group("/products")
	products.Post("/", catalogHandler.CreateProduct)
	products.Get("/", catalogHandler.ListProducts)
	products.Get("/:id", catalogHandler.GetProduct)
	products.Put("/:id", catalogHandler.UpdateProduct)

	clients := protected.Group("/clients")
	clients.Post("/", catalogHandler.CreateClient)
	clients.Get("/", catalogHandler.ListClients)
	clients.Get("/:id", catalogHandler.GetClient)
	clients.Put("/:id", catalogHandler.UpdateClient)

	company := protected.Group("/company")
	company.Get("/", catalogHandler.GetCompany)
	company.Put("/", catalogHandler.UpdateCompany)

	// Inventario (protegido)
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	invGroup := protected.Group("/inventory")
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/products/:id/available", inventoryHandler.GetAvailable)
	invGroup.Get("/products/:id/movements", inventoryHandler.ListMovements)

	// Remisiones (protegido)
	fulfillmentHandler := NewFulfillmentHandler(deps.Fulfillment)
	notes := protected.Group("/delivery-notes")
	notes.Post("/", fulfillmentHandler.CreateNote)
	notes.Post("/:id/confirm", fulfillmentHandler.ConfirmNote)
	notes.Post("/:id/cancel", fulfillmentHandler.CancelNote)

	// Facturación (protegido)
	billingHandler := NewBillingHandler(deps.Invoices, deps.Documents)
	invoices := protected.Group("/invoices")
	invoices.Post("/", billingHandler.CreateInvoice)
	invoices.Post("/split", billingHandler.CreateSplitInvoices)
	invoices.Post("/split-groups/:id/cancel", billingHandler.CancelSplitGroup)
	invoices.Get("/:id", billingHandler.GetInvoice)
	invoices.Post("/:id/cancel", billingHandler.CancelInvoice)
	invoices.Get("/:id/pdf", billingHandler.DownloadPDF)
	invoices.Get("/:id/xml", billingHandler.DownloadXML)
	invoices.Put("/:id/einvoice-status", billingHandler.SetEInvoiceStatus)

	// Tesorería (protegido)
	treasuryHandler := NewTreasuryHandler(deps.Payments, deps.ClientLedger)
	payments := protected.Group("/payments")
	payments.Post("/", treasuryHandler.RecordPayment)
	payments.Post("/:id/cancel", treasuryHandler.CancelPayment)
	payments.Delete("/allocations/:id", treasuryHandler.ReverseAllocation)

	clients.Get("/:id/ledger", treasuryHandler.ClientLedger)
	clients.Get("/:id/summary", treasuryHandler.ClientSummary)
}
