package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Distribucion-api/internal/application/billing"
	"github.com/jhoicas/Distribucion-api/internal/application/catalog"
	"github.com/jhoicas/Distribucion-api/internal/application/fulfillment"
	"github.com/jhoicas/Distribucion-api/internal/application/inventory"
	"github.com/jhoicas/Distribucion-api/internal/application/sequence"
	"github.com/jhoicas/Distribucion-api/internal/application/treasury"
	"github.com/jhoicas/Distribucion-api/internal/infrastructure/efactura"
	infrapdf "github.com/jhoicas/Distribucion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Distribucion-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Distribucion-api/internal/interfaces/http"
	"github.com/jhoicas/Distribucion-api/pkg/config"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios ligados al pool: las operaciones multi-documento reciben
	// copias ligadas a la tx a través del TxRunner.
	companyRepo := postgres.NewCompanyRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	seriesRepo := postgres.NewSeriesRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	numbering := sequence.NewNumberingService(seriesRepo)
	ledgerUC := inventory.NewLedgerUseCase(txRunner, productRepo, log)
	fulfillmentUC := fulfillment.NewUseCase(
		txRunner, numbering, ledgerUC,
		postgres.NewDeliveryRepository(pool),
		postgres.NewDeliveryNoteRepository(pool),
		postgres.NewOrderRepository(pool),
		productRepo, log,
	)
	invoiceUC := billing.NewInvoiceUseCase(
		txRunner, numbering, invoiceRepo,
		postgres.NewDeliveryNoteRepository(pool),
		postgres.NewDeliveryRepository(pool),
		postgres.NewOrderRepository(pool),
		clientRepo, companyRepo, log,
	)
	documentUC := billing.NewDocumentUseCase(
		invoiceRepo,
		infrapdf.NewInvoicePDFGenerator(),
		efactura.NewXMLBuilder(),
	)
	paymentUC := treasury.NewPaymentUseCase(txRunner, paymentRepo, invoiceRepo, clientRepo, log)
	clientLedgerUC := treasury.NewLedgerUseCase(invoiceRepo, paymentRepo, clientRepo)

	productUC := catalog.NewProductUseCase(productRepo)
	clientUC := catalog.NewClientUseCase(clientRepo)
	companyUC := catalog.NewCompanyUseCase(companyRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	if cfg.HTTP.EnableSwagger {
		// Swagger UI en local: http://localhost:<port>/docs
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "DistriPro API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:    productUC,
		ClientUC:     clientUC,
		CompanyUC:    companyUC,
		Ledger:       ledgerUC,
		Fulfillment:  fulfillmentUC,
		Invoices:     invoiceUC,
		Documents:    documentUC,
		Payments:     paymentUC,
		ClientLedger: clientLedgerUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
