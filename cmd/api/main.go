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

	"github.com/acampos/almacen-api/internal/application/catalog"
	"github.com/acampos/almacen-api/internal/application/inventory"
	"github.com/acampos/almacen-api/internal/application/orders"
	"github.com/acampos/almacen-api/internal/application/replenishment"
	"github.com/acampos/almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/acampos/almacen-api/internal/interfaces/http"
	"github.com/acampos/almacen-api/pkg/config"
	"github.com/acampos/almacen-api/pkg/logger"
	"github.com/acampos/almacen-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
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

	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	recordRepo := postgres.NewInventoryRecordRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	orderRepo := postgres.NewPurchaseOrderRepository(pool)
	lineRepo := postgres.NewOrderLineRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	productUC := catalog.NewProductUseCase(productRepo, categoryRepo, supplierRepo, nil)
	referenceUC := catalog.NewReferenceUseCase(categoryRepo, supplierRepo, nil)
	locationUC := catalog.NewLocationUseCase(warehouseRepo, locationRepo, recordRepo, nil)
	ledgerUC := inventory.NewLedgerUseCase(
		txRunner, productRepo, locationRepo, recordRepo, movementRepo,
		cfg.Inventory.ReceivingLocationID, nil,
	)
	orderUC := orders.NewOrderUseCase(
		txRunner, ledgerUC, orderRepo, lineRepo, supplierRepo, productRepo,
		locationRepo, cfg.Inventory.ReceivingLocationID, nil,
	)
	replenishmentUC := replenishment.NewUseCase(productRepo, recordRepo)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Prefix)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almacén API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:     productUC,
		ReferenceUC:   referenceUC,
		LocationUC:    locationUC,
		LedgerUC:      ledgerUC,
		OrderUC:       orderUC,
		Replenishment: replenishmentUC,
		Logger:        log,
		Metrics:       m,
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
