package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acampos/almacen-api/internal/application/catalog"
	"github.com/acampos/almacen-api/internal/application/inventory"
	"github.com/acampos/almacen-api/internal/application/orders"
	"github.com/acampos/almacen-api/internal/application/replenishment"
	"github.com/acampos/almacen-api/pkg/logger"
	"github.com/acampos/almacen-api/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC     *catalog.ProductUseCase
	ReferenceUC   *catalog.ReferenceUseCase
	LocationUC    *catalog.LocationUseCase
	LedgerUC      *inventory.LedgerUseCase
	OrderUC       *orders.OrderUseCase
	Replenishment *replenishment.UseCase
	Logger        *logger.Logger
	Metrics       *metrics.Metrics // nil = métricas deshabilitadas
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(MetricsMiddleware(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Catálogo
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/barcode/:barcode", productHandler.GetByBarcode)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Deactivate)

	referenceHandler := NewReferenceHandler(deps.ReferenceUC)
	categories := api.Group("/categories")
	categories.Post("/", referenceHandler.CreateCategory)
	categories.Get("/", referenceHandler.ListCategories)
	suppliers := api.Group("/suppliers")
	suppliers.Post("/", referenceHandler.CreateSupplier)
	suppliers.Get("/", referenceHandler.ListSuppliers)

	// Almacenes y ubicaciones
	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.LocationUC)
	warehouses.Post("/", warehouseHandler.CreateWarehouse)
	warehouses.Get("/:id", warehouseHandler.GetWarehouse)
	warehouses.Post("/:id/locations", warehouseHandler.CreateLocation)
	warehouses.Get("/:id/locations", warehouseHandler.ListLocations)
	locations := api.Group("/locations")
	locations.Get("/:id", warehouseHandler.GetLocation)
	locations.Delete("/:id", warehouseHandler.DeactivateLocation)

	// Libro de movimientos y stock
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC, deps.Logger, deps.Metrics)
	inv.Post("/movements", inventoryHandler.PostMovement)
	inv.Get("/movements", inventoryHandler.QueryMovements)
	inv.Post("/records", inventoryHandler.EnsureRecord)
	inv.Get("/stock/:id", inventoryHandler.GetStock)
	inv.Get("/stock/:id/availability", inventoryHandler.CheckAvailability)
	inv.Get("/locations/:id/contents", inventoryHandler.GetLocationContents)

	// Órdenes de compra y reposición
	ordersGroup := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC, deps.Replenishment, deps.Logger, deps.Metrics)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Put("/:id/lines", orderHandler.UpsertLine)
	ordersGroup.Delete("/:id/lines/:lineId", orderHandler.RemoveLine)
	ordersGroup.Post("/:id/transition", orderHandler.Transition)
	api.Get("/replenishment", orderHandler.Replenishment)
}
