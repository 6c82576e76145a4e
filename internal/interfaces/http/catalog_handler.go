package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/acampos/almacen-api/internal/application/catalog"
	"github.com/acampos/almacen-api/internal/application/dto"
)

// actorID devuelve el identificador del actor que firma la operación.
// La autenticación vive en una capa externa; aquí solo se exige el header.
func actorID(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get("X-Actor-Id"))
}

// ProductHandler maneja las peticiones HTTP del catálogo de productos.
type ProductHandler struct {
	uc *catalog.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *catalog.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create godoc
// @Summary  Registrar producto
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    body  body      dto.CreateProductRequest  true  "Producto"
// @Success  201   {object}  dto.ProductResponse
// @Failure  400   {object}  dto.ErrorResponse
// @Failure  409   {object}  dto.ErrorResponse
// @Router   /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	product, err := h.uc.CreateProduct(c.Context(), catalog.CreateProductInput{
		Barcode:       in.Barcode,
		Name:          in.Name,
		Description:   in.Description,
		CategoryID:    in.CategoryID,
		SupplierID:    in.SupplierID,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		StockMin:      in.StockMin,
		StockMax:      in.StockMax,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromProduct(product))
}

// GetByID godoc
// @Summary  Obtener producto
// @Tags     products
// @Produce  json
// @Param    id   path      string  true  "ID del producto"
// @Success  200  {object}  dto.ProductResponse
// @Failure  404  {object}  dto.ErrorResponse
// @Router   /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	product, err := h.uc.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromProduct(product))
}

// GetByBarcode godoc
// @Summary  Obtener producto por código de barras
// @Tags     products
// @Produce  json
// @Param    barcode  path      string  true  "Código de barras"
// @Success  200      {object}  dto.ProductResponse
// @Failure  404      {object}  dto.ErrorResponse
// @Router   /api/products/barcode/{barcode} [get]
func (h *ProductHandler) GetByBarcode(c *fiber.Ctx) error {
	product, err := h.uc.GetProductByBarcode(c.Context(), c.Params("barcode"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromProduct(product))
}

// Update godoc
// @Summary  Actualizar producto (precios, umbrales, referencias)
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    id    path      string                    true  "ID del producto"
// @Param    body  body      dto.UpdateProductRequest  true  "Campos mutables"
// @Success  200   {object}  dto.ProductResponse
// @Failure  400   {object}  dto.ErrorResponse
// @Failure  404   {object}  dto.ErrorResponse
// @Router   /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	product, err := h.uc.UpdateProduct(c.Context(), c.Params("id"), catalog.UpdateProductInput{
		Name:          in.Name,
		Description:   in.Description,
		CategoryID:    in.CategoryID,
		SupplierID:    in.SupplierID,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		StockMin:      in.StockMin,
		StockMax:      in.StockMax,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromProduct(product))
}

// Deactivate godoc
// @Summary  Desactivar producto (borrado lógico)
// @Tags     products
// @Param    id  path  string  true  "ID del producto"
// @Success  204
// @Failure  404  {object}  dto.ErrorResponse
// @Router   /api/products/{id} [delete]
func (h *ProductHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.DeactivateProduct(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List godoc
// @Summary  Listar productos
// @Tags     products
// @Produce  json
// @Param    active  query  bool  false  "Solo activos"
// @Param    limit   query  int   false  "Límite (default 20)"
// @Param    offset  query  int   false  "Offset"
// @Success  200  {array}  dto.ProductResponse
// @Router   /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	page.DefaultPage()
	activeOnly := c.QueryBool("active", false)

	// ?q= busca por nombre sin distinguir acentos ni mayúsculas.
	if q := c.Query("q"); q != "" {
		list, err := h.uc.SearchProductsByName(c.Context(), q)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.FromProducts(list))
	}

	list, err := h.uc.ListProducts(c.Context(), activeOnly, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromProducts(list))
}

// ReferenceHandler maneja categorías y proveedores.
type ReferenceHandler struct {
	uc *catalog.ReferenceUseCase
}

// NewReferenceHandler construye el handler.
func NewReferenceHandler(uc *catalog.ReferenceUseCase) *ReferenceHandler {
	return &ReferenceHandler{uc: uc}
}

// CreateCategory crea una categoría.
func (h *ReferenceHandler) CreateCategory(c *fiber.Ctx) error {
	var in dto.CreateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	category, err := h.uc.CreateCategory(c.Context(), in.Name, in.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromCategory(category))
}

// ListCategories lista las categorías.
func (h *ReferenceHandler) ListCategories(c *fiber.Ctx) error {
	list, err := h.uc.ListCategories(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, cat := range list {
		out = append(out, dto.FromCategory(cat))
	}
	return c.JSON(out)
}

// CreateSupplier crea un proveedor.
func (h *ReferenceHandler) CreateSupplier(c *fiber.Ctx) error {
	var in dto.CreateSupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	supplier, err := h.uc.CreateSupplier(c.Context(), catalog.CreateSupplierInput{
		Name:    in.Name,
		Contact: in.Contact,
		Phone:   in.Phone,
		Email:   in.Email,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromSupplier(supplier))
}

// ListSuppliers lista los proveedores.
func (h *ReferenceHandler) ListSuppliers(c *fiber.Ctx) error {
	list, err := h.uc.ListSuppliers(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.FromSupplier(s))
	}
	return c.JSON(out)
}

// WarehouseHandler maneja almacenes y sus ubicaciones.
type WarehouseHandler struct {
	uc *catalog.LocationUseCase
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(uc *catalog.LocationUseCase) *WarehouseHandler {
	return &WarehouseHandler{uc: uc}
}

// CreateWarehouse godoc
// @Summary  Crear almacén
// @Tags     warehouses
// @Accept   json
// @Produce  json
// @Param    body  body      dto.CreateWarehouseRequest  true  "Almacén"
// @Success  201   {object}  dto.WarehouseResponse
// @Failure  400   {object}  dto.ErrorResponse
// @Router   /api/warehouses [post]
func (h *WarehouseHandler) CreateWarehouse(c *fiber.Ctx) error {
	var in dto.CreateWarehouseRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	warehouse, err := h.uc.CreateWarehouse(c.Context(), catalog.CreateWarehouseInput{
		Name:        in.Name,
		Address:     in.Address,
		Responsible: in.Responsible,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromWarehouse(warehouse))
}

// GetWarehouse obtiene un almacén por id.
func (h *WarehouseHandler) GetWarehouse(c *fiber.Ctx) error {
	warehouse, err := h.uc.GetWarehouse(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromWarehouse(warehouse))
}

// CreateLocation godoc
// @Summary  Crear ubicación dentro de un almacén
// @Tags     warehouses
// @Accept   json
// @Produce  json
// @Param    id    path      string                     true  "ID del almacén"
// @Param    body  body      dto.CreateLocationRequest  true  "Ubicación"
// @Success  201   {object}  dto.LocationResponse
// @Failure  400   {object}  dto.ErrorResponse
// @Failure  409   {object}  dto.ErrorResponse
// @Router   /api/warehouses/{id}/locations [post]
func (h *WarehouseHandler) CreateLocation(c *fiber.Ctx) error {
	var in dto.CreateLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	location, err := h.uc.CreateLocation(c.Context(), catalog.CreateLocationInput{
		WarehouseID: c.Params("id"),
		Code:        in.Code,
		Kind:        in.Kind,
		Description: in.Description,
		Capacity:    in.Capacity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromLocation(location))
}

// ListLocations lista las ubicaciones de un almacén.
func (h *WarehouseHandler) ListLocations(c *fiber.Ctx) error {
	list, err := h.uc.ListLocations(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromLocations(list))
}

// GetLocation obtiene una ubicación por id.
func (h *WarehouseHandler) GetLocation(c *fiber.Ctx) error {
	location, err := h.uc.GetLocation(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromLocation(location))
}

// DeactivateLocation desactiva una ubicación sin stock.
func (h *WarehouseHandler) DeactivateLocation(c *fiber.Ctx) error {
	if err := h.uc.DeactivateLocation(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
