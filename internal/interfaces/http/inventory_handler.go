package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/acampos/almacen-api/internal/application/dto"
	"github.com/acampos/almacen-api/internal/application/inventory"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/pkg/logger"
	"github.com/acampos/almacen-api/pkg/metrics"
)

// InventoryHandler maneja el libro de movimientos y las consultas de stock.
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
	log    *logger.Logger
	m      *metrics.Metrics
}

// NewInventoryHandler construye el handler. m puede ser nil si las métricas
// están deshabilitadas.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, log *logger.Logger, m *metrics.Metrics) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, log: log, m: m}
}

// PostMovement godoc
// @Summary  Asentar movimiento de inventario
// @Tags     inventory
// @Accept   json
// @Produce  json
// @Param    X-Actor-Id  header  string                   true  "Actor que firma el movimiento"
// @Param    body        body    dto.PostMovementRequest  true  "entrada, salida, ajuste, devolucion o transferencia"
// @Success  201  {array}   dto.MovementResponse
// @Failure  400  {object}  dto.ErrorResponse
// @Failure  404  {object}  dto.ErrorResponse
// @Failure  409  {object}  dto.ErrorResponse
// @Router   /api/inventory/movements [post]
func (h *InventoryHandler) PostMovement(c *fiber.Ctx) error {
	actor := actorID(c)
	if actor == "" {
		return badRequest(c, "MISSING_ACTOR", "header X-Actor-Id requerido")
	}
	var in dto.PostMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	movements, err := h.ledger.PostMovement(c.Context(), inventory.MovementInput{
		Type:          in.Type,
		ProductID:     in.ProductID,
		LocationID:    in.LocationID,
		ToLocationID:  in.ToLocationID,
		Quantity:      in.Quantity,
		MultiLocation: in.MultiLocation,
		Actor:         actor,
		Reason:        in.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}

	h.log.Info().
		Str("type", in.Type).
		Str("product_id", in.ProductID).
		Str("actor", actor).
		Int("rows", len(movements)).
		Msg("movimiento asentado")
	if h.m != nil {
		h.m.MovementsPosted.WithLabelValues(in.Type).Inc()
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovements(movements))
}

// EnsureRecord godoc
// @Summary  Crear registro de inventario (producto, ubicación)
// @Tags     inventory
// @Accept   json
// @Param    X-Actor-Id  header  string                   true  "Actor"
// @Param    body        body    dto.EnsureRecordRequest  true  "Registro inicial"
// @Success  201
// @Failure  400  {object}  dto.ErrorResponse
// @Failure  409  {object}  dto.ErrorResponse
// @Router   /api/inventory/records [post]
func (h *InventoryHandler) EnsureRecord(c *fiber.Ctx) error {
	actor := actorID(c)
	if actor == "" {
		return badRequest(c, "MISSING_ACTOR", "header X-Actor-Id requerido")
	}
	var in dto.EnsureRecordRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := h.ledger.EnsureRecord(c.Context(), in.ProductID, in.LocationID, in.InitialQty, actor); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// GetStock godoc
// @Summary  Stock de un producto por ubicación
// @Tags     inventory
// @Produce  json
// @Param    id   path      string  true  "ID del producto"
// @Success  200  {object}  dto.StockSummaryResponse
// @Failure  404  {object}  dto.ErrorResponse
// @Router   /api/inventory/stock/{id} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	summary, err := h.ledger.GetStock(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromStockSummary(summary))
}

// GetLocationContents lista los productos almacenados en una ubicación.
func (h *InventoryHandler) GetLocationContents(c *fiber.Ctx) error {
	contents, err := h.ledger.GetLocationContents(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	per := make([]fiber.Map, 0, len(contents.PerProduct))
	for _, pq := range contents.PerProduct {
		per = append(per, fiber.Map{"product_id": pq.ProductID, "quantity": pq.Quantity})
	}
	return c.JSON(fiber.Map{
		"location_id": contents.LocationID,
		"per_product": per,
		"total":       contents.Total,
	})
}

// CheckAvailability godoc
// @Summary  Verificar disponibilidad agregada de un producto
// @Tags     inventory
// @Produce  json
// @Param    id        path   string  true  "ID del producto"
// @Param    quantity  query  string  true  "Cantidad requerida"
// @Success  200  {object}  dto.AvailabilityResponse
// @Failure  400  {object}  dto.ErrorResponse
// @Router   /api/inventory/stock/{id}/availability [get]
func (h *InventoryHandler) CheckAvailability(c *fiber.Ctx) error {
	qty, err := parseDecimalQuery(c, "quantity")
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "quantity inválida")
	}
	availability, err := h.ledger.CheckAvailability(c.Context(), c.Params("id"), qty)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.AvailabilityResponse{
		Available: availability.Available,
		Current:   availability.Current,
		Requested: availability.Requested,
		Diff:      availability.Diff,
	})
}

// QueryMovements godoc
// @Summary  Consultar el libro de movimientos
// @Description  Exige al menos un filtro (product_id, type, from o to). Con
// product_id incluye el resumen por tipo.
// @Tags     inventory
// @Produce  json
// @Param    product_id  query  string  false  "Producto"
// @Param    type        query  string  false  "entrada|salida|ajuste|devolucion|transferencia"
// @Param    from        query  string  false  "Fecha inicial (RFC3339)"
// @Param    to          query  string  false  "Fecha final (RFC3339)"
// @Param    limit       query  int     false  "Límite (default 50)"
// @Param    offset      query  int     false  "Offset"
// @Success  200  {object}  map[string]interface{}
// @Failure  400  {object}  dto.ErrorResponse
// @Router   /api/inventory/movements [get]
func (h *InventoryHandler) QueryMovements(c *fiber.Ctx) error {
	filter := entity.MovementFilter{
		ProductID: c.Query("product_id"),
		Type:      c.Query("type"),
		Limit:     c.QueryInt("limit", 0),
		Offset:    c.QueryInt("offset", 0),
	}
	var err error
	if filter.From, err = parseTimeQuery(c, "from"); err != nil {
		return badRequest(c, "INVALID_QUERY", "from inválido (RFC3339)")
	}
	if filter.To, err = parseTimeQuery(c, "to"); err != nil {
		return badRequest(c, "INVALID_QUERY", "to inválido (RFC3339)")
	}

	movements, summary, err := h.ledger.QueryMovements(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	resp := fiber.Map{"movements": dto.FromMovements(movements), "count": len(movements)}
	if summary != nil {
		resp["summary"] = dto.MovementSummaryResponse{
			TotalEntradas: summary.TotalEntradas,
			TotalSalidas:  summary.TotalSalidas,
			TotalAjustes:  summary.TotalAjustes,
			Saldo:         summary.Saldo,
			Count:         summary.Count,
		}
	}
	return c.JSON(resp)
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
