package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/acampos/almacen-api/internal/application/dto"
	"github.com/acampos/almacen-api/internal/application/orders"
	"github.com/acampos/almacen-api/internal/application/replenishment"
	"github.com/acampos/almacen-api/internal/domain/repository"
	"github.com/acampos/almacen-api/pkg/logger"
	"github.com/acampos/almacen-api/pkg/metrics"
)

// OrderHandler maneja las órdenes de compra y el reporte de reposición.
type OrderHandler struct {
	uc     *orders.OrderUseCase
	replen *replenishment.UseCase
	log    *logger.Logger
	m      *metrics.Metrics
}

// NewOrderHandler construye el handler. m puede ser nil.
func NewOrderHandler(uc *orders.OrderUseCase, replen *replenishment.UseCase, log *logger.Logger, m *metrics.Metrics) *OrderHandler {
	return &OrderHandler{uc: uc, replen: replen, log: log, m: m}
}

// lineInput convierte la línea HTTP, calculando el subtotal si no viene.
func lineInput(in dto.OrderLineRequest) orders.LineItemInput {
	subtotal := in.Subtotal
	if subtotal.IsZero() {
		subtotal = in.Quantity.Mul(in.UnitPrice)
	}
	return orders.LineItemInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Subtotal:  subtotal,
	}
}

// Create godoc
// @Summary  Crear orden de compra (estado pendiente)
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    X-Actor-Id  header  string                  true  "Actor"
// @Param    body        body    dto.CreateOrderRequest  true  "Proveedor y líneas"
// @Success  201  {object}  dto.OrderResponse
// @Failure  400  {object}  dto.ErrorResponse
// @Failure  404  {object}  dto.ErrorResponse
// @Router   /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	actor := actorID(c)
	if actor == "" {
		return badRequest(c, "MISSING_ACTOR", "header X-Actor-Id requerido")
	}
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	input := orders.CreateOrderInput{SupplierID: in.SupplierID, Actor: actor}
	for _, line := range in.Lines {
		input.Lines = append(input.Lines, lineInput(line))
	}
	order, err := h.uc.CreateOrder(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromOrder(order))
}

// GetByID godoc
// @Summary  Obtener orden con líneas
// @Tags     orders
// @Produce  json
// @Param    id   path      string  true  "ID de la orden"
// @Success  200  {object}  dto.OrderDetailResponse
// @Failure  404  {object}  dto.ErrorResponse
// @Router   /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	detail, err := h.uc.GetOrder(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrderDetail(detail))
}

// List godoc
// @Summary  Listar órdenes con resumen por estado
// @Tags     orders
// @Produce  json
// @Param    status       query  string  false  "pendiente|aprobada|enviada|recibida|cancelada"
// @Param    supplier_id  query  string  false  "Proveedor"
// @Success  200  {object}  dto.OrderListResponse
// @Router   /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListOrders(c.Context(), repository.OrderFilter{
		Status:     c.Query("status"),
		SupplierID: c.Query("supplier_id"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrderList(list))
}

// UpsertLine godoc
// @Summary  Agregar o actualizar línea (solo en pendiente/aprobada)
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    id    path      string                true  "ID de la orden"
// @Param    body  body      dto.OrderLineRequest  true  "Línea"
// @Success  200   {object}  dto.OrderLineResponse
// @Failure  400   {object}  dto.ErrorResponse
// @Failure  409   {object}  dto.ErrorResponse
// @Router   /api/orders/{id}/lines [put]
func (h *OrderHandler) UpsertLine(c *fiber.Ctx) error {
	var in dto.OrderLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	line, err := h.uc.AddOrUpdateLineItem(c.Context(), c.Params("id"), lineInput(in))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OrderLineResponse{
		ID:        line.ID,
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
		Subtotal:  line.Subtotal,
	})
}

// RemoveLine godoc
// @Summary  Eliminar línea (solo en pendiente/aprobada)
// @Tags     orders
// @Param    id      path  string  true  "ID de la orden"
// @Param    lineId  path  string  true  "ID de la línea"
// @Success  204
// @Failure  404  {object}  dto.ErrorResponse
// @Failure  409  {object}  dto.ErrorResponse
// @Router   /api/orders/{id}/lines/{lineId} [delete]
func (h *OrderHandler) RemoveLine(c *fiber.Ctx) error {
	if err := h.uc.RemoveLineItem(c.Context(), c.Params("id"), c.Params("lineId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Transition godoc
// @Summary  Transicionar el estado de una orden
// @Description  Llegar a recibida asienta las entradas de todas las líneas en
// la misma transacción. cancelada exige reason.
// @Tags     orders
// @Accept   json
// @Param    X-Actor-Id  header  string                 true  "Actor"
// @Param    id          path    string                 true  "ID de la orden"
// @Param    body        body    dto.TransitionRequest  true  "Nuevo estado"
// @Success  204
// @Failure  400  {object}  dto.ErrorResponse
// @Failure  404  {object}  dto.ErrorResponse
// @Failure  409  {object}  dto.ErrorResponse
// @Router   /api/orders/{id}/transition [post]
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	actor := actorID(c)
	if actor == "" {
		return badRequest(c, "MISSING_ACTOR", "header X-Actor-Id requerido")
	}
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	err := h.uc.Transition(c.Context(), c.Params("id"), orders.TransitionInput{
		NewStatus:           in.NewStatus,
		Actor:               actor,
		Reason:              in.Reason,
		ReceivingLocationID: in.ReceivingLocationID,
	})
	if err != nil {
		return respondError(c, err)
	}
	h.log.Info().
		Str("order_id", c.Params("id")).
		Str("to", in.NewStatus).
		Str("actor", actor).
		Msg("orden transicionada")
	if h.m != nil {
		h.m.OrderTransitions.WithLabelValues(in.NewStatus).Inc()
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Replenishment godoc
// @Summary  Reporte de productos bajo stock mínimo
// @Tags     orders
// @Produce  json
// @Success  200  {array}  dto.ReplenishmentSuggestionDTO
// @Router   /api/replenishment [get]
func (h *OrderHandler) Replenishment(c *fiber.Ctx) error {
	suggestions, err := h.replen.LowStockReport(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":       len(suggestions),
		"suggestions": dto.FromSuggestions(suggestions),
	})
}
