package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/application/dto"
	"github.com/acampos/almacen-api/internal/domain"
)

// respondError traduce los errores de dominio a respuestas HTTP. Los casos
// de uso envuelven los centinelas con contexto (fmt.Errorf %w), así que la
// comparación es con errors.Is y el mensaje envuelto viaja al cliente.
func respondError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrAlreadyExists):
		status, code = fiber.StatusConflict, "ALREADY_EXISTS"
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrNegativeStock):
		status, code = fiber.StatusConflict, "NEGATIVE_STOCK"
	case errors.Is(err, domain.ErrInvalidTransition):
		status, code = fiber.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		status, code = fiber.StatusConflict, "CONCURRENCY_CONFLICT"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}

func parseDecimalQuery(c *fiber.Ctx, key string) (decimal.Decimal, error) {
	return decimal.NewFromString(c.Query(key, "0"))
}
