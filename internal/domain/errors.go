package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrAlreadyExists       = errors.New("recurso duplicado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrNegativeStock       = errors.New("la operación dejaría stock negativo")
	ErrInvalidTransition   = errors.New("transición de estado inválida")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintentar")
)

// InsufficientStockError detalla una salida o transferencia rechazada.
// errors.Is(err, ErrInsufficientStock) == true.
type InsufficientStockError struct {
	ProductID  string
	LocationID string // vacío cuando la verificación fue sobre el stock agregado
	Available  decimal.Decimal
	Requested  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	if e.LocationID == "" {
		return fmt.Sprintf("stock insuficiente para producto %s: disponible %s, requerido %s",
			e.ProductID, e.Available, e.Requested)
	}
	return fmt.Sprintf("stock insuficiente para producto %s en ubicación %s: disponible %s, requerido %s",
		e.ProductID, e.LocationID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// NegativeStockError detalla un ajuste rechazado por dejar cantidad negativa.
type NegativeStockError struct {
	ProductID  string
	LocationID string
	Current    decimal.Decimal
	Delta      decimal.Decimal
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("ajuste inválido para producto %s en ubicación %s: actual %s, delta %s",
		e.ProductID, e.LocationID, e.Current, e.Delta)
}

func (e *NegativeStockError) Unwrap() error { return ErrNegativeStock }

// InvalidTransitionError detalla un cambio de estado de orden rechazado.
type InvalidTransitionError struct {
	OrderID string
	From    string
	To      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("orden %s: no se puede cambiar de %s a %s", e.OrderID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
