package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubtotalTolerance es la tolerancia aceptada entre Subtotal y
// Quantity*UnitPrice (centavos de redondeo del cliente).
var SubtotalTolerance = decimal.NewFromFloat(0.01)

// OrderLineItem es una línea de una orden de compra. Pertenece a exactamente
// una orden y se vuelve inmutable cuando la orden sale de pendiente/aprobada.
type OrderLineItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  decimal.Decimal // > 0
	UnitPrice decimal.Decimal // > 0
	Subtotal  decimal.Decimal // |Subtotal - Quantity*UnitPrice| <= 0.01
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubtotalConsistent verifica el invariante de subtotal con la tolerancia de 0.01.
func (li *OrderLineItem) SubtotalConsistent() bool {
	expected := li.Quantity.Mul(li.UnitPrice)
	return li.Subtotal.Sub(expected).Abs().LessThanOrEqual(SubtotalTolerance)
}
