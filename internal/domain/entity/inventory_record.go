package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord representa la cantidad actual de un producto en una ubicación.
// Clave única (ProductID, LocationID). Invariante: Quantity >= 0 en todo momento,
// garantizado dentro de la transacción que aplica cada movimiento.
// Se crea al primer abastecimiento y nunca se elimina (puede quedar en 0).
type InventoryRecord struct {
	ProductID  string
	LocationID string
	Quantity   decimal.Decimal
	UpdatedAt  time.Time
}
