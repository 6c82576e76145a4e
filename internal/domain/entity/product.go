package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// La identidad (ID, Barcode) es inmutable; precios y umbrales son mutables.
// Nunca se elimina físicamente mientras esté referenciado: solo desactivación lógica.
type Product struct {
	ID            string
	Barcode       string // código de barras, único
	Name          string
	Description   string
	CategoryID    string
	SupplierID    string
	PurchasePrice decimal.Decimal // precio de compra
	SalePrice     decimal.Decimal // precio de venta; invariante SalePrice >= PurchasePrice
	StockMin      decimal.Decimal // umbral de reorden mínimo
	StockMax      decimal.Decimal // umbral máximo; invariante StockMax >= StockMin
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
