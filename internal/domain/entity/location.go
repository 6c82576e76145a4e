package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de ubicación permitidos dentro de un almacén.
const (
	LocationKindEstanteria = "estanteria"
	LocationKindPasillo    = "pasillo"
	LocationKindZona       = "zona"
	LocationKindRack       = "rack"
	LocationKindPallet     = "pallet"
	LocationKindOtro       = "otro"
)

// LocationKinds lista los tipos válidos (para validación y mensajes).
var LocationKinds = []string{
	LocationKindEstanteria, LocationKindPasillo, LocationKindZona,
	LocationKindRack, LocationKindPallet, LocationKindOtro,
}

// Location representa una ubicación física dentro de un almacén
// (estantería, pasillo, rack...). El código es único por almacén.
// Solo puede desactivarse si no tiene stock.
type Location struct {
	ID          string
	WarehouseID string
	Code        string // código estructural, en mayúsculas
	Kind        string
	Description string
	Capacity    *decimal.Decimal // opcional; nil = sin límite
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidKind indica si kind es un tipo de ubicación permitido.
func ValidKind(kind string) bool {
	for _, k := range LocationKinds {
		if k == kind {
			return true
		}
	}
	return false
}
