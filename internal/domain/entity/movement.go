package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario (valores de la tabla movimientos).
const (
	MovementTypeEntrada       = "entrada"
	MovementTypeSalida        = "salida"
	MovementTypeAjuste        = "ajuste"
	MovementTypeDevolucion    = "devolucion"
	MovementTypeTransferencia = "transferencia"
)

// MovementTypes lista los tipos permitidos (para validación y mensajes).
var MovementTypes = []string{
	MovementTypeEntrada, MovementTypeSalida, MovementTypeAjuste,
	MovementTypeDevolucion, MovementTypeTransferencia,
}

// ValidMovementType indica si t es un tipo de movimiento permitido.
func ValidMovementType(t string) bool {
	for _, mt := range MovementTypes {
		if mt == t {
			return true
		}
	}
	return false
}

// Movement es una entrada inmutable del libro de movimientos: se crea
// exactamente una por ubicación afectada y nunca se modifica ni se borra.
// Quantity es positiva para lo que entra a la ubicación y negativa para lo
// que sale; las filas de una misma operación comparten TransactionID
// (una transferencia produce dos filas correlacionadas).
type Movement struct {
	ID            string
	TransactionID string // correlación entre filas de la misma operación
	ProductID     string
	LocationID    string
	Type          string
	Quantity      decimal.Decimal
	Reason        string // motivo, obligatorio
	CreatedBy     string // actor (id de usuario de la capa de auth externa)
	Date          time.Time
	CreatedAt     time.Time
}

// MovementFilter filtra consultas al libro de movimientos. Se exige al menos
// una dimensión (producto, rango de fechas o tipo): el contrato prohíbe
// escaneos sin filtro.
type MovementFilter struct {
	ProductID string
	From      *time.Time
	To        *time.Time
	Type      string
	Limit     int
	Offset    int
}

// Empty indica si el filtro no tiene ninguna dimensión.
func (f MovementFilter) Empty() bool {
	return f.ProductID == "" && f.From == nil && f.To == nil && f.Type == ""
}

// MovementTotals agrega cantidades por tipo sobre todas las filas que cumplen
// un filtro, sin paginar. Salidas se acumula con el signo del libro (negativo).
type MovementTotals struct {
	Entradas decimal.Decimal // entrada + devolucion
	Salidas  decimal.Decimal
	Ajustes  decimal.Decimal
	Count    int
}
