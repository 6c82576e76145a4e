package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra.
const (
	OrderStatusPendiente = "pendiente"
	OrderStatusAprobada  = "aprobada"
	OrderStatusEnviada   = "enviada"
	OrderStatusRecibida  = "recibida"
	OrderStatusCancelada = "cancelada"
)

// OrderStatuses lista los estados válidos.
var OrderStatuses = []string{
	OrderStatusPendiente, OrderStatusAprobada, OrderStatusEnviada,
	OrderStatusRecibida, OrderStatusCancelada,
}

// validTransitions define el grafo de transiciones permitidas.
// recibida y cancelada son terminales.
var validTransitions = map[string][]string{
	OrderStatusPendiente: {OrderStatusAprobada, OrderStatusCancelada},
	OrderStatusAprobada:  {OrderStatusEnviada, OrderStatusCancelada},
	OrderStatusEnviada:   {OrderStatusRecibida, OrderStatusCancelada},
	OrderStatusRecibida:  {},
	OrderStatusCancelada: {},
}

// ValidOrderStatus indica si s es un estado conocido.
func ValidOrderStatus(s string) bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransition indica si el cambio from -> to está en el grafo.
func CanTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PurchaseOrder representa una orden de compra a un proveedor.
// Se crea en pendiente; solo muta por transiciones validadas y nunca se
// elimina (cancelada la deja inerte). Total es derivado de las líneas y
// se cachea en la orden.
type PurchaseOrder struct {
	ID           string
	SupplierID   string
	Status       string
	Total        decimal.Decimal
	CancelReason string // motivo de cancelación, solo si Status == cancelada
	CreatedBy    string
	OrderDate    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Mutable indica si las líneas de la orden aún pueden modificarse.
func (o *PurchaseOrder) Mutable() bool {
	return o.Status == OrderStatusPendiente || o.Status == OrderStatusAprobada
}
