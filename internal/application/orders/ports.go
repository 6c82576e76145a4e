package orders

import (
	"context"

	"github.com/acampos/almacen-api/internal/domain/repository"
)

// OrderTxRunner ejecuta una función dentro de una transacción con los
// repositorios de órdenes Y los del libro de inventario: la recepción de una
// orden cambia el estado y asienta las entradas de todas sus líneas de forma
// atómica. También cubre las mutaciones de líneas (línea + total cacheado en
// la misma tx).
type OrderTxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orderRepo repository.PurchaseOrderRepository,
		lineRepo repository.OrderLineRepository,
		movRepo repository.MovementRepository,
		recordRepo repository.InventoryRecordRepository,
	) error) error
}
