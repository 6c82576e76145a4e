package inventory

import (
	"context"

	"github.com/acampos/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el libro de
// movimientos: o se confirman todos los registros y movimientos de una
// operación, o ninguno. Las implementaciones reintentan un número acotado de
// veces ante conflictos transitorios y devuelven domain.ErrConcurrencyConflict
// si se agotan los reintentos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		recordRepo repository.InventoryRecordRepository,
	) error) error
}
