package repository

import (
	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/domain/entity"
)

// InventoryRecordRepository define el puerto para los registros de stock por
// (producto, ubicación). Los métodos *ForUpdate se usan dentro de
// transacciones para bloquear filas (SELECT FOR UPDATE) y evitar lost updates.
type InventoryRecordRepository interface {
	// Create inserta el registro único del par; la violación de unicidad se
	// mapea a domain.ErrAlreadyExists.
	Create(record *entity.InventoryRecord) error
	// Get devuelve el registro, o uno en cero si el par aún no existe.
	Get(productID, locationID string) (*entity.InventoryRecord, error)
	// GetForUpdate como Get pero bloqueando la fila.
	GetForUpdate(productID, locationID string) (*entity.InventoryRecord, error)
	// Exists indica si el par ya tiene registro (sin el "fetch completo para
	// probar existencia" del diseño original).
	Exists(productID, locationID string) (bool, error)
	Upsert(record *entity.InventoryRecord) error
	ListByProduct(productID string) ([]*entity.InventoryRecord, error)
	// ListByProductForUpdate bloquea todas las filas del producto (salidas
	// multi-ubicación y verificación agregada dentro de la transacción).
	ListByProductForUpdate(productID string) ([]*entity.InventoryRecord, error)
	ListByLocation(locationID string) ([]*entity.InventoryRecord, error)
	// SumByProduct devuelve el stock agregado del producto en todas las ubicaciones.
	SumByProduct(productID string) (decimal.Decimal, error)
}
