package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/domain"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/domain/repository"
)

var _ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)

// InventoryRecordRepo implementación de InventoryRecordRepository sobre
// PostgreSQL. Las variantes *ForUpdate añaden FOR UPDATE y solo tienen
// sentido dentro de una transacción del TxRunner.
type InventoryRecordRepo struct {
	q Querier
}

// NewInventoryRecordRepository construye el adaptador.
func NewInventoryRecordRepository(q Querier) *InventoryRecordRepo {
	return &InventoryRecordRepo{q: q}
}

const recordColumns = `product_id, location_id, quantity, updated_at`

// Create inserta el registro del par (producto, ubicación). El par duplicado
// se mapea a ErrAlreadyExists.
func (r *InventoryRecordRepo) Create(record *entity.InventoryRecord) error {
	query := `
		INSERT INTO inventory_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query,
		record.ProductID, record.LocationID, record.Quantity, record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: registro de inventario %s/%s", domain.ErrAlreadyExists,
				record.ProductID, record.LocationID)
		}
		return fmt.Errorf("create inventory record: %w", err)
	}
	return nil
}

// Get devuelve el registro del par, o uno en cero si aún no existe.
func (r *InventoryRecordRepo) Get(productID, locationID string) (*entity.InventoryRecord, error) {
	return r.get(productID, locationID, false)
}

// GetForUpdate como Get pero bloqueando la fila existente.
func (r *InventoryRecordRepo) GetForUpdate(productID, locationID string) (*entity.InventoryRecord, error) {
	return r.get(productID, locationID, true)
}

func (r *InventoryRecordRepo) get(productID, locationID string, forUpdate bool) (*entity.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventory_records WHERE product_id = $1 AND location_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var rec entity.InventoryRecord
	err := r.q.QueryRow(context.Background(), query, productID, locationID).Scan(
		&rec.ProductID, &rec.LocationID, &rec.Quantity, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// El par todavía no tiene fila: se trata como stock cero.
			return &entity.InventoryRecord{
				ProductID:  productID,
				LocationID: locationID,
				Quantity:   decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("get inventory record: %w", err)
	}
	return &rec, nil
}

// Exists indica si el par ya tiene registro.
func (r *InventoryRecordRepo) Exists(productID, locationID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM inventory_records WHERE product_id = $1 AND location_id = $2)`
	var exists bool
	err := r.q.QueryRow(context.Background(), query, productID, locationID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists inventory record: %w", err)
	}
	return exists, nil
}

// Upsert inserta o actualiza la cantidad del par.
func (r *InventoryRecordRepo) Upsert(record *entity.InventoryRecord) error {
	query := `
		INSERT INTO inventory_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		record.ProductID, record.LocationID, record.Quantity, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert inventory record: %w", err)
	}
	return nil
}

// ListByProduct lista los registros del producto en todas sus ubicaciones.
func (r *InventoryRecordRepo) ListByProduct(productID string) ([]*entity.InventoryRecord, error) {
	return r.listByProduct(productID, false)
}

// ListByProductForUpdate como ListByProduct pero bloqueando las filas.
func (r *InventoryRecordRepo) ListByProductForUpdate(productID string) ([]*entity.InventoryRecord, error) {
	return r.listByProduct(productID, true)
}

func (r *InventoryRecordRepo) listByProduct(productID string, forUpdate bool) ([]*entity.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventory_records WHERE product_id = $1 ORDER BY location_id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	return r.list(query, productID)
}

// ListByLocation lista los registros de una ubicación.
func (r *InventoryRecordRepo) ListByLocation(locationID string) ([]*entity.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventory_records WHERE location_id = $1 ORDER BY product_id`
	return r.list(query, locationID)
}

func (r *InventoryRecordRepo) list(query string, arg any) ([]*entity.InventoryRecord, error) {
	rows, err := r.q.Query(context.Background(), query, arg)
	if err != nil {
		return nil, fmt.Errorf("list inventory records: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		var rec entity.InventoryRecord
		if err := rows.Scan(&rec.ProductID, &rec.LocationID, &rec.Quantity, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}

// SumByProduct devuelve el stock agregado del producto.
func (r *InventoryRecordRepo) SumByProduct(productID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM inventory_records WHERE product_id = $1`
	var total decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, productID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum inventory records: %w", err)
	}
	return total, nil
}
