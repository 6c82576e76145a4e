package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/domain"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
var _ repository.OrderLineRepository = (*OrderLineRepo)(nil)

// PurchaseOrderRepo implementación de PurchaseOrderRepository sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador.
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const orderColumns = `id, supplier_id, status, total, cancel_reason, created_by, order_date, created_at, updated_at`

// Create inserta una orden de compra.
func (r *PurchaseOrderRepo) Create(order *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.SupplierID, order.Status, order.Total, order.CancelReason,
		order.CreatedBy, order.OrderDate, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create purchase order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden; nil si no existe.
func (r *PurchaseOrderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	return r.get(id, false)
}

// GetByIDForUpdate como GetByID pero bloqueando la fila de la orden.
func (r *PurchaseOrderRepo) GetByIDForUpdate(id string) (*entity.PurchaseOrder, error) {
	return r.get(id, true)
}

func (r *PurchaseOrderRepo) get(id string, forUpdate bool) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var o entity.PurchaseOrder
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&o.ID, &o.SupplierID, &o.Status, &o.Total, &o.CancelReason,
		&o.CreatedBy, &o.OrderDate, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	return &o, nil
}

// UpdateStatus cambia el estado de la orden (y el motivo si es cancelación).
func (r *PurchaseOrderRepo) UpdateStatus(id, status, cancelReason string) error {
	query := `
		UPDATE purchase_orders SET status = $2, cancel_reason = $3, updated_at = NOW()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, status, cancelReason)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: orden de compra %s", domain.ErrNotFound, id)
	}
	return nil
}

// UpdateTotal recalcula el total cacheado de la orden.
func (r *PurchaseOrderRepo) UpdateTotal(id string, total decimal.Decimal) error {
	query := `UPDATE purchase_orders SET total = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, total)
	if err != nil {
		return fmt.Errorf("update order total: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: orden de compra %s", domain.ErrNotFound, id)
	}
	return nil
}

// List lista órdenes según filtro, de la más reciente a la más antigua.
func (r *PurchaseOrderRepo) List(filter repository.OrderFilter) ([]*entity.PurchaseOrder, error) {
	var conds []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.SupplierID != "" {
		args = append(args, filter.SupplierID)
		conds = append(conds, fmt.Sprintf("supplier_id = $%d", len(args)))
	}
	query := `SELECT ` + orderColumns + ` FROM purchase_orders`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY order_date DESC, created_at DESC`

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		var o entity.PurchaseOrder
		if err := rows.Scan(
			&o.ID, &o.SupplierID, &o.Status, &o.Total, &o.CancelReason,
			&o.CreatedBy, &o.OrderDate, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

// OrderLineRepo implementación de OrderLineRepository sobre PostgreSQL.
type OrderLineRepo struct {
	q Querier
}

// NewOrderLineRepository construye el adaptador.
func NewOrderLineRepository(q Querier) *OrderLineRepo {
	return &OrderLineRepo{q: q}
}

const lineColumns = `id, order_id, product_id, quantity, unit_price, subtotal, created_at, updated_at`

// Create inserta una línea de orden.
func (r *OrderLineRepo) Create(line *entity.OrderLineItem) error {
	query := `
		INSERT INTO order_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.OrderID, line.ProductID, line.Quantity, line.UnitPrice,
		line.Subtotal, line.CreatedAt, line.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order line: %w", err)
	}
	return nil
}

// GetByID obtiene una línea; nil si no existe.
func (r *OrderLineRepo) GetByID(id string) (*entity.OrderLineItem, error) {
	query := `SELECT ` + lineColumns + ` FROM order_lines WHERE id = $1`
	var li entity.OrderLineItem
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&li.ID, &li.OrderID, &li.ProductID, &li.Quantity, &li.UnitPrice,
		&li.Subtotal, &li.CreatedAt, &li.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order line: %w", err)
	}
	return &li, nil
}

// Update persiste cantidad, precio y subtotal de la línea.
func (r *OrderLineRepo) Update(line *entity.OrderLineItem) error {
	query := `
		UPDATE order_lines SET quantity = $2, unit_price = $3, subtotal = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		line.ID, line.Quantity, line.UnitPrice, line.Subtotal, line.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: línea de orden %s", domain.ErrNotFound, line.ID)
	}
	return nil
}

// Delete elimina la línea.
func (r *OrderLineRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM order_lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: línea de orden %s", domain.ErrNotFound, id)
	}
	return nil
}

// ListByOrder lista las líneas de una orden en orden de creación.
func (r *OrderLineRepo) ListByOrder(orderID string) ([]*entity.OrderLineItem, error) {
	query := `SELECT ` + lineColumns + ` FROM order_lines WHERE order_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderLineItem
	for rows.Next() {
		var li entity.OrderLineItem
		if err := rows.Scan(
			&li.ID, &li.OrderID, &li.ProductID, &li.Quantity, &li.UnitPrice,
			&li.Subtotal, &li.CreatedAt, &li.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		list = append(list, &li)
	}
	return list, rows.Err()
}
