package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository sobre PostgreSQL.
// El libro de movimientos es solo-inserción: no hay UPDATE ni DELETE.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, transaction_id, product_id, location_id, type, quantity, reason, created_by, date, created_at`

// Create inserta un movimiento.
func (r *MovementRepo) Create(movement *entity.Movement) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.TransactionID, movement.ProductID, movement.LocationID,
		movement.Type, movement.Quantity, movement.Reason, movement.CreatedBy,
		movement.Date, movement.CreatedAt)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// filterClause arma el WHERE dinámico con las dimensiones presentes del
// filtro y devuelve la cláusula (vacía si no hay ninguna) con sus argumentos.
func filterClause(filter entity.MovementFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.ProductID != "" {
		args = append(args, filter.ProductID)
		conds = append(conds, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, " AND "), args
}

// Query lista movimientos según filtro, del más reciente al más antiguo.
// El caso de uso ya garantizó que hay al menos una dimensión.
func (r *MovementRepo) Query(filter entity.MovementFilter) ([]*entity.Movement, error) {
	where, args := filterClause(filter)
	query := `SELECT ` + movementColumns + ` FROM movements` + where
	query += ` ORDER BY date DESC, created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(
			&m.ID, &m.TransactionID, &m.ProductID, &m.LocationID, &m.Type,
			&m.Quantity, &m.Reason, &m.CreatedBy, &m.Date, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// Summarize agrega cantidad y conteo por tipo sobre todas las filas que
// cumplen el filtro en una sola pasada, sin LIMIT: el resumen debe cuadrar
// con el stock aunque la consulta paginada devuelva una sola página.
func (r *MovementRepo) Summarize(filter entity.MovementFilter) (*entity.MovementTotals, error) {
	where, args := filterClause(filter)
	query := `
		SELECT
			COALESCE(SUM(quantity) FILTER (WHERE type IN ('entrada', 'devolucion')), 0),
			COALESCE(SUM(quantity) FILTER (WHERE type = 'salida'), 0),
			COALESCE(SUM(quantity) FILTER (WHERE type = 'ajuste'), 0),
			COUNT(*)
		FROM movements` + where

	var totals entity.MovementTotals
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&totals.Entradas, &totals.Salidas, &totals.Ajustes, &totals.Count)
	if err != nil {
		return nil, fmt.Errorf("summarize movements: %w", err)
	}
	return &totals, nil
}
