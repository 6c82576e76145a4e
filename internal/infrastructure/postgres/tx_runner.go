package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/acampos/almacen-api/internal/application/inventory"
	"github.com/acampos/almacen-api/internal/application/orders"
	"github.com/acampos/almacen-api/internal/domain"
	"github.com/acampos/almacen-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner y orders.OrderTxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ orders.OrderTxRunner = (*TxRunner)(nil)

// maxTxAttempts intentos ante conflictos transitorios (serialization/deadlock)
// antes de rendirse con domain.ErrConcurrencyConflict.
const maxTxAttempts = 3

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con
// reintentos acotados ante conflictos transitorios.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con los repos del libro atados a la
// tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	recordRepo repository.InventoryRecordRepository,
) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(NewMovementRepository(tx), NewInventoryRecordRepository(tx))
	})
}

// RunOrder inicia una transacción con repos de órdenes e inventario
// (recepción de orden: estado + entradas de todas las líneas en una sola tx).
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	orderRepo repository.PurchaseOrderRepository,
	lineRepo repository.OrderLineRepository,
	movRepo repository.MovementRepository,
	recordRepo repository.InventoryRecordRepository,
) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(
			NewPurchaseOrderRepository(tx),
			NewOrderLineRepository(tx),
			NewMovementRepository(tx),
			NewInventoryRecordRepository(tx),
		)
	})
}

func (r *TxRunner) withRetry(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryableTxError(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: transacción fallida tras %d intentos: %v",
		domain.ErrConcurrencyConflict, maxTxAttempts, lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
