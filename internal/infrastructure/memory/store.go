// Package memory implementa los puertos de persistencia sobre mapas en
// memoria, con la misma semántica que los adaptadores de PostgreSQL. Se usa
// en pruebas y para correr la API sin base de datos.
package memory

import (
	"context"
	"sync"

	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/domain/repository"
)

// Store guarda todo el estado bajo un único mutex. Las "transacciones" del
// TxRunner serializan sobre ese mutex y restauran una copia del estado si la
// función falla, imitando el rollback de la base de datos real.
type Store struct {
	mu sync.Mutex

	products   map[string]entity.Product
	categories map[string]entity.Category
	suppliers  map[string]entity.Supplier
	warehouses map[string]entity.Warehouse
	locations  map[string]entity.Location
	records    map[string]entity.InventoryRecord // clave productID+"|"+locationID
	movements  []entity.Movement
	orders     map[string]entity.PurchaseOrder
	lines      map[string]entity.OrderLineItem
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]entity.Product),
		categories: make(map[string]entity.Category),
		suppliers:  make(map[string]entity.Supplier),
		warehouses: make(map[string]entity.Warehouse),
		locations:  make(map[string]entity.Location),
		records:    make(map[string]entity.InventoryRecord),
		orders:     make(map[string]entity.PurchaseOrder),
		lines:      make(map[string]entity.OrderLineItem),
	}
}

func recordKey(productID, locationID string) string {
	return productID + "|" + locationID
}

// snapshot copia el estado mutable por las transacciones (registros,
// movimientos, órdenes y líneas). Los catálogos no mutan dentro de una tx.
type snapshot struct {
	records   map[string]entity.InventoryRecord
	movements []entity.Movement
	orders    map[string]entity.PurchaseOrder
	lines     map[string]entity.OrderLineItem
}

func (s *Store) takeSnapshot() snapshot {
	snap := snapshot{
		records:   make(map[string]entity.InventoryRecord, len(s.records)),
		movements: make([]entity.Movement, len(s.movements)),
		orders:    make(map[string]entity.PurchaseOrder, len(s.orders)),
		lines:     make(map[string]entity.OrderLineItem, len(s.lines)),
	}
	for k, v := range s.records {
		snap.records[k] = v
	}
	copy(snap.movements, s.movements)
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	for k, v := range s.lines {
		snap.lines[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.records = snap.records
	s.movements = snap.movements
	s.orders = snap.orders
	s.lines = snap.lines
}

// Run ejecuta fn bajo el mutex global con semántica todo-o-nada.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	recordRepo repository.InventoryRecordRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.takeSnapshot()
	if err := fn(&MovementRepo{s: s, tx: true}, &InventoryRecordRepo{s: s, tx: true}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// RunOrder como Run, con los repositorios de órdenes incluidos.
func (s *Store) RunOrder(ctx context.Context, fn func(
	orderRepo repository.PurchaseOrderRepository,
	lineRepo repository.OrderLineRepository,
	movRepo repository.MovementRepository,
	recordRepo repository.InventoryRecordRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.takeSnapshot()
	err := fn(
		&PurchaseOrderRepo{s: s, tx: true},
		&OrderLineRepo{s: s, tx: true},
		&MovementRepo{s: s, tx: true},
		&InventoryRecordRepo{s: s, tx: true},
	)
	if err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// lock toma el mutex salvo que el repositorio viva dentro de una transacción
// (el TxRunner ya lo tiene). Devuelve la función de liberación.
func (s *Store) lock(tx bool) func() {
	if tx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}
