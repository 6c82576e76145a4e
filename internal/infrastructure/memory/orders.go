package memory

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/domain"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
var _ repository.OrderLineRepository = (*OrderLineRepo)(nil)

// PurchaseOrderRepo implementación en memoria de PurchaseOrderRepository.
type PurchaseOrderRepo struct {
	s  *Store
	tx bool
}

// NewPurchaseOrderRepository construye el adaptador fuera de transacción.
func NewPurchaseOrderRepository(s *Store) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{s: s}
}

func (r *PurchaseOrderRepo) Create(order *entity.PurchaseOrder) error {
	defer r.s.lock(r.tx)()
	r.s.orders[order.ID] = *order
	return nil
}

func (r *PurchaseOrderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	defer r.s.lock(r.tx)()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

// GetByIDForUpdate igual que GetByID: el mutex global ya serializa.
func (r *PurchaseOrderRepo) GetByIDForUpdate(id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(id)
}

func (r *PurchaseOrderRepo) UpdateStatus(id, status, cancelReason string) error {
	defer r.s.lock(r.tx)()
	o, ok := r.s.orders[id]
	if !ok {
		return fmt.Errorf("%w: orden de compra %s", domain.ErrNotFound, id)
	}
	o.Status = status
	o.CancelReason = cancelReason
	o.UpdatedAt = time.Now()
	r.s.orders[id] = o
	return nil
}

func (r *PurchaseOrderRepo) UpdateTotal(id string, total decimal.Decimal) error {
	defer r.s.lock(r.tx)()
	o, ok := r.s.orders[id]
	if !ok {
		return fmt.Errorf("%w: orden de compra %s", domain.ErrNotFound, id)
	}
	o.Total = total
	o.UpdatedAt = time.Now()
	r.s.orders[id] = o
	return nil
}

func (r *PurchaseOrderRepo) List(filter repository.OrderFilter) ([]*entity.PurchaseOrder, error) {
	defer r.s.lock(r.tx)()
	var all []entity.PurchaseOrder
	for _, o := range r.s.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.SupplierID != "" && o.SupplierID != filter.SupplierID {
			continue
		}
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OrderDate.After(all[j].OrderDate) })
	return paginate(all, 0, 0), nil
}

// OrderLineRepo implementación en memoria de OrderLineRepository.
type OrderLineRepo struct {
	s  *Store
	tx bool
}

// NewOrderLineRepository construye el adaptador fuera de transacción.
func NewOrderLineRepository(s *Store) *OrderLineRepo {
	return &OrderLineRepo{s: s}
}

func (r *OrderLineRepo) Create(line *entity.OrderLineItem) error {
	defer r.s.lock(r.tx)()
	r.s.lines[line.ID] = *line
	return nil
}

func (r *OrderLineRepo) GetByID(id string) (*entity.OrderLineItem, error) {
	defer r.s.lock(r.tx)()
	li, ok := r.s.lines[id]
	if !ok {
		return nil, nil
	}
	return &li, nil
}

func (r *OrderLineRepo) Update(line *entity.OrderLineItem) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.lines[line.ID]; !ok {
		return fmt.Errorf("%w: línea de orden %s", domain.ErrNotFound, line.ID)
	}
	r.s.lines[line.ID] = *line
	return nil
}

func (r *OrderLineRepo) Delete(id string) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.lines[id]; !ok {
		return fmt.Errorf("%w: línea de orden %s", domain.ErrNotFound, id)
	}
	delete(r.s.lines, id)
	return nil
}

func (r *OrderLineRepo) ListByOrder(orderID string) ([]*entity.OrderLineItem, error) {
	defer r.s.lock(r.tx)()
	var all []entity.OrderLineItem
	for _, li := range r.s.lines {
		if li.OrderID == orderID {
			all = append(all, li)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, 0, 0), nil
}
