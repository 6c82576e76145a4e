package repository

import (
	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/domain/entity"
)

// OrderFilter filtra listados de órdenes de compra.
type OrderFilter struct {
	Status     string
	SupplierID string
}

// PurchaseOrderRepository define el puerto de persistencia para órdenes de compra.
type PurchaseOrderRepository interface {
	Create(order *entity.PurchaseOrder) error
	GetByID(id string) (*entity.PurchaseOrder, error)
	// GetByIDForUpdate bloquea la fila de la orden durante una transición.
	GetByIDForUpdate(id string) (*entity.PurchaseOrder, error)
	UpdateStatus(id, status, cancelReason string) error
	UpdateTotal(id string, total decimal.Decimal) error
	List(filter OrderFilter) ([]*entity.PurchaseOrder, error)
}

// OrderLineRepository define el puerto de persistencia para líneas de orden.
type OrderLineRepository interface {
	Create(line *entity.OrderLineItem) error
	GetByID(id string) (*entity.OrderLineItem, error)
	Update(line *entity.OrderLineItem) error
	Delete(id string) error
	ListByOrder(orderID string) ([]*entity.OrderLineItem, error)
}
