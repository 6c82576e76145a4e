package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/application/inventory"
	"github.com/acampos/almacen-api/internal/domain"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/domain/repository"
)

// OrderUseCase implementa el ciclo de vida de órdenes de compra:
// pendiente → aprobada → enviada → recibida, con cancelada alcanzable desde
// los tres primeros estados. Al llegar a recibida es el único llamador
// autorizado a asentar entradas en el libro por las cantidades ordenadas.
type OrderUseCase struct {
	txRunner     OrderTxRunner
	ledger       *inventory.LedgerUseCase
	orderRepo    repository.PurchaseOrderRepository
	lineRepo     repository.OrderLineRepository
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository

	// receivingLocationID ubicación donde entran las mercancías recibidas,
	// salvo que la transición indique otra.
	receivingLocationID string
	now                 domain.Clock
}

// NewOrderUseCase construye el motor de órdenes de compra.
func NewOrderUseCase(
	txRunner OrderTxRunner,
	ledger *inventory.LedgerUseCase,
	orderRepo repository.PurchaseOrderRepository,
	lineRepo repository.OrderLineRepository,
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	receivingLocationID string,
	now domain.Clock,
) *OrderUseCase {
	if now == nil {
		now = time.Now
	}
	return &OrderUseCase{
		txRunner:            txRunner,
		ledger:              ledger,
		orderRepo:           orderRepo,
		lineRepo:            lineRepo,
		supplierRepo:        supplierRepo,
		productRepo:         productRepo,
		locationRepo:        locationRepo,
		receivingLocationID: receivingLocationID,
		now:                 now,
	}
}

// LineItemInput línea de orden: cantidad > 0, precio unitario > 0 y subtotal
// consistente (|subtotal - cantidad*precio| <= 0.01).
type LineItemInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// CreateOrderInput datos para crear una orden.
type CreateOrderInput struct {
	SupplierID string
	Lines      []LineItemInput
	Actor      string
}

// OrderDetail orden con sus líneas y el total calculado desde ellas.
type OrderDetail struct {
	Order         *entity.PurchaseOrder
	Lines         []*entity.OrderLineItem
	ComputedTotal decimal.Decimal
	ItemCount     int
}

// StatusSummary conteo y monto de órdenes por estado.
type StatusSummary struct {
	Count  int
	Amount decimal.Decimal
}

// OrderList listado de órdenes con resumen por estado.
type OrderList struct {
	Orders      []*entity.PurchaseOrder
	TotalOrders int
	TotalAmount decimal.Decimal
	ByStatus    map[string]StatusSummary
}

// CreateOrder valida proveedor y líneas, y crea la orden en pendiente con
// total = suma de subtotales. Orden y líneas se escriben en una sola tx.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, in CreateOrderInput) (*entity.PurchaseOrder, error) {
	if in.SupplierID == "" {
		return nil, fmt.Errorf("%w: id de proveedor requerido", domain.ErrInvalidInput)
	}
	if in.Actor == "" {
		return nil, fmt.Errorf("%w: actor requerido", domain.ErrInvalidInput)
	}
	supplier, err := uc.supplierRepo.GetByID(in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("%w: el proveedor %s no existe", domain.ErrNotFound, in.SupplierID)
	}

	total := decimal.Zero
	for i, line := range in.Lines {
		if err := uc.validateLine(line); err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		total = total.Add(line.Subtotal)
	}

	nowTs := uc.now()
	order := &entity.PurchaseOrder{
		ID:         uuid.New().String(),
		SupplierID: in.SupplierID,
		Status:     entity.OrderStatusPendiente,
		Total:      total,
		CreatedBy:  in.Actor,
		OrderDate:  nowTs,
		CreatedAt:  nowTs,
		UpdatedAt:  nowTs,
	}

	err = uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.PurchaseOrderRepository,
		lineRepo repository.OrderLineRepository,
		_ repository.MovementRepository,
		_ repository.InventoryRecordRepository,
	) error {
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		for _, line := range in.Lines {
			item := &entity.OrderLineItem{
				ID:        uuid.New().String(),
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Subtotal:  line.Subtotal,
				CreatedAt: nowTs,
				UpdatedAt: nowTs,
			}
			if err := lineRepo.Create(item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// AddOrUpdateLineItem agrega la línea, o la actualiza si la orden ya tiene una
// para ese producto. Solo permitido en pendiente/aprobada; recalcula el total.
func (uc *OrderUseCase) AddOrUpdateLineItem(ctx context.Context, orderID string, in LineItemInput) (*entity.OrderLineItem, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: id de orden requerido", domain.ErrInvalidInput)
	}
	if err := uc.validateLine(in); err != nil {
		return nil, err
	}

	nowTs := uc.now()
	var result *entity.OrderLineItem
	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.PurchaseOrderRepository,
		lineRepo repository.OrderLineRepository,
		_ repository.MovementRepository,
		_ repository.InventoryRecordRepository,
	) error {
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
		}
		if !order.Mutable() {
			return fmt.Errorf("%w: las líneas son inmutables en estado %s", domain.ErrInvalidInput, order.Status)
		}

		lines, err := lineRepo.ListByOrder(orderID)
		if err != nil {
			return err
		}
		for _, l := range lines {
			if l.ProductID == in.ProductID {
				result = l
				break
			}
		}
		if result != nil {
			result.Quantity = in.Quantity
			result.UnitPrice = in.UnitPrice
			result.Subtotal = in.Subtotal
			result.UpdatedAt = nowTs
			if err := lineRepo.Update(result); err != nil {
				return err
			}
		} else {
			result = &entity.OrderLineItem{
				ID:        uuid.New().String(),
				OrderID:   orderID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				UnitPrice: in.UnitPrice,
				Subtotal:  in.Subtotal,
				CreatedAt: nowTs,
				UpdatedAt: nowTs,
			}
			if err := lineRepo.Create(result); err != nil {
				return err
			}
			lines = append(lines, result)
		}

		return orderRepo.UpdateTotal(orderID, sumSubtotals(lines))
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveLineItem elimina una línea de una orden aún mutable y recalcula el total.
func (uc *OrderUseCase) RemoveLineItem(ctx context.Context, orderID, lineID string) error {
	if orderID == "" || lineID == "" {
		return fmt.Errorf("%w: id de orden y de línea requeridos", domain.ErrInvalidInput)
	}
	return uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.PurchaseOrderRepository,
		lineRepo repository.OrderLineRepository,
		_ repository.MovementRepository,
		_ repository.InventoryRecordRepository,
	) error {
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
		}
		if !order.Mutable() {
			return fmt.Errorf("%w: las líneas son inmutables en estado %s", domain.ErrInvalidInput, order.Status)
		}
		line, err := lineRepo.GetByID(lineID)
		if err != nil {
			return err
		}
		if line == nil || line.OrderID != orderID {
			return fmt.Errorf("%w: línea %s en orden %s", domain.ErrNotFound, lineID, orderID)
		}
		if err := lineRepo.Delete(lineID); err != nil {
			return err
		}
		lines, err := lineRepo.ListByOrder(orderID)
		if err != nil {
			return err
		}
		return orderRepo.UpdateTotal(orderID, sumSubtotals(lines))
	})
}

// TransitionInput datos para un cambio de estado.
type TransitionInput struct {
	NewStatus string
	Actor     string
	// Reason es obligatorio para cancelada.
	Reason string
	// ReceivingLocationID permite recibir en una ubicación distinta a la
	// configurada por defecto.
	ReceivingLocationID string
}

// Transition aplica la máquina de estados. Llegar a recibida asienta una
// entrada por cada línea dentro de la misma transacción que el cambio de
// estado: si una falla, la orden queda exactamente como estaba.
func (uc *OrderUseCase) Transition(ctx context.Context, orderID string, in TransitionInput) error {
	if orderID == "" {
		return fmt.Errorf("%w: id de orden requerido", domain.ErrInvalidInput)
	}
	if in.Actor == "" {
		return fmt.Errorf("%w: actor requerido", domain.ErrInvalidInput)
	}
	if !entity.ValidOrderStatus(in.NewStatus) {
		return fmt.Errorf("%w: estado inválido, permitidos: %s",
			domain.ErrInvalidInput, strings.Join(entity.OrderStatuses, ", "))
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if in.NewStatus == entity.OrderStatusCancelada && in.Reason == "" {
		return fmt.Errorf("%w: el motivo de cancelación es requerido", domain.ErrInvalidInput)
	}

	receivingLocation := in.ReceivingLocationID
	if receivingLocation == "" {
		receivingLocation = uc.receivingLocationID
	}
	if in.NewStatus == entity.OrderStatusRecibida {
		if receivingLocation == "" {
			return fmt.Errorf("%w: no hay ubicación de recepción configurada", domain.ErrInvalidInput)
		}
		location, err := uc.locationRepo.GetByID(receivingLocation)
		if err != nil {
			return err
		}
		if location == nil {
			return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, receivingLocation)
		}
		if !location.Active {
			return fmt.Errorf("%w: la ubicación de recepción %s está desactivada", domain.ErrInvalidInput, location.Code)
		}
	}

	nowTs := uc.now()
	txID := uuid.New().String()
	return uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.PurchaseOrderRepository,
		lineRepo repository.OrderLineRepository,
		movRepo repository.MovementRepository,
		recordRepo repository.InventoryRecordRepository,
	) error {
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
		}
		if !entity.CanTransition(order.Status, in.NewStatus) {
			return &domain.InvalidTransitionError{OrderID: orderID, From: order.Status, To: in.NewStatus}
		}

		if in.NewStatus == entity.OrderStatusRecibida {
			lines, err := lineRepo.ListByOrder(orderID)
			if err != nil {
				return err
			}
			reason := fmt.Sprintf("orden de compra #%s recibida", orderID)
			for _, line := range lines {
				if _, err := uc.ledger.PostEntradaInTx(
					movRepo, recordRepo,
					line.ProductID, receivingLocation, in.Actor, reason,
					line.Quantity, nowTs, txID,
				); err != nil {
					return fmt.Errorf("recibir línea %s: %w", line.ID, err)
				}
			}
		}

		cancelReason := ""
		if in.NewStatus == entity.OrderStatusCancelada {
			cancelReason = in.Reason
		}
		return orderRepo.UpdateStatus(orderID, in.NewStatus, cancelReason)
	})
}

// Cancel transiciona a cancelada con motivo obligatorio.
func (uc *OrderUseCase) Cancel(ctx context.Context, orderID, reason, actor string) error {
	return uc.Transition(ctx, orderID, TransitionInput{
		NewStatus: entity.OrderStatusCancelada,
		Actor:     actor,
		Reason:    reason,
	})
}

// GetOrder devuelve la orden con sus líneas y el total calculado desde ellas.
func (uc *OrderUseCase) GetOrder(ctx context.Context, id string) (*OrderDetail, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id de orden requerido", domain.ErrInvalidInput)
	}
	order, err := uc.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
	}
	lines, err := uc.lineRepo.ListByOrder(id)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{
		Order:         order,
		Lines:         lines,
		ComputedTotal: sumSubtotals(lines),
		ItemCount:     len(lines),
	}, nil
}

// ListOrders lista órdenes filtradas por estado y/o proveedor, con resumen
// de conteo y monto por estado.
func (uc *OrderUseCase) ListOrders(ctx context.Context, filter repository.OrderFilter) (*OrderList, error) {
	if filter.Status != "" && !entity.ValidOrderStatus(filter.Status) {
		return nil, fmt.Errorf("%w: estado inválido, permitidos: %s",
			domain.ErrInvalidInput, strings.Join(entity.OrderStatuses, ", "))
	}
	ordersList, err := uc.orderRepo.List(filter)
	if err != nil {
		return nil, err
	}
	out := &OrderList{
		Orders:      ordersList,
		TotalOrders: len(ordersList),
		TotalAmount: decimal.Zero,
		ByStatus:    make(map[string]StatusSummary, len(entity.OrderStatuses)),
	}
	for _, o := range ordersList {
		out.TotalAmount = out.TotalAmount.Add(o.Total)
		s := out.ByStatus[o.Status]
		s.Count++
		s.Amount = s.Amount.Add(o.Total)
		out.ByStatus[o.Status] = s
	}
	return out, nil
}

func (uc *OrderUseCase) validateLine(line LineItemInput) error {
	if line.ProductID == "" {
		return fmt.Errorf("%w: id de producto requerido", domain.ErrInvalidInput)
	}
	product, err := uc.productRepo.GetByID(line.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: el producto %s no existe", domain.ErrNotFound, line.ProductID)
	}
	if !line.Quantity.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: la cantidad debe ser mayor a 0", domain.ErrInvalidInput)
	}
	if !line.UnitPrice.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: el precio unitario debe ser mayor a 0", domain.ErrInvalidInput)
	}
	item := entity.OrderLineItem{Quantity: line.Quantity, UnitPrice: line.UnitPrice, Subtotal: line.Subtotal}
	if !item.SubtotalConsistent() {
		return fmt.Errorf("%w: el subtotal %s no corresponde a cantidad %s por precio %s (tolerancia 0.01)",
			domain.ErrInvalidInput, line.Subtotal, line.Quantity, line.UnitPrice)
	}
	return nil
}

func sumSubtotals(lines []*entity.OrderLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return total
}
