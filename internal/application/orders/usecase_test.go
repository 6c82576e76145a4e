package orders_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acampos/almacen-api/internal/application/inventory"
	"github.com/acampos/almacen-api/internal/application/orders"
	"github.com/acampos/almacen-api/internal/domain"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/domain/repository"
	"github.com/acampos/almacen-api/internal/infrastructure/memory"
)

const (
	supplierID  = "50000000-0000-0000-0000-000000000001"
	productoA   = "10000000-0000-0000-0000-00000000000a"
	productoB   = "10000000-0000-0000-0000-00000000000b"
	warehouseID = "20000000-0000-0000-0000-000000000001"
	locRecibo   = "30000000-0000-0000-0000-000000000001"
	actor       = "comprador-1"
)

type orderFixture struct {
	store        *memory.Store
	orders       *orders.OrderUseCase
	ledger       *inventory.LedgerUseCase
	locationRepo *memory.LocationRepo

	orderRepo    *memory.PurchaseOrderRepo
	lineRepo     *memory.OrderLineRepo
	supplierRepo *memory.SupplierRepo
	productRepo  *memory.ProductRepo
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	supplierRepo := memory.NewSupplierRepository(store)
	warehouseRepo := memory.NewWarehouseRepository(store)
	locationRepo := memory.NewLocationRepository(store)
	recordRepo := memory.NewInventoryRecordRepository(store)
	movementRepo := memory.NewMovementRepository(store)
	orderRepo := memory.NewPurchaseOrderRepository(store)
	lineRepo := memory.NewOrderLineRepository(store)

	now := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, supplierRepo.Create(&entity.Supplier{
		ID: supplierID, Name: "Ferretera del Norte", Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, productRepo.Create(&entity.Product{
		ID: productoA, Barcode: "750200000001", Name: "Martillo",
		PurchasePrice: decimal.NewFromInt(20), SalePrice: decimal.NewFromInt(35),
		Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, productRepo.Create(&entity.Product{
		ID: productoB, Barcode: "750200000002", Name: "Destornillador",
		PurchasePrice: decimal.NewFromInt(8), SalePrice: decimal.NewFromInt(15),
		Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, warehouseRepo.Create(&entity.Warehouse{
		ID: warehouseID, Name: "Central", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, locationRepo.Create(&entity.Location{
		ID: locRecibo, WarehouseID: warehouseID, Code: "REC-01",
		Kind: entity.LocationKindZona, Active: true, CreatedAt: now, UpdatedAt: now,
	}))

	ledger := inventory.NewLedgerUseCase(
		store, productRepo, locationRepo, recordRepo, movementRepo, locRecibo, nil,
	)
	uc := orders.NewOrderUseCase(
		store, ledger, orderRepo, lineRepo, supplierRepo, productRepo,
		locationRepo, locRecibo, nil,
	)
	return &orderFixture{
		store: store, orders: uc, ledger: ledger, locationRepo: locationRepo,
		orderRepo: orderRepo, lineRepo: lineRepo,
		supplierRepo: supplierRepo, productRepo: productRepo,
	}
}

func (f *orderFixture) createOrder(t *testing.T) *entity.PurchaseOrder {
	t.Helper()
	order, err := f.orders.CreateOrder(context.Background(), orders.CreateOrderInput{
		SupplierID: supplierID,
		Actor:      actor,
		Lines: []orders.LineItemInput{
			{ProductID: productoA, Quantity: decimal.NewFromInt(10),
				UnitPrice: decimal.NewFromInt(20), Subtotal: decimal.NewFromInt(200)},
			{ProductID: productoB, Quantity: decimal.NewFromInt(5),
				UnitPrice: decimal.NewFromInt(8), Subtotal: decimal.NewFromInt(40)},
		},
	})
	require.NoError(t, err)
	return order
}

func (f *orderFixture) transition(t *testing.T, orderID, status string) {
	t.Helper()
	require.NoError(t, f.orders.Transition(context.Background(), orderID, orders.TransitionInput{
		NewStatus: status,
		Actor:     actor,
	}))
}

func TestCreateOrder_TotalEsSumaDeSubtotales(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	assert.Equal(t, entity.OrderStatusPendiente, order.Status)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(240)))

	detail, err := f.orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Lines, 2)
	assert.True(t, detail.ComputedTotal.Equal(order.Total))
}

func TestCreateOrder_SubtotalInconsistenteRechazado(t *testing.T) {
	f := newOrderFixture(t)

	// 10 * 20 = 200; un subtotal de 199 excede la tolerancia de 0.01.
	_, err := f.orders.CreateOrder(context.Background(), orders.CreateOrderInput{
		SupplierID: supplierID,
		Actor:      actor,
		Lines: []orders.LineItemInput{
			{ProductID: productoA, Quantity: decimal.NewFromInt(10),
				UnitPrice: decimal.NewFromInt(20), Subtotal: decimal.NewFromInt(199)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateOrder_SubtotalDentroDeTolerancia(t *testing.T) {
	f := newOrderFixture(t)

	// 3 * 9.99 = 29.97; 29.98 está dentro de la tolerancia de un centavo.
	_, err := f.orders.CreateOrder(context.Background(), orders.CreateOrderInput{
		SupplierID: supplierID,
		Actor:      actor,
		Lines: []orders.LineItemInput{
			{ProductID: productoA, Quantity: decimal.NewFromInt(3),
				UnitPrice: decimal.RequireFromString("9.99"),
				Subtotal:  decimal.RequireFromString("29.98")},
		},
	})
	assert.NoError(t, err)
}

func TestCreateOrder_ProveedorInexistente(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.orders.CreateOrder(context.Background(), orders.CreateOrderInput{
		SupplierID: "99999999-0000-0000-0000-000000000000",
		Actor:      actor,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransition_SaltoDeEstadosRechazado(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	// pendiente -> enviada se salta aprobada.
	err := f.orders.Transition(context.Background(), order.ID, orders.TransitionInput{
		NewStatus: entity.OrderStatusEnviada,
		Actor:     actor,
	})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	var ite *domain.InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, entity.OrderStatusPendiente, ite.From)
	assert.Equal(t, entity.OrderStatusEnviada, ite.To)

	detail, err := f.orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPendiente, detail.Order.Status, "la orden no cambió")
}

func TestTransition_RecepcionAsientaEntradasPorLinea(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)

	f.transition(t, order.ID, entity.OrderStatusAprobada)
	f.transition(t, order.ID, entity.OrderStatusEnviada)
	f.transition(t, order.ID, entity.OrderStatusRecibida)

	detail, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusRecibida, detail.Order.Status)

	// Una entrada por línea, todas en la misma transacción.
	movsA, _, err := f.ledger.QueryMovements(ctx, entity.MovementFilter{ProductID: productoA})
	require.NoError(t, err)
	require.Len(t, movsA, 1)
	movsB, _, err := f.ledger.QueryMovements(ctx, entity.MovementFilter{ProductID: productoB})
	require.NoError(t, err)
	require.Len(t, movsB, 1)
	assert.Equal(t, entity.MovementTypeEntrada, movsA[0].Type)
	assert.Equal(t, movsA[0].TransactionID, movsB[0].TransactionID)

	stockA, err := f.ledger.GetStock(ctx, productoA)
	require.NoError(t, err)
	assert.True(t, stockA.Total.Equal(decimal.NewFromInt(10)))
	stockB, err := f.ledger.GetStock(ctx, productoB)
	require.NoError(t, err)
	assert.True(t, stockB.Total.Equal(decimal.NewFromInt(5)))
}

func TestTransition_RecepcionFallidaNoCambiaLaOrden(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)
	f.transition(t, order.ID, entity.OrderStatusAprobada)
	f.transition(t, order.ID, entity.OrderStatusEnviada)

	// Desactivar la ubicación de recepción hace fallar la recepción completa.
	loc, err := f.locationRepo.GetByID(locRecibo)
	require.NoError(t, err)
	loc.Active = false
	require.NoError(t, f.locationRepo.Update(loc))

	err = f.orders.Transition(ctx, order.ID, orders.TransitionInput{
		NewStatus: entity.OrderStatusRecibida,
		Actor:     actor,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	detail, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusEnviada, detail.Order.Status)

	stockA, err := f.ledger.GetStock(ctx, productoA)
	require.NoError(t, err)
	assert.True(t, stockA.Total.IsZero(), "ninguna línea se asentó")
}

// faultyTxRunner delega en el Store pero envuelve el repositorio de
// movimientos con uno que falla tras cierto número de inserciones, para
// provocar un error de almacenamiento a mitad de la transacción de recepción.
type faultyTxRunner struct {
	store *memory.Store
	allow int
}

func (r *faultyTxRunner) RunOrder(ctx context.Context, fn func(
	orderRepo repository.PurchaseOrderRepository,
	lineRepo repository.OrderLineRepository,
	movRepo repository.MovementRepository,
	recordRepo repository.InventoryRecordRepository,
) error) error {
	return r.store.RunOrder(ctx, func(
		orderRepo repository.PurchaseOrderRepository,
		lineRepo repository.OrderLineRepository,
		movRepo repository.MovementRepository,
		recordRepo repository.InventoryRecordRepository,
	) error {
		return fn(orderRepo, lineRepo, &faultyMovementRepo{
			MovementRepository: movRepo,
			allow:              r.allow,
		}, recordRepo)
	})
}

type faultyMovementRepo struct {
	repository.MovementRepository
	allow int
	seen  int
}

func (f *faultyMovementRepo) Create(m *entity.Movement) error {
	f.seen++
	if f.seen > f.allow {
		return errors.New("almacenamiento no disponible")
	}
	return f.MovementRepository.Create(m)
}

func TestTransition_FalloAMitadDeLaRecepcionRevierteTodo(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)
	f.transition(t, order.ID, entity.OrderStatusAprobada)
	f.transition(t, order.ID, entity.OrderStatusEnviada)

	// Mismo caso de uso pero la segunda línea falla al asentar su entrada,
	// ya dentro de la transacción de recepción.
	faulty := orders.NewOrderUseCase(
		&faultyTxRunner{store: f.store, allow: 1},
		f.ledger, f.orderRepo, f.lineRepo, f.supplierRepo, f.productRepo,
		f.locationRepo, locRecibo, nil,
	)
	err := faulty.Transition(ctx, order.ID, orders.TransitionInput{
		NewStatus: entity.OrderStatusRecibida,
		Actor:     actor,
	})
	require.Error(t, err)

	// La orden sigue en enviada y ni la entrada que sí alcanzó a asentarse
	// sobrevive: la transacción se revierte completa.
	detail, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusEnviada, detail.Order.Status)

	for _, productID := range []string{productoA, productoB} {
		stock, err := f.ledger.GetStock(ctx, productID)
		require.NoError(t, err)
		assert.True(t, stock.Total.IsZero(), "producto %s sin stock asentado", productID)
	}
	movs, _, err := f.ledger.QueryMovements(ctx, entity.MovementFilter{ProductID: productoA})
	require.NoError(t, err)
	assert.Empty(t, movs, "el libro no conserva movimientos de la recepción fallida")
}

func TestTransition_CancelacionExigeMotivo(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	err := f.orders.Transition(context.Background(), order.ID, orders.TransitionInput{
		NewStatus: entity.OrderStatusCancelada,
		Actor:     actor,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, f.orders.Cancel(context.Background(), order.ID, "proveedor sin stock", actor))
	detail, err := f.orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelada, detail.Order.Status)
	assert.Equal(t, "proveedor sin stock", detail.Order.CancelReason)
}

func TestTransition_EstadosTerminalesInertes(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	cancelada := f.createOrder(t)
	require.NoError(t, f.orders.Cancel(ctx, cancelada.ID, "duplicada", actor))

	recibida := f.createOrder(t)
	f.transition(t, recibida.ID, entity.OrderStatusAprobada)
	f.transition(t, recibida.ID, entity.OrderStatusEnviada)
	f.transition(t, recibida.ID, entity.OrderStatusRecibida)

	for _, tc := range []struct{ orderID, to string }{
		{cancelada.ID, entity.OrderStatusAprobada},
		{cancelada.ID, entity.OrderStatusPendiente},
		{recibida.ID, entity.OrderStatusCancelada},
		{recibida.ID, entity.OrderStatusEnviada},
	} {
		err := f.orders.Transition(ctx, tc.orderID, orders.TransitionInput{
			NewStatus: tc.to, Actor: actor, Reason: "intento tardío",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "a %s", tc.to)
	}
}

func TestLineas_InmutablesFueraDePendienteAprobada(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)

	// En aprobada todavía se puede ajustar.
	f.transition(t, order.ID, entity.OrderStatusAprobada)
	line, err := f.orders.AddOrUpdateLineItem(ctx, order.ID, orders.LineItemInput{
		ProductID: productoA, Quantity: decimal.NewFromInt(12),
		UnitPrice: decimal.NewFromInt(20), Subtotal: decimal.NewFromInt(240),
	})
	require.NoError(t, err)
	assert.True(t, line.Quantity.Equal(decimal.NewFromInt(12)))

	detail, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, detail.Order.Total.Equal(decimal.NewFromInt(280)), "el total cacheado se recalculó")

	// En enviada ya no.
	f.transition(t, order.ID, entity.OrderStatusEnviada)
	_, err = f.orders.AddOrUpdateLineItem(ctx, order.ID, orders.LineItemInput{
		ProductID: productoA, Quantity: decimal.NewFromInt(1),
		UnitPrice: decimal.NewFromInt(20), Subtotal: decimal.NewFromInt(20),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = f.orders.RemoveLineItem(ctx, order.ID, detail.Lines[0].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRemoveLineItem_RecalculaTotal(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)

	detail, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	var lineaB *entity.OrderLineItem
	for _, l := range detail.Lines {
		if l.ProductID == productoB {
			lineaB = l
		}
	}
	require.NotNil(t, lineaB)

	require.NoError(t, f.orders.RemoveLineItem(ctx, order.ID, lineaB.ID))

	detail, err = f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Lines, 1)
	assert.True(t, detail.Order.Total.Equal(decimal.NewFromInt(200)))
}

func TestListOrders_ResumenPorEstado(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	o1 := f.createOrder(t)
	o2 := f.createOrder(t)
	require.NoError(t, f.orders.Cancel(ctx, o2.ID, "error de captura", actor))

	list, err := f.orders.ListOrders(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.TotalOrders)
	assert.True(t, list.TotalAmount.Equal(decimal.NewFromInt(480)))
	assert.Equal(t, 1, list.ByStatus[entity.OrderStatusPendiente].Count)
	assert.Equal(t, 1, list.ByStatus[entity.OrderStatusCancelada].Count)

	soloPendientes, err := f.orders.ListOrders(ctx, repository.OrderFilter{Status: entity.OrderStatusPendiente})
	require.NoError(t, err)
	require.Len(t, soloPendientes.Orders, 1)
	assert.Equal(t, o1.ID, soloPendientes.Orders[0].ID)

	_, err = f.orders.ListOrders(ctx, repository.OrderFilter{Status: "abierta"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
