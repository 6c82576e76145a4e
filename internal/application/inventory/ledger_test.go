package inventory_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acampos/almacen-api/internal/application/inventory"
	"github.com/acampos/almacen-api/internal/domain"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/infrastructure/memory"
)

const (
	testProductID   = "10000000-0000-0000-0000-000000000001"
	testProduct2ID  = "10000000-0000-0000-0000-000000000002"
	testWarehouseID = "20000000-0000-0000-0000-000000000001"
	locRecepcion    = "30000000-0000-0000-0000-000000000001"
	locEstanteria   = "30000000-0000-0000-0000-000000000002"
	locRack         = "30000000-0000-0000-0000-000000000003"
	testActor       = "usuario-1"
)

// testClock devuelve tiempos estrictamente crecientes para que el orden de
// los movimientos sea estable en las consultas.
func testClock() func() time.Time {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	var n int64
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

type ledgerFixture struct {
	store  *memory.Store
	ledger *inventory.LedgerUseCase
}

// newLedgerFixture construye el caso de uso sobre el almacén en memoria con
// dos productos, un almacén y tres ubicaciones activas sembrados.
func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	warehouseRepo := memory.NewWarehouseRepository(store)
	locationRepo := memory.NewLocationRepository(store)
	recordRepo := memory.NewInventoryRecordRepository(store)
	movementRepo := memory.NewMovementRepository(store)

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, productRepo.Create(&entity.Product{
		ID: testProductID, Barcode: "750100000001", Name: "Tornillo 3mm",
		SalePrice: decimal.NewFromInt(5), PurchasePrice: decimal.NewFromInt(3),
		Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, productRepo.Create(&entity.Product{
		ID: testProduct2ID, Barcode: "750100000002", Name: "Tuerca 3mm",
		SalePrice: decimal.NewFromInt(2), PurchasePrice: decimal.NewFromInt(1),
		Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, warehouseRepo.Create(&entity.Warehouse{
		ID: testWarehouseID, Name: "Central", CreatedAt: now, UpdatedAt: now,
	}))
	for i, loc := range []struct {
		id, code, kind string
	}{
		{locRecepcion, "REC-01", entity.LocationKindZona},
		{locEstanteria, "EST-01", entity.LocationKindEstanteria},
		{locRack, "RACK-01", entity.LocationKindRack},
	} {
		require.NoError(t, locationRepo.Create(&entity.Location{
			ID: loc.id, WarehouseID: testWarehouseID, Code: loc.code, Kind: loc.kind,
			Active: true, CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}))
	}

	ledger := inventory.NewLedgerUseCase(
		store, productRepo, locationRepo, recordRepo, movementRepo,
		locRecepcion, testClock(),
	)
	return &ledgerFixture{store: store, ledger: ledger}
}

func (f *ledgerFixture) entrada(t *testing.T, locationID string, qty int64) {
	t.Helper()
	_, err := f.ledger.PostMovement(context.Background(), inventory.MovementInput{
		Type:       entity.MovementTypeEntrada,
		ProductID:  testProductID,
		LocationID: locationID,
		Quantity:   decimal.NewFromInt(qty),
		Actor:      testActor,
		Reason:     "abastecimiento de prueba",
	})
	require.NoError(t, err)
}

func (f *ledgerFixture) stockAt(t *testing.T, locationID string) decimal.Decimal {
	t.Helper()
	summary, err := f.ledger.GetStock(context.Background(), testProductID)
	require.NoError(t, err)
	for _, lq := range summary.PerLocation {
		if lq.LocationID == locationID {
			return lq.Quantity
		}
	}
	return decimal.Zero
}

func TestPostMovement_EntradaCreaRegistroImplicito(t *testing.T) {
	f := newLedgerFixture(t)

	movs, err := f.ledger.PostMovement(context.Background(), inventory.MovementInput{
		Type:       entity.MovementTypeEntrada,
		ProductID:  testProductID,
		LocationID: locEstanteria,
		Quantity:   decimal.NewFromInt(10),
		Actor:      testActor,
		Reason:     "compra inicial",
	})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeEntrada, movs[0].Type)
	assert.True(t, movs[0].Quantity.Equal(decimal.NewFromInt(10)), "la entrada se asienta positiva")

	assert.True(t, f.stockAt(t, locEstanteria).Equal(decimal.NewFromInt(10)))
}

func TestPostMovement_EntradaSinUbicacionUsaRecepcion(t *testing.T) {
	f := newLedgerFixture(t)

	movs, err := f.ledger.PostMovement(context.Background(), inventory.MovementInput{
		Type:      entity.MovementTypeEntrada,
		ProductID: testProductID,
		Quantity:  decimal.NewFromInt(4),
		Actor:     testActor,
		Reason:    "compra sin ubicación",
	})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, locRecepcion, movs[0].LocationID)
}

func TestPostMovement_Validaciones(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   inventory.MovementInput
	}{
		{"tipo inválido", inventory.MovementInput{
			Type: "ENTRADA", ProductID: testProductID,
			Quantity: decimal.NewFromInt(1), Actor: testActor, Reason: "x",
		}},
		{"sin producto", inventory.MovementInput{
			Type: entity.MovementTypeEntrada,
			Quantity: decimal.NewFromInt(1), Actor: testActor, Reason: "x",
		}},
		{"sin actor", inventory.MovementInput{
			Type: entity.MovementTypeEntrada, ProductID: testProductID,
			Quantity: decimal.NewFromInt(1), Reason: "x",
		}},
		{"sin motivo", inventory.MovementInput{
			Type: entity.MovementTypeEntrada, ProductID: testProductID,
			Quantity: decimal.NewFromInt(1), Actor: testActor,
		}},
		{"cantidad cero", inventory.MovementInput{
			Type: entity.MovementTypeEntrada, ProductID: testProductID,
			Actor: testActor, Reason: "x",
		}},
		{"cantidad negativa en salida", inventory.MovementInput{
			Type: entity.MovementTypeSalida, ProductID: testProductID, LocationID: locEstanteria,
			Quantity: decimal.NewFromInt(-3), Actor: testActor, Reason: "x",
		}},
		{"ajuste cero", inventory.MovementInput{
			Type: entity.MovementTypeAjuste, ProductID: testProductID, LocationID: locEstanteria,
			Actor: testActor, Reason: "x",
		}},
		{"transferencia mismo origen y destino", inventory.MovementInput{
			Type: entity.MovementTypeTransferencia, ProductID: testProductID,
			LocationID: locEstanteria, ToLocationID: locEstanteria,
			Quantity: decimal.NewFromInt(1), Actor: testActor, Reason: "x",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.PostMovement(ctx, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	// Ningún intento inválido dejó rastro en el libro.
	movs, _, err := f.ledger.QueryMovements(ctx, entity.MovementFilter{ProductID: testProductID})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestPostMovement_ProductoInexistente(t *testing.T) {
	f := newLedgerFixture(t)
	_, err := f.ledger.PostMovement(context.Background(), inventory.MovementInput{
		Type:       entity.MovementTypeEntrada,
		ProductID:  "99999999-0000-0000-0000-000000000000",
		LocationID: locEstanteria,
		Quantity:   decimal.NewFromInt(1),
		Actor:      testActor,
		Reason:     "x",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostMovement_SalidaConUbicacionInsuficiente(t *testing.T) {
	f := newLedgerFixture(t)
	f.entrada(t, locEstanteria, 5)

	_, err := f.ledger.PostMovement(context.Background(), inventory.MovementInput{
		Type:       entity.MovementTypeSalida,
		ProductID:  testProductID,
		LocationID: locEstanteria,
		Quantity:   decimal.NewFromInt(8),
		Actor:      testActor,
		Reason:     "venta",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, locEstanteria, ise.LocationID)
	assert.True(t, ise.Available.Equal(decimal.NewFromInt(5)))
	assert.True(t, ise.Requested.Equal(decimal.NewFromInt(8)))

	// El stock quedó intacto.
	assert.True(t, f.stockAt(t, locEstanteria).Equal(decimal.NewFromInt(5)))
}

func TestPostMovement_SalidaSinUbicacionVerificaAgregado(t *testing.T) {
	f := newLedgerFixture(t)
	f.entrada(t, locEstanteria, 3)
	f.entrada(t, locRack, 4)

	// Agregado 7 < 10: la verificación falla sin señalar ubicación.
	_, err := f.ledger.PostMovement(context.Background(), inventory.MovementInput{
		Type:      entity.MovementTypeSalida,
		ProductID: testProductID,
		Quantity:  decimal.NewFromInt(10),
		Actor:     testActor,
		Reason:    "venta grande",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Empty(t, ise.LocationID, "la falta agregada no refiere a una ubicación concreta")
	assert.True(t, ise.Available.Equal(decimal.NewFromInt(7)))
}

func TestPostMovement_SalidaMultiUbicacionConsumeDeMayorAMenor(t *testing.T) {
	f := newLedgerFixture(t)
	f.entrada(t, locEstanteria, 3)
	f.entrada(t, locRack, 9)
	f.entrada(t, locRecepcion, 1)

	movs, err := f.ledger.PostMovement(context.Background(), inventory.MovementInput{
		Type:          entity.MovementTypeSalida,
		ProductID:     testProductID,
		Quantity:      decimal.NewFromInt(11),
		MultiLocation: true,
		Actor:         testActor,
		Reason:        "despacho",
	})
	require.NoError(t, err)
	require.Len(t, movs, 2, "9 del rack y 2 de la estantería; la recepción no se toca")

	assert.Equal(t, locRack, movs[0].LocationID)
	assert.True(t, movs[0].Quantity.Equal(decimal.NewFromInt(-9)))
	assert.Equal(t, locEstanteria, movs[1].LocationID)
	assert.True(t, movs[1].Quantity.Equal(decimal.NewFromInt(-2)))
	assert.Equal(t, movs[0].TransactionID, movs[1].TransactionID, "las filas comparten transacción")

	assert.True(t, f.stockAt(t, locRack).IsZero())
	assert.True(t, f.stockAt(t, locEstanteria).Equal(decimal.NewFromInt(1)))
	assert.True(t, f.stockAt(t, locRecepcion).Equal(decimal.NewFromInt(1)))
}

func TestPostMovement_SalidaSinUbicacionSoloRecepcion(t *testing.T) {
	f := newLedgerFixture(t)
	f.entrada(t, locEstanteria, 10)
	f.entrada(t, locRecepcion, 2)

	// Sin MultiLocation, la salida sin ubicación solo puede salir de la
	// recepción aunque el agregado alcance.
	_, err := f.ledger.PostMovement(context.Background(), inventory.MovementInput{
		Type:      entity.MovementTypeSalida,
		ProductID: testProductID,
		Quantity:  decimal.NewFromInt(5),
		Actor:     testActor,
		Reason:    "venta mostrador",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, locRecepcion, ise.LocationID)
}

func TestPostMovement_AjusteNegativoBajoDeCeroRechazado(t *testing.T) {
	f := newLedgerFixture(t)
	f.entrada(t, locEstanteria, 2)

	_, err := f.ledger.PostMovement(context.Background(), inventory.MovementInput{
		Type:       entity.MovementTypeAjuste,
		ProductID:  testProductID,
		LocationID: locEstanteria,
		Quantity:   decimal.NewFromInt(-5),
		Actor:      testActor,
		Reason:     "conteo físico",
	})
	require.ErrorIs(t, err, domain.ErrNegativeStock)

	var nse *domain.NegativeStockError
	require.ErrorAs(t, err, &nse)
	assert.True(t, nse.Current.Equal(decimal.NewFromInt(2)))
	assert.True(t, nse.Delta.Equal(decimal.NewFromInt(-5)))
	assert.True(t, f.stockAt(t, locEstanteria).Equal(decimal.NewFromInt(2)))
}

func TestPostMovement_AjustePositivoYNegativo(t *testing.T) {
	f := newLedgerFixture(t)
	f.entrada(t, locEstanteria, 10)

	_, err := f.ledger.PostMovement(context.Background(), inventory.MovementInput{
		Type:       entity.MovementTypeAjuste,
		ProductID:  testProductID,
		LocationID: locEstanteria,
		Quantity:   decimal.NewFromInt(-4),
		Actor:      testActor,
		Reason:     "merma detectada en conteo",
	})
	require.NoError(t, err)

	_, err = f.ledger.PostMovement(context.Background(), inventory.MovementInput{
		Type:       entity.MovementTypeAjuste,
		ProductID:  testProductID,
		LocationID: locEstanteria,
		Quantity:   decimal.NewFromInt(1),
		Actor:      testActor,
		Reason:     "unidad encontrada",
	})
	require.NoError(t, err)

	assert.True(t, f.stockAt(t, locEstanteria).Equal(decimal.NewFromInt(7)))
}

func TestPostMovement_TransferenciaDosFilasCorrelacionadas(t *testing.T) {
	f := newLedgerFixture(t)
	f.entrada(t, locEstanteria, 8)

	movs, err := f.ledger.PostMovement(context.Background(), inventory.MovementInput{
		Type:         entity.MovementTypeTransferencia,
		ProductID:    testProductID,
		LocationID:   locEstanteria,
		ToLocationID: locRack,
		Quantity:     decimal.NewFromInt(3),
		Actor:        testActor,
		Reason:       "reubicación",
	})
	require.NoError(t, err)
	require.Len(t, movs, 2)

	assert.Equal(t, movs[0].TransactionID, movs[1].TransactionID)
	assert.True(t, movs[0].Quantity.Equal(decimal.NewFromInt(-3)), "sale del origen")
	assert.True(t, movs[1].Quantity.Equal(decimal.NewFromInt(3)), "entra al destino")
	assert.True(t, f.stockAt(t, locEstanteria).Equal(decimal.NewFromInt(5)))
	assert.True(t, f.stockAt(t, locRack).Equal(decimal.NewFromInt(3)))
}

func TestPostMovement_TransferenciaSinStockNoDejaRastro(t *testing.T) {
	f := newLedgerFixture(t)
	f.entrada(t, locEstanteria, 1)

	_, err := f.ledger.PostMovement(context.Background(), inventory.MovementInput{
		Type:         entity.MovementTypeTransferencia,
		ProductID:    testProductID,
		LocationID:   locEstanteria,
		ToLocationID: locRack,
		Quantity:     decimal.NewFromInt(2),
		Actor:        testActor,
		Reason:       "reubicación",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, f.stockAt(t, locEstanteria).Equal(decimal.NewFromInt(1)))
	assert.True(t, f.stockAt(t, locRack).IsZero())

	movs, _, err := f.ledger.QueryMovements(context.Background(), entity.MovementFilter{
		ProductID: testProductID,
		Type:      entity.MovementTypeTransferencia,
	})
	require.NoError(t, err)
	assert.Empty(t, movs, "la transferencia fallida no asienta ninguna fila")
}

// TestLedger_Conciliacion verifica que la suma con signo del libro reproduce
// el stock actual tras una mezcla de operaciones.
func TestLedger_Conciliacion(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	f.entrada(t, locEstanteria, 20)
	f.entrada(t, locRack, 5)
	for _, in := range []inventory.MovementInput{
		{Type: entity.MovementTypeSalida, ProductID: testProductID, LocationID: locEstanteria,
			Quantity: decimal.NewFromInt(6), Actor: testActor, Reason: "venta"},
		{Type: entity.MovementTypeAjuste, ProductID: testProductID, LocationID: locRack,
			Quantity: decimal.NewFromInt(-2), Actor: testActor, Reason: "merma"},
		{Type: entity.MovementTypeTransferencia, ProductID: testProductID, LocationID: locEstanteria,
			ToLocationID: locRecepcion, Quantity: decimal.NewFromInt(4), Actor: testActor, Reason: "reubicación"},
		{Type: entity.MovementTypeDevolucion, ProductID: testProductID, LocationID: locEstanteria,
			Quantity: decimal.NewFromInt(1), Actor: testActor, Reason: "devolución de cliente"},
	} {
		_, err := f.ledger.PostMovement(ctx, in)
		require.NoError(t, err)
	}

	movs, _, err := f.ledger.QueryMovements(ctx, entity.MovementFilter{ProductID: testProductID})
	require.NoError(t, err)
	ledgerSum := decimal.Zero
	for _, m := range movs {
		ledgerSum = ledgerSum.Add(m.Quantity)
	}

	summary, err := f.ledger.GetStock(ctx, testProductID)
	require.NoError(t, err)
	assert.True(t, ledgerSum.Equal(summary.Total),
		"libro %s vs stock %s", ledgerSum, summary.Total)
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(18)))
}

// TestPostMovement_SalidasConcurrentes lanza varias salidas que compiten por
// el mismo stock: exactamente una debe lograrlo.
func TestPostMovement_SalidasConcurrentes(t *testing.T) {
	f := newLedgerFixture(t)
	f.entrada(t, locEstanteria, 10)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.ledger.PostMovement(context.Background(), inventory.MovementInput{
				Type:       entity.MovementTypeSalida,
				ProductID:  testProductID,
				LocationID: locEstanteria,
				Quantity:   decimal.NewFromInt(10),
				Actor:      testActor,
				Reason:     "venta concurrente",
			})
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "solo una salida puede consumir el stock")
	assert.Equal(t, workers-1, insufficient)
	assert.True(t, f.stockAt(t, locEstanteria).IsZero())
}

// TestPostMovement_SalidasConcurrentesAleatorias compite con cantidades al
// azar cuya demanda combinada excede el stock inicial: el stock nunca queda
// negativo y las salidas que lograron pasar suman exactamente lo consumido.
func TestPostMovement_SalidasConcurrentesAleatorias(t *testing.T) {
	f := newLedgerFixture(t)
	const initial = 15
	f.entrada(t, locEstanteria, initial)

	const workers = 12
	rng := rand.New(rand.NewSource(42))
	quantities := make([]int64, workers)
	for i := range quantities {
		quantities[i] = rng.Int63n(6) + 1
	}

	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.ledger.PostMovement(context.Background(), inventory.MovementInput{
				Type:       entity.MovementTypeSalida,
				ProductID:  testProductID,
				LocationID: locEstanteria,
				Quantity:   decimal.NewFromInt(quantities[i]),
				Actor:      testActor,
				Reason:     "venta concurrente",
			})
		}(i)
	}
	wg.Wait()

	consumed := decimal.Zero
	for i, err := range errs {
		switch {
		case err == nil:
			consumed = consumed.Add(decimal.NewFromInt(quantities[i]))
		case errors.Is(err, domain.ErrInsufficientStock):
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	require.True(t, consumed.LessThanOrEqual(decimal.NewFromInt(initial)),
		"lo consumido (%s) no puede exceder el stock inicial", consumed)

	remaining := f.stockAt(t, locEstanteria)
	assert.False(t, remaining.IsNegative(), "el stock nunca queda negativo")
	assert.True(t, remaining.Equal(decimal.NewFromInt(initial).Sub(consumed)),
		"stock final %s = inicial %d - consumido %s", remaining, initial, consumed)
}
