package replenishment_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acampos/almacen-api/internal/application/replenishment"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/infrastructure/memory"
)

const locID = "30000000-0000-0000-0000-000000000001"

type replenFixture struct {
	uc          *replenishment.UseCase
	productRepo *memory.ProductRepo
	recordRepo  *memory.InventoryRecordRepo
	seq         int
}

func newReplenFixture(t *testing.T) *replenFixture {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	recordRepo := memory.NewInventoryRecordRepository(store)
	return &replenFixture{
		uc:          replenishment.NewUseCase(productRepo, recordRepo),
		productRepo: productRepo,
		recordRepo:  recordRepo,
	}
}

// seed da de alta un producto con umbrales y un stock actual en una ubicación.
func (f *replenFixture) seed(t *testing.T, name string, min, max, stock int64, active bool) *entity.Product {
	t.Helper()
	f.seq++
	now := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	p := &entity.Product{
		ID:            fmt.Sprintf("10000000-0000-0000-0000-%012d", f.seq),
		Barcode:       fmt.Sprintf("7001%08d", f.seq),
		Name:          name,
		PurchasePrice: decimal.NewFromInt(10),
		SalePrice:     decimal.NewFromInt(15),
		StockMin:      decimal.NewFromInt(min),
		StockMax:      decimal.NewFromInt(max),
		Active:        active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, f.productRepo.Create(p))
	if stock > 0 {
		require.NoError(t, f.recordRepo.Create(&entity.InventoryRecord{
			ProductID:  p.ID,
			LocationID: locID,
			Quantity:   decimal.NewFromInt(stock),
			UpdatedAt:  now,
		}))
	}
	return p
}

func TestLowStockReport_SoloProductosBajoMinimo(t *testing.T) {
	f := newReplenFixture(t)

	bajo := f.seed(t, "Tornillo 5mm", 10, 40, 3, true) // déficit 7
	f.seed(t, "Tuerca 5mm", 10, 40, 10, true)          // en el mínimo exacto: fuera
	f.seed(t, "Arandela", 10, 40, 25, true)            // sobrado: fuera

	report, err := f.uc.LowStockReport(context.Background())
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, bajo.ID, report[0].ProductID)
	assert.True(t, report[0].CurrentStock.Equal(decimal.NewFromInt(3)))
	assert.True(t, report[0].Deficit.Equal(decimal.NewFromInt(7)))
	assert.True(t, report[0].SuggestedOrderQty.Equal(decimal.NewFromInt(37)), "max 40 - actual 3")
}

func TestLowStockReport_IgnoraSinUmbralEInactivos(t *testing.T) {
	f := newReplenFixture(t)

	f.seed(t, "Sin umbral", 0, 40, 0, true)       // StockMin 0 no participa
	f.seed(t, "Descontinuado", 10, 40, 0, false)  // inactivo no participa
	vivo := f.seed(t, "Vigente", 10, 40, 0, true) // sin stock: déficit completo

	report, err := f.uc.LowStockReport(context.Background())
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, vivo.ID, report[0].ProductID)
	assert.True(t, report[0].CurrentStock.IsZero())
	assert.True(t, report[0].SuggestedOrderQty.Equal(decimal.NewFromInt(40)))
}

func TestLowStockReport_OrdenadoPorDeficit(t *testing.T) {
	f := newReplenFixture(t)

	f.seed(t, "Déficit chico", 5, 20, 4, true)   // déficit 1
	f.seed(t, "Déficit grande", 30, 60, 2, true) // déficit 28
	f.seed(t, "Déficit medio", 15, 30, 5, true)  // déficit 10

	report, err := f.uc.LowStockReport(context.Background())
	require.NoError(t, err)
	require.Len(t, report, 3)
	assert.Equal(t, "Déficit grande", report[0].Name)
	assert.Equal(t, "Déficit medio", report[1].Name)
	assert.Equal(t, "Déficit chico", report[2].Name)
}

func TestLowStockReport_SugerenciaNuncaNegativa(t *testing.T) {
	f := newReplenFixture(t)

	// Umbrales mal configurados (max < actual) no producen sugerencia negativa.
	f.seed(t, "Mal configurado", 10, 5, 7, true)

	report, err := f.uc.LowStockReport(context.Background())
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.True(t, report[0].SuggestedOrderQty.IsZero())
}
