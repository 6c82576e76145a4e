package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acampos/almacen-api/internal/application/catalog"
	"github.com/acampos/almacen-api/internal/domain"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/infrastructure/memory"
)

type catalogFixture struct {
	store    *memory.Store
	products *catalog.ProductUseCase
	supplier *entity.Supplier
	category *entity.Category
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	categoryRepo := memory.NewCategoryRepository(store)
	supplierRepo := memory.NewSupplierRepository(store)

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	category := &entity.Category{
		ID: "c0000000-0000-0000-0000-000000000001", Name: "Herramientas",
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, categoryRepo.Create(category))
	supplier := &entity.Supplier{
		ID: "50000000-0000-0000-0000-000000000001", Name: "Aceros del Bajío",
		Active: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, supplierRepo.Create(supplier))

	return &catalogFixture{
		store:    store,
		products: catalog.NewProductUseCase(productRepo, categoryRepo, supplierRepo, nil),
		supplier: supplier,
		category: category,
	}
}

func validProduct() catalog.CreateProductInput {
	return catalog.CreateProductInput{
		Barcode:       "750123456789",
		Name:          "Pinza de presión",
		PurchasePrice: decimal.NewFromInt(80),
		SalePrice:     decimal.NewFromInt(129),
		StockMin:      decimal.NewFromInt(2),
		StockMax:      decimal.NewFromInt(20),
	}
}

func TestCreateProduct_Validaciones(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*catalog.CreateProductInput)
	}{
		{"sin nombre", func(in *catalog.CreateProductInput) { in.Name = "  " }},
		{"sin código de barras", func(in *catalog.CreateProductInput) { in.Barcode = "" }},
		{"venta menor a compra", func(in *catalog.CreateProductInput) {
			in.SalePrice = decimal.NewFromInt(79)
		}},
		{"precio de compra negativo", func(in *catalog.CreateProductInput) {
			in.PurchasePrice = decimal.NewFromInt(-1)
		}},
		{"máximo menor al mínimo", func(in *catalog.CreateProductInput) {
			in.StockMin = decimal.NewFromInt(30)
		}},
		{"mínimo negativo", func(in *catalog.CreateProductInput) {
			in.StockMin = decimal.NewFromInt(-1)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validProduct()
			tc.mutate(&in)
			_, err := f.products.CreateProduct(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCreateProduct_BarcodeDuplicado(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.products.CreateProduct(ctx, validProduct())
	require.NoError(t, err)

	dup := validProduct()
	dup.Name = "Otra pinza"
	_, err = f.products.CreateProduct(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestCreateProduct_ReferenciasInexistentes(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	in := validProduct()
	in.CategoryID = "c0000000-0000-0000-0000-0000000000ff"
	_, err := f.products.CreateProduct(ctx, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	in = validProduct()
	in.SupplierID = "50000000-0000-0000-0000-0000000000ff"
	_, err = f.products.CreateProduct(ctx, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProduct_IdentidadInmutable(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	created, err := f.products.CreateProduct(ctx, validProduct())
	require.NoError(t, err)

	updated, err := f.products.UpdateProduct(ctx, created.ID, catalog.UpdateProductInput{
		Name:          "Pinza de presión 10in",
		CategoryID:    f.category.ID,
		SupplierID:    f.supplier.ID,
		PurchasePrice: decimal.NewFromInt(85),
		SalePrice:     decimal.NewFromInt(139),
		StockMin:      decimal.NewFromInt(3),
		StockMax:      decimal.NewFromInt(25),
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.Barcode, updated.Barcode, "el código de barras no cambia en una actualización")
	assert.Equal(t, "Pinza de presión 10in", updated.Name)
	assert.True(t, updated.PurchasePrice.Equal(decimal.NewFromInt(85)))
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestUpdateProduct_MismasValidacionesDelAlta(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	created, err := f.products.CreateProduct(ctx, validProduct())
	require.NoError(t, err)

	_, err = f.products.UpdateProduct(ctx, created.ID, catalog.UpdateProductInput{
		Name:          "Pinza",
		PurchasePrice: decimal.NewFromInt(100),
		SalePrice:     decimal.NewFromInt(90),
		StockMax:      decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeactivateProduct_BajaLogica(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	created, err := f.products.CreateProduct(ctx, validProduct())
	require.NoError(t, err)

	require.NoError(t, f.products.DeactivateProduct(ctx, created.ID))

	// Sigue consultable por ID pero inactivo.
	got, err := f.products.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	activos, err := f.products.ListProducts(ctx, true, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, activos)

	// Desactivar dos veces no falla.
	assert.NoError(t, f.products.DeactivateProduct(ctx, created.ID))
}

func TestGetProductByBarcode(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	created, err := f.products.CreateProduct(ctx, validProduct())
	require.NoError(t, err)

	got, err := f.products.GetProductByBarcode(ctx, created.Barcode)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = f.products.GetProductByBarcode(ctx, "000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchProductsByName_InsensibleAAcentos(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	for _, p := range []struct{ barcode, name string }{
		{"750100000001", "Limón deshidratado"},
		{"750100000002", "Exprimidor de limon"},
		{"750100000003", "Martillo de uña"},
	} {
		in := validProduct()
		in.Barcode = p.barcode
		in.Name = p.name
		_, err := f.products.CreateProduct(ctx, in)
		require.NoError(t, err)
	}

	// "Limon" sin acento encuentra ambas variantes.
	matches, err := f.products.SearchProductsByName(ctx, "Limon")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	// "limón" con acento también.
	matches, err = f.products.SearchProductsByName(ctx, "limón")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = f.products.SearchProductsByName(ctx, "UÑA")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Martillo de uña", matches[0].Name)

	_, err = f.products.SearchProductsByName(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
