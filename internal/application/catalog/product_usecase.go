package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/domain"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/domain/repository"
)

// ProductUseCase gestiona el catálogo de productos: altas, actualizaciones de
// precios/umbrales, búsqueda y desactivación lógica. Las verificaciones de
// integridad referencial (categoría, proveedor) son reales, no placeholders.
type ProductUseCase struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	now          domain.Clock
}

// NewProductUseCase construye el caso de uso de productos.
func NewProductUseCase(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	now domain.Clock,
) *ProductUseCase {
	if now == nil {
		now = time.Now
	}
	return &ProductUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		now:          now,
	}
}

// CreateProductInput datos para registrar un producto.
type CreateProductInput struct {
	Barcode       string
	Name          string
	Description   string
	CategoryID    string
	SupplierID    string
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	StockMin      decimal.Decimal
	StockMax      decimal.Decimal
}

// CreateProduct valida y registra un producto nuevo (activo).
// Barcode único; precio de venta >= precio de compra; StockMax >= StockMin.
func (uc *ProductUseCase) CreateProduct(ctx context.Context, in CreateProductInput) (*entity.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Barcode = strings.TrimSpace(in.Barcode)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: el nombre del producto es requerido", domain.ErrInvalidInput)
	}
	if in.Barcode == "" {
		return nil, fmt.Errorf("%w: el código de barras es requerido", domain.ErrInvalidInput)
	}
	if err := validatePricing(in.PurchasePrice, in.SalePrice); err != nil {
		return nil, err
	}
	if err := validateThresholds(in.StockMin, in.StockMax); err != nil {
		return nil, err
	}

	existing, err := uc.productRepo.GetByBarcode(in.Barcode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: ya existe un producto con código de barras %s", domain.ErrAlreadyExists, in.Barcode)
	}

	if err := uc.checkRefs(in.CategoryID, in.SupplierID); err != nil {
		return nil, err
	}

	nowTs := uc.now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Barcode:       in.Barcode,
		Name:          in.Name,
		Description:   strings.TrimSpace(in.Description),
		CategoryID:    in.CategoryID,
		SupplierID:    in.SupplierID,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		StockMin:      in.StockMin,
		StockMax:      in.StockMax,
		Active:        true,
		CreatedAt:     nowTs,
		UpdatedAt:     nowTs,
	}
	if err := uc.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProductInput campos mutables de un producto. La identidad
// (ID, Barcode) no se toca.
type UpdateProductInput struct {
	Name          string
	Description   string
	CategoryID    string
	SupplierID    string
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	StockMin      decimal.Decimal
	StockMax      decimal.Decimal
}

// UpdateProduct aplica cambios de precios, umbrales y referencias con las
// mismas validaciones del alta.
func (uc *ProductUseCase) UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (*entity.Product, error) {
	product, err := uc.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: el nombre del producto es requerido", domain.ErrInvalidInput)
	}
	if err := validatePricing(in.PurchasePrice, in.SalePrice); err != nil {
		return nil, err
	}
	if err := validateThresholds(in.StockMin, in.StockMax); err != nil {
		return nil, err
	}
	if err := uc.checkRefs(in.CategoryID, in.SupplierID); err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.Description = strings.TrimSpace(in.Description)
	product.CategoryID = in.CategoryID
	product.SupplierID = in.SupplierID
	product.PurchasePrice = in.PurchasePrice
	product.SalePrice = in.SalePrice
	product.StockMin = in.StockMin
	product.StockMax = in.StockMax
	product.UpdatedAt = uc.now()
	if err := uc.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeactivateProduct desactiva lógicamente un producto. Nunca se borra
// físicamente: inventario y órdenes pueden seguir referenciándolo.
func (uc *ProductUseCase) DeactivateProduct(ctx context.Context, id string) error {
	product, err := uc.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if !product.Active {
		return nil
	}
	product.Active = false
	product.UpdatedAt = uc.now()
	return uc.productRepo.Update(product)
}

// GetProduct obtiene un producto por ID.
func (uc *ProductUseCase) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id de producto requerido", domain.ErrInvalidInput)
	}
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return product, nil
}

// GetProductByBarcode obtiene un producto por código de barras.
func (uc *ProductUseCase) GetProductByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("%w: código de barras requerido", domain.ErrInvalidInput)
	}
	product, err := uc.productRepo.GetByBarcode(barcode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto con código %s", domain.ErrNotFound, barcode)
	}
	return product, nil
}

// ListProducts lista productos, opcionalmente solo activos.
func (uc *ProductUseCase) ListProducts(ctx context.Context, activeOnly bool, limit, offset int) ([]*entity.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.productRepo.List(activeOnly, limit, offset)
}

// SearchProductsByName busca por coincidencia parcial insensible a acentos
// y mayúsculas.
func (uc *ProductUseCase) SearchProductsByName(ctx context.Context, name string) ([]*entity.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre es requerido para la búsqueda", domain.ErrInvalidInput)
	}
	all, err := uc.productRepo.List(false, 1000, 0)
	if err != nil {
		return nil, err
	}
	needle := normalizeText(name)
	var matches []*entity.Product
	for _, p := range all {
		if strings.Contains(normalizeText(p.Name), needle) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (uc *ProductUseCase) checkRefs(categoryID, supplierID string) error {
	if categoryID != "" {
		cat, err := uc.categoryRepo.GetByID(categoryID)
		if err != nil {
			return err
		}
		if cat == nil {
			return fmt.Errorf("%w: la categoría %s no existe", domain.ErrNotFound, categoryID)
		}
	}
	if supplierID != "" {
		sup, err := uc.supplierRepo.GetByID(supplierID)
		if err != nil {
			return err
		}
		if sup == nil {
			return fmt.Errorf("%w: el proveedor %s no existe", domain.ErrNotFound, supplierID)
		}
	}
	return nil
}

func validatePricing(purchase, sale decimal.Decimal) error {
	if purchase.IsNegative() {
		return fmt.Errorf("%w: el precio de compra no puede ser negativo", domain.ErrInvalidInput)
	}
	if sale.IsNegative() {
		return fmt.Errorf("%w: el precio de venta no puede ser negativo", domain.ErrInvalidInput)
	}
	if sale.LessThan(purchase) {
		return fmt.Errorf("%w: el precio de venta no puede ser menor al precio de compra", domain.ErrInvalidInput)
	}
	return nil
}

func validateThresholds(min, max decimal.Decimal) error {
	if min.IsNegative() || max.IsNegative() {
		return fmt.Errorf("%w: los umbrales de stock no pueden ser negativos", domain.ErrInvalidInput)
	}
	if max.LessThan(min) {
		return fmt.Errorf("%w: el umbral máximo debe ser mayor o igual al mínimo", domain.ErrInvalidInput)
	}
	return nil
}
