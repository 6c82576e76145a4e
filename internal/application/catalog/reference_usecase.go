package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/acampos/almacen-api/internal/domain"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/domain/repository"
)

// ReferenceUseCase gestiona los datos de referencia del catálogo: categorías
// y proveedores. Solo alta y listado; los productos y las órdenes los
// referencian por id.
type ReferenceUseCase struct {
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	now          domain.Clock
}

// NewReferenceUseCase construye el caso de uso.
func NewReferenceUseCase(
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	now domain.Clock,
) *ReferenceUseCase {
	if now == nil {
		now = time.Now
	}
	return &ReferenceUseCase{categoryRepo: categoryRepo, supplierRepo: supplierRepo, now: now}
}

// CreateCategory crea una categoría.
func (uc *ReferenceUseCase) CreateCategory(ctx context.Context, name, description string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre de la categoría es requerido", domain.ErrInvalidInput)
	}
	nowTs := uc.now()
	category := &entity.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   nowTs,
		UpdatedAt:   nowTs,
	}
	if err := uc.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories lista las categorías.
func (uc *ReferenceUseCase) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	return uc.categoryRepo.List()
}

// CreateSupplierInput datos para registrar un proveedor.
type CreateSupplierInput struct {
	Name    string
	Contact string
	Phone   string
	Email   string
}

// CreateSupplier crea un proveedor activo.
func (uc *ReferenceUseCase) CreateSupplier(ctx context.Context, in CreateSupplierInput) (*entity.Supplier, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: el nombre del proveedor es requerido", domain.ErrInvalidInput)
	}
	nowTs := uc.now()
	supplier := &entity.Supplier{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Contact:   strings.TrimSpace(in.Contact),
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.TrimSpace(in.Email),
		Active:    true,
		CreatedAt: nowTs,
		UpdatedAt: nowTs,
	}
	if err := uc.supplierRepo.Create(supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// ListSuppliers lista los proveedores.
func (uc *ReferenceUseCase) ListSuppliers(ctx context.Context) ([]*entity.Supplier, error) {
	return uc.supplierRepo.List()
}
