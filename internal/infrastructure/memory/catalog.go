package memory

import (
	"fmt"
	"sort"

	"github.com/acampos/almacen-api/internal/domain"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)
var _ repository.CategoryRepository = (*CategoryRepo)(nil)
var _ repository.SupplierRepository = (*SupplierRepo)(nil)
var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)
var _ repository.LocationRepository = (*LocationRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	s *Store
}

// NewProductRepository construye el adaptador.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

// Create inserta un producto; el código de barras duplicado se mapea a
// ErrAlreadyExists, como la restricción UNIQUE de la base de datos real.
func (r *ProductRepo) Create(product *entity.Product) error {
	defer r.s.lock(false)()
	for _, p := range r.s.products {
		if p.Barcode == product.Barcode {
			return fmt.Errorf("%w: código de barras %s", domain.ErrAlreadyExists, product.Barcode)
		}
	}
	r.s.products[product.ID] = *product
	return nil
}

// GetByID obtiene un producto; nil si no existe.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	defer r.s.lock(false)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetByBarcode obtiene un producto por código de barras; nil si no existe.
func (r *ProductRepo) GetByBarcode(barcode string) (*entity.Product, error) {
	defer r.s.lock(false)()
	for _, p := range r.s.products {
		if p.Barcode == barcode {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

// Update persiste los campos mutables del producto.
func (r *ProductRepo) Update(product *entity.Product) error {
	defer r.s.lock(false)()
	if _, ok := r.s.products[product.ID]; !ok {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, product.ID)
	}
	r.s.products[product.ID] = *product
	return nil
}

// List lista productos por nombre con paginación.
func (r *ProductRepo) List(activeOnly bool, limit, offset int) ([]*entity.Product, error) {
	defer r.s.lock(false)()
	var all []entity.Product
	for _, p := range r.s.products {
		if activeOnly && !p.Active {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, limit, offset), nil
}

func paginate[T any](items []T, limit, offset int) []*T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}

// CategoryRepo implementación en memoria de CategoryRepository.
type CategoryRepo struct {
	s *Store
}

// NewCategoryRepository construye el adaptador.
func NewCategoryRepository(s *Store) *CategoryRepo {
	return &CategoryRepo{s: s}
}

func (r *CategoryRepo) Create(category *entity.Category) error {
	defer r.s.lock(false)()
	r.s.categories[category.ID] = *category
	return nil
}

func (r *CategoryRepo) GetByID(id string) (*entity.Category, error) {
	defer r.s.lock(false)()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CategoryRepo) List() ([]*entity.Category, error) {
	defer r.s.lock(false)()
	var all []entity.Category
	for _, c := range r.s.categories {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, 0, 0), nil
}

// SupplierRepo implementación en memoria de SupplierRepository.
type SupplierRepo struct {
	s *Store
}

// NewSupplierRepository construye el adaptador.
func NewSupplierRepository(s *Store) *SupplierRepo {
	return &SupplierRepo{s: s}
}

func (r *SupplierRepo) Create(supplier *entity.Supplier) error {
	defer r.s.lock(false)()
	r.s.suppliers[supplier.ID] = *supplier
	return nil
}

func (r *SupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	defer r.s.lock(false)()
	s, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SupplierRepo) List() ([]*entity.Supplier, error) {
	defer r.s.lock(false)()
	var all []entity.Supplier
	for _, s := range r.s.suppliers {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, 0, 0), nil
}

// WarehouseRepo implementación en memoria de WarehouseRepository.
type WarehouseRepo struct {
	s *Store
}

// NewWarehouseRepository construye el adaptador.
func NewWarehouseRepository(s *Store) *WarehouseRepo {
	return &WarehouseRepo{s: s}
}

func (r *WarehouseRepo) Create(warehouse *entity.Warehouse) error {
	defer r.s.lock(false)()
	r.s.warehouses[warehouse.ID] = *warehouse
	return nil
}

func (r *WarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	defer r.s.lock(false)()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *WarehouseRepo) List() ([]*entity.Warehouse, error) {
	defer r.s.lock(false)()
	var all []entity.Warehouse
	for _, w := range r.s.warehouses {
		all = append(all, w)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, 0, 0), nil
}

// LocationRepo implementación en memoria de LocationRepository.
type LocationRepo struct {
	s *Store
}

// NewLocationRepository construye el adaptador.
func NewLocationRepository(s *Store) *LocationRepo {
	return &LocationRepo{s: s}
}

// Create inserta una ubicación; el código duplicado por almacén se mapea a
// ErrAlreadyExists.
func (r *LocationRepo) Create(location *entity.Location) error {
	defer r.s.lock(false)()
	for _, l := range r.s.locations {
		if l.WarehouseID == location.WarehouseID && l.Code == location.Code {
			return fmt.Errorf("%w: ubicación %s en almacén %s", domain.ErrAlreadyExists,
				location.Code, location.WarehouseID)
		}
	}
	r.s.locations[location.ID] = *location
	return nil
}

func (r *LocationRepo) GetByID(id string) (*entity.Location, error) {
	defer r.s.lock(false)()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *LocationRepo) GetByWarehouseAndCode(warehouseID, code string) (*entity.Location, error) {
	defer r.s.lock(false)()
	for _, l := range r.s.locations {
		if l.WarehouseID == warehouseID && l.Code == code {
			cp := l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *LocationRepo) Update(location *entity.Location) error {
	defer r.s.lock(false)()
	if _, ok := r.s.locations[location.ID]; !ok {
		return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, location.ID)
	}
	r.s.locations[location.ID] = *location
	return nil
}

func (r *LocationRepo) ListByWarehouse(warehouseID string) ([]*entity.Location, error) {
	defer r.s.lock(false)()
	var all []entity.Location
	for _, l := range r.s.locations {
		if l.WarehouseID == warehouseID {
			all = append(all, l)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return paginate(all, 0, 0), nil
}
