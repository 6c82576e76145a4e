package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/domain/entity"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Barcode       string          `json:"barcode"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	CategoryID    string          `json:"category_id,omitempty"`
	SupplierID    string          `json:"supplier_id,omitempty"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	StockMin      decimal.Decimal `json:"stock_min"`
	StockMax      decimal.Decimal `json:"stock_max"`
}

// UpdateProductRequest body para PUT /api/products/:id.
// La identidad (id, barcode) no se puede cambiar.
type UpdateProductRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	CategoryID    string          `json:"category_id,omitempty"`
	SupplierID    string          `json:"supplier_id,omitempty"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	StockMin      decimal.Decimal `json:"stock_min"`
	StockMax      decimal.Decimal `json:"stock_max"`
}

// ProductResponse representación HTTP de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	Barcode       string          `json:"barcode"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	CategoryID    string          `json:"category_id,omitempty"`
	SupplierID    string          `json:"supplier_id,omitempty"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	StockMin      decimal.Decimal `json:"stock_min"`
	StockMax      decimal.Decimal `json:"stock_max"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// FromProduct convierte la entidad a su representación HTTP.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Barcode:       p.Barcode,
		Name:          p.Name,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		SupplierID:    p.SupplierID,
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		StockMin:      p.StockMin,
		StockMax:      p.StockMax,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// FromProducts convierte una lista de productos.
func FromProducts(list []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, FromProduct(p))
	}
	return out
}

// CreateWarehouseRequest body para POST /api/warehouses.
type CreateWarehouseRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address,omitempty"`
	Responsible string `json:"responsible,omitempty"`
}

// WarehouseResponse representación HTTP de un almacén.
type WarehouseResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address,omitempty"`
	Responsible string    `json:"responsible,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FromWarehouse convierte la entidad a su representación HTTP.
func FromWarehouse(w *entity.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:          w.ID,
		Name:        w.Name,
		Address:     w.Address,
		Responsible: w.Responsible,
		CreatedAt:   w.CreatedAt,
	}
}

// CreateLocationRequest body para POST /api/warehouses/:id/locations.
type CreateLocationRequest struct {
	Code        string           `json:"code"`
	Kind        string           `json:"kind"`
	Description string           `json:"description,omitempty"`
	Capacity    *decimal.Decimal `json:"capacity,omitempty"`
}

// LocationResponse representación HTTP de una ubicación.
type LocationResponse struct {
	ID          string           `json:"id"`
	WarehouseID string           `json:"warehouse_id"`
	Code        string           `json:"code"`
	Kind        string           `json:"kind"`
	Description string           `json:"description,omitempty"`
	Capacity    *decimal.Decimal `json:"capacity,omitempty"`
	Active      bool             `json:"active"`
	CreatedAt   time.Time        `json:"created_at"`
}

// FromLocation convierte la entidad a su representación HTTP.
func FromLocation(l *entity.Location) LocationResponse {
	return LocationResponse{
		ID:          l.ID,
		WarehouseID: l.WarehouseID,
		Code:        l.Code,
		Kind:        l.Kind,
		Description: l.Description,
		Capacity:    l.Capacity,
		Active:      l.Active,
		CreatedAt:   l.CreatedAt,
	}
}

// CreateCategoryRequest body para POST /api/categories.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CategoryResponse representación HTTP de una categoría.
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// FromCategory convierte la entidad a su representación HTTP.
func FromCategory(c *entity.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

// CreateSupplierRequest body para POST /api/suppliers.
type CreateSupplierRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// SupplierResponse representación HTTP de un proveedor.
type SupplierResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Active  bool   `json:"active"`
}

// FromSupplier convierte la entidad a su representación HTTP.
func FromSupplier(s *entity.Supplier) SupplierResponse {
	return SupplierResponse{
		ID: s.ID, Name: s.Name, Contact: s.Contact,
		Phone: s.Phone, Email: s.Email, Active: s.Active,
	}
}

// FromLocations convierte una lista de ubicaciones.
func FromLocations(list []*entity.Location) []LocationResponse {
	out := make([]LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, FromLocation(l))
	}
	return out
}
