package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/application/inventory"
	"github.com/acampos/almacen-api/internal/domain/entity"
)

// PostMovementRequest body para POST /api/inventory/movements.
// location_id vacío usa la ubicación de recepción por defecto; en
// transferencia, location_id es el origen y to_location_id el destino.
// multi_location permite que una salida sin ubicación consuma de varias.
type PostMovementRequest struct {
	Type          string          `json:"type"`
	ProductID     string          `json:"product_id"`
	LocationID    string          `json:"location_id,omitempty"`
	ToLocationID  string          `json:"to_location_id,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	MultiLocation bool            `json:"multi_location,omitempty"`
	Reason        string          `json:"reason"`
}

// MovementResponse fila del libro de movimientos.
type MovementResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	ProductID     string          `json:"product_id"`
	LocationID    string          `json:"location_id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	Reason        string          `json:"reason"`
	CreatedBy     string          `json:"created_by"`
	Date          time.Time       `json:"date"`
}

// FromMovement convierte la entidad a su representación HTTP.
func FromMovement(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		ProductID:     m.ProductID,
		LocationID:    m.LocationID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		Reason:        m.Reason,
		CreatedBy:     m.CreatedBy,
		Date:          m.Date,
	}
}

// FromMovements convierte una lista de movimientos.
func FromMovements(list []*entity.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromMovement(m))
	}
	return out
}

// EnsureRecordRequest body para POST /api/inventory/records.
type EnsureRecordRequest struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	InitialQty decimal.Decimal `json:"initial_qty"`
}

// LocationQuantityDTO cantidad por ubicación en el resumen de stock.
type LocationQuantityDTO struct {
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// StockSummaryResponse stock agregado de un producto.
type StockSummaryResponse struct {
	ProductID   string                `json:"product_id"`
	PerLocation []LocationQuantityDTO `json:"per_location"`
	Total       decimal.Decimal       `json:"total"`
	Locations   int                   `json:"locations"`
	WithStock   int                   `json:"with_stock"`
}

// FromStockSummary convierte el resumen del caso de uso.
func FromStockSummary(s *inventory.StockSummary) StockSummaryResponse {
	per := make([]LocationQuantityDTO, 0, len(s.PerLocation))
	for _, lq := range s.PerLocation {
		per = append(per, LocationQuantityDTO{LocationID: lq.LocationID, Quantity: lq.Quantity})
	}
	return StockSummaryResponse{
		ProductID:   s.ProductID,
		PerLocation: per,
		Total:       s.Total,
		Locations:   s.Locations,
		WithStock:   s.WithStock,
	}
}

// AvailabilityResponse resultado de la verificación de disponibilidad.
type AvailabilityResponse struct {
	Available bool            `json:"available"`
	Current   decimal.Decimal `json:"current"`
	Requested decimal.Decimal `json:"requested"`
	Diff      decimal.Decimal `json:"diff"`
}

// MovementSummaryResponse resumen por tipo de una consulta de movimientos.
type MovementSummaryResponse struct {
	TotalEntradas decimal.Decimal `json:"total_entradas"`
	TotalSalidas  decimal.Decimal `json:"total_salidas"`
	TotalAjustes  decimal.Decimal `json:"total_ajustes"`
	Saldo         decimal.Decimal `json:"saldo"`
	Count         int             `json:"count"`
}
