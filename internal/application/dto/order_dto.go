package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/application/orders"
	"github.com/acampos/almacen-api/internal/application/replenishment"
	"github.com/acampos/almacen-api/internal/domain/entity"
)

// OrderLineRequest línea de una orden. Si subtotal viene en cero se calcula
// como cantidad * precio unitario.
type OrderLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal,omitempty"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	SupplierID string             `json:"supplier_id"`
	Lines      []OrderLineRequest `json:"lines"`
}

// TransitionRequest body para POST /api/orders/:id/transition.
type TransitionRequest struct {
	NewStatus           string `json:"new_status"`
	Reason              string `json:"reason,omitempty"`
	ReceivingLocationID string `json:"receiving_location_id,omitempty"`
}

// OrderResponse representación HTTP de una orden de compra.
type OrderResponse struct {
	ID           string          `json:"id"`
	SupplierID   string          `json:"supplier_id"`
	Status       string          `json:"status"`
	Total        decimal.Decimal `json:"total"`
	CancelReason string          `json:"cancel_reason,omitempty"`
	CreatedBy    string          `json:"created_by"`
	OrderDate    time.Time       `json:"order_date"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// FromOrder convierte la entidad a su representación HTTP.
func FromOrder(o *entity.PurchaseOrder) OrderResponse {
	return OrderResponse{
		ID:           o.ID,
		SupplierID:   o.SupplierID,
		Status:       o.Status,
		Total:        o.Total,
		CancelReason: o.CancelReason,
		CreatedBy:    o.CreatedBy,
		OrderDate:    o.OrderDate,
		UpdatedAt:    o.UpdatedAt,
	}
}

// OrderLineResponse representación HTTP de una línea.
type OrderLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderDetailResponse orden con líneas y total calculado.
type OrderDetailResponse struct {
	Order         OrderResponse       `json:"order"`
	Lines         []OrderLineResponse `json:"lines"`
	ComputedTotal decimal.Decimal     `json:"computed_total"`
	ItemCount     int                 `json:"item_count"`
}

// FromOrderDetail convierte el detalle del caso de uso.
func FromOrderDetail(d *orders.OrderDetail) OrderDetailResponse {
	lines := make([]OrderLineResponse, 0, len(d.Lines))
	for _, li := range d.Lines {
		lines = append(lines, OrderLineResponse{
			ID:        li.ID,
			ProductID: li.ProductID,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			Subtotal:  li.Subtotal,
		})
	}
	return OrderDetailResponse{
		Order:         FromOrder(d.Order),
		Lines:         lines,
		ComputedTotal: d.ComputedTotal,
		ItemCount:     d.ItemCount,
	}
}

// StatusSummaryDTO conteo y monto por estado.
type StatusSummaryDTO struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// OrderListResponse listado de órdenes con resumen por estado.
type OrderListResponse struct {
	Orders      []OrderResponse             `json:"orders"`
	TotalOrders int                         `json:"total_orders"`
	TotalAmount decimal.Decimal             `json:"total_amount"`
	ByStatus    map[string]StatusSummaryDTO `json:"by_status"`
}

// FromOrderList convierte el listado del caso de uso.
func FromOrderList(l *orders.OrderList) OrderListResponse {
	out := OrderListResponse{
		Orders:      make([]OrderResponse, 0, len(l.Orders)),
		TotalOrders: l.TotalOrders,
		TotalAmount: l.TotalAmount,
		ByStatus:    make(map[string]StatusSummaryDTO, len(l.ByStatus)),
	}
	for _, o := range l.Orders {
		out.Orders = append(out.Orders, FromOrder(o))
	}
	for status, s := range l.ByStatus {
		out.ByStatus[status] = StatusSummaryDTO{Count: s.Count, Amount: s.Amount}
	}
	return out
}

// ReplenishmentSuggestionDTO producto bajo mínimo con cantidad sugerida.
type ReplenishmentSuggestionDTO struct {
	ProductID         string          `json:"product_id"`
	Barcode           string          `json:"barcode"`
	Name              string          `json:"name"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	StockMin          decimal.Decimal `json:"stock_min"`
	StockMax          decimal.Decimal `json:"stock_max"`
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"`
	Deficit           decimal.Decimal `json:"deficit"`
}

// FromSuggestions convierte el reporte de reposición.
func FromSuggestions(list []replenishment.Suggestion) []ReplenishmentSuggestionDTO {
	out := make([]ReplenishmentSuggestionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, ReplenishmentSuggestionDTO{
			ProductID:         s.ProductID,
			Barcode:           s.Barcode,
			Name:              s.Name,
			CurrentStock:      s.CurrentStock,
			StockMin:          s.StockMin,
			StockMax:          s.StockMax,
			SuggestedOrderQty: s.SuggestedOrderQty,
			Deficit:           s.Deficit,
		})
	}
	return out
}
