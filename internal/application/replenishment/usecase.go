package replenishment

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/domain/repository"
)

// UseCase genera el reporte de productos bajo umbral mínimo. Solo lectura:
// combina el stock agregado del libro con los umbrales del catálogo y sugiere
// la cantidad a ordenar (stock_max - actual). No automatiza órdenes.
type UseCase struct {
	productRepo repository.ProductRepository
	recordRepo  repository.InventoryRecordRepository
}

// NewUseCase construye el caso de uso de reposición.
func NewUseCase(productRepo repository.ProductRepository, recordRepo repository.InventoryRecordRepository) *UseCase {
	return &UseCase{productRepo: productRepo, recordRepo: recordRepo}
}

// Suggestion sugerencia de reposición para un producto bajo mínimo.
type Suggestion struct {
	ProductID         string
	Barcode           string
	Name              string
	CurrentStock      decimal.Decimal
	StockMin          decimal.Decimal
	StockMax          decimal.Decimal
	SuggestedOrderQty decimal.Decimal // StockMax - CurrentStock, nunca negativa
	Deficit           decimal.Decimal // StockMin - CurrentStock
}

// LowStockReport devuelve los productos activos con stock agregado por debajo
// de su mínimo, ordenados del déficit mayor al menor.
func (uc *UseCase) LowStockReport(ctx context.Context) ([]Suggestion, error) {
	products, err := uc.productRepo.List(true, 1000, 0)
	if err != nil {
		return nil, err
	}
	suggestions := make([]Suggestion, 0)
	for _, p := range products {
		if p.StockMin.IsZero() {
			continue
		}
		current, err := uc.recordRepo.SumByProduct(p.ID)
		if err != nil {
			return nil, err
		}
		if current.GreaterThanOrEqual(p.StockMin) {
			continue
		}
		suggested := p.StockMax.Sub(current)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		suggestions = append(suggestions, Suggestion{
			ProductID:         p.ID,
			Barcode:           p.Barcode,
			Name:              p.Name,
			CurrentStock:      current,
			StockMin:          p.StockMin,
			StockMax:          p.StockMax,
			SuggestedOrderQty: suggested,
			Deficit:           p.StockMin.Sub(current),
		})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].Deficit.GreaterThan(suggestions[j].Deficit)
	})
	return suggestions, nil
}
