package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/domain"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/domain/repository"
)

// LocationQuantity cantidad de un producto en una ubicación.
type LocationQuantity struct {
	LocationID string
	Quantity   decimal.Decimal
}

// ProductQuantity cantidad de un producto dentro de una ubicación.
type ProductQuantity struct {
	ProductID string
	Quantity  decimal.Decimal
}

// StockSummary stock de un producto agregado por ubicación.
type StockSummary struct {
	ProductID   string
	PerLocation []LocationQuantity
	Total       decimal.Decimal
	// Locations y WithStock replican el resumen del consultor original:
	// ubicaciones registradas y cuántas tienen cantidad > 0.
	Locations int
	WithStock int
}

// LocationContents productos almacenados en una ubicación.
type LocationContents struct {
	LocationID string
	PerProduct []ProductQuantity
	Total      decimal.Decimal
}

// Availability resultado de una verificación de disponibilidad.
type Availability struct {
	Available bool
	Current   decimal.Decimal
	Requested decimal.Decimal
	Diff      decimal.Decimal
}

// MovementSummary resumen por tipo al consultar movimientos de un producto,
// agregado sobre todas las filas que cumplen el filtro (no sobre la página).
// Saldo = entradas (entrada+devolucion) - salidas + ajustes.
type MovementSummary struct {
	TotalEntradas decimal.Decimal
	TotalSalidas  decimal.Decimal
	TotalAjustes  decimal.Decimal
	Saldo         decimal.Decimal
	Count         int
}

// EnsureRecord crea explícitamente el registro único (producto, ubicación)
// con la cantidad inicial. Falla con domain.ErrAlreadyExists si el par ya
// tiene registro: el primer abastecimiento explícito no es idempotente.
// Si initialQty > 0 se asienta además una entrada en el libro para que la
// conciliación movimientos-vs-stock cierre.
func (uc *LedgerUseCase) EnsureRecord(ctx context.Context, productID, locationID string, initialQty decimal.Decimal, actor string) error {
	if productID == "" || locationID == "" {
		return fmt.Errorf("%w: producto y ubicación son requeridos", domain.ErrInvalidInput)
	}
	if initialQty.IsNegative() {
		return fmt.Errorf("%w: la cantidad inicial debe ser mayor o igual a 0", domain.ErrInvalidInput)
	}
	if actor == "" {
		return fmt.Errorf("%w: actor requerido", domain.ErrInvalidInput)
	}
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	location, err := uc.locationRepo.GetByID(locationID)
	if err != nil {
		return err
	}
	if location == nil {
		return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, locationID)
	}

	exists, err := uc.recordRepo.Exists(productID, locationID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: el producto ya está registrado en esta ubicación", domain.ErrAlreadyExists)
	}

	nowTs := uc.now()
	return uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		recordRepo repository.InventoryRecordRepository,
	) error {
		// Create re-verifica unicidad dentro de la tx (la violación se mapea
		// a ErrAlreadyExists), cerrando la ventana entre chequeo y escritura.
		record := &entity.InventoryRecord{
			ProductID:  productID,
			LocationID: locationID,
			Quantity:   initialQty,
			UpdatedAt:  nowTs,
		}
		if err := recordRepo.Create(record); err != nil {
			return err
		}
		if initialQty.IsZero() {
			return nil
		}
		return movRepo.Create(&entity.Movement{
			ID:            uuid.New().String(),
			TransactionID: uuid.New().String(),
			ProductID:     productID,
			LocationID:    locationID,
			Type:          entity.MovementTypeEntrada,
			Quantity:      initialQty,
			Reason:        "registro inicial de producto en ubicación",
			CreatedBy:     actor,
			Date:          nowTs,
			CreatedAt:     nowTs,
		})
	})
}

// GetStock devuelve el stock de un producto por ubicación y el total agregado.
func (uc *LedgerUseCase) GetStock(ctx context.Context, productID string) (*StockSummary, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: id de producto requerido", domain.ErrInvalidInput)
	}
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	records, err := uc.recordRepo.ListByProduct(productID)
	if err != nil {
		return nil, err
	}
	summary := &StockSummary{ProductID: productID, Total: decimal.Zero}
	for _, r := range records {
		summary.PerLocation = append(summary.PerLocation, LocationQuantity{
			LocationID: r.LocationID,
			Quantity:   r.Quantity,
		})
		summary.Total = summary.Total.Add(r.Quantity)
		summary.Locations++
		if r.Quantity.GreaterThan(decimal.Zero) {
			summary.WithStock++
		}
	}
	return summary, nil
}

// GetLocationContents devuelve los productos de una ubicación y la cantidad total.
func (uc *LedgerUseCase) GetLocationContents(ctx context.Context, locationID string) (*LocationContents, error) {
	if locationID == "" {
		return nil, fmt.Errorf("%w: id de ubicación requerido", domain.ErrInvalidInput)
	}
	location, err := uc.locationRepo.GetByID(locationID)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, locationID)
	}
	records, err := uc.recordRepo.ListByLocation(locationID)
	if err != nil {
		return nil, err
	}
	contents := &LocationContents{LocationID: locationID, Total: decimal.Zero}
	for _, r := range records {
		contents.PerProduct = append(contents.PerProduct, ProductQuantity{
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
		})
		contents.Total = contents.Total.Add(r.Quantity)
	}
	return contents, nil
}

// CheckAvailability verifica si el stock agregado cubre la cantidad requerida.
func (uc *LedgerUseCase) CheckAvailability(ctx context.Context, productID string, required decimal.Decimal) (*Availability, error) {
	if !required.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: la cantidad requerida debe ser mayor a 0", domain.ErrInvalidInput)
	}
	summary, err := uc.GetStock(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &Availability{
		Available: summary.Total.GreaterThanOrEqual(required),
		Current:   summary.Total,
		Requested: required,
		Diff:      summary.Total.Sub(required),
	}, nil
}

// QueryMovements consulta el libro de movimientos, del más reciente al más
// antiguo. Exige al menos una dimensión de filtro: el contrato prohíbe el
// escaneo completo de la tabla. Cuando se filtra por producto incluye el
// resumen por tipo.
func (uc *LedgerUseCase) QueryMovements(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, *MovementSummary, error) {
	if filter.Empty() {
		return nil, nil, fmt.Errorf("%w: debe especificar al menos un filtro (producto, rango de fechas o tipo)", domain.ErrInvalidInput)
	}
	if filter.Type != "" && !entity.ValidMovementType(filter.Type) {
		return nil, nil, fmt.Errorf("%w: tipo de movimiento inválido, permitidos: %s",
			domain.ErrInvalidInput, strings.Join(entity.MovementTypes, ", "))
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, nil, fmt.Errorf("%w: la fecha de inicio no puede ser mayor a la fecha fin", domain.ErrInvalidInput)
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	movements, err := uc.movementRepo.Query(filter)
	if err != nil {
		return nil, nil, err
	}

	if filter.ProductID == "" {
		return movements, nil, nil
	}
	// El resumen se agrega sobre todas las filas que cumplen el filtro, no
	// sobre la página devuelta: el saldo debe cuadrar con el stock real
	// aunque el producto tenga más movimientos que el límite.
	totals, err := uc.movementRepo.Summarize(filter)
	if err != nil {
		return nil, nil, err
	}
	summary := &MovementSummary{
		TotalEntradas: totals.Entradas,
		TotalSalidas:  totals.Salidas.Neg(),
		TotalAjustes:  totals.Ajustes,
		Saldo:         totals.Entradas.Add(totals.Salidas).Add(totals.Ajustes),
		Count:         totals.Count,
	}
	return movements, summary, nil
}
