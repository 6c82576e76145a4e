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

// LocationUseCase gestiona almacenes y sus ubicaciones. La desactivación de
// una ubicación exige stock cero en todos sus registros.
type LocationUseCase struct {
	warehouseRepo repository.WarehouseRepository
	locationRepo  repository.LocationRepository
	recordRepo    repository.InventoryRecordRepository
	now           domain.Clock
}

// NewLocationUseCase construye el caso de uso de ubicaciones.
func NewLocationUseCase(
	warehouseRepo repository.WarehouseRepository,
	locationRepo repository.LocationRepository,
	recordRepo repository.InventoryRecordRepository,
	now domain.Clock,
) *LocationUseCase {
	if now == nil {
		now = time.Now
	}
	return &LocationUseCase{
		warehouseRepo: warehouseRepo,
		locationRepo:  locationRepo,
		recordRepo:    recordRepo,
		now:           now,
	}
}

// CreateLocationInput datos para crear una ubicación.
type CreateLocationInput struct {
	WarehouseID string
	Code        string
	Kind        string
	Description string
	Capacity    *decimal.Decimal
}

// CreateLocation valida y crea una ubicación. El código se normaliza a
// mayúsculas y es único dentro del almacén.
func (uc *LocationUseCase) CreateLocation(ctx context.Context, in CreateLocationInput) (*entity.Location, error) {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Kind = strings.ToLower(strings.TrimSpace(in.Kind))
	if in.WarehouseID == "" {
		return nil, fmt.Errorf("%w: id de almacén requerido", domain.ErrInvalidInput)
	}
	if in.Code == "" {
		return nil, fmt.Errorf("%w: el código de ubicación es requerido", domain.ErrInvalidInput)
	}
	if !entity.ValidKind(in.Kind) {
		return nil, fmt.Errorf("%w: tipo de ubicación inválido, permitidos: %s",
			domain.ErrInvalidInput, strings.Join(entity.LocationKinds, ", "))
	}
	if in.Capacity != nil && in.Capacity.IsNegative() {
		return nil, fmt.Errorf("%w: la capacidad no puede ser negativa", domain.ErrInvalidInput)
	}

	warehouse, err := uc.warehouseRepo.GetByID(in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, fmt.Errorf("%w: el almacén %s no existe", domain.ErrNotFound, in.WarehouseID)
	}

	dup, err := uc.locationRepo.GetByWarehouseAndCode(in.WarehouseID, in.Code)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, fmt.Errorf("%w: ya existe la ubicación %s en el almacén", domain.ErrAlreadyExists, in.Code)
	}

	nowTs := uc.now()
	location := &entity.Location{
		ID:          uuid.New().String(),
		WarehouseID: in.WarehouseID,
		Code:        in.Code,
		Kind:        in.Kind,
		Description: strings.TrimSpace(in.Description),
		Capacity:    in.Capacity,
		Active:      true,
		CreatedAt:   nowTs,
		UpdatedAt:   nowTs,
	}
	if err := uc.locationRepo.Create(location); err != nil {
		return nil, err
	}
	return location, nil
}

// GetLocation obtiene una ubicación por ID.
func (uc *LocationUseCase) GetLocation(ctx context.Context, id string) (*entity.Location, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id de ubicación requerido", domain.ErrInvalidInput)
	}
	location, err := uc.locationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
	}
	return location, nil
}

// ListLocations lista las ubicaciones de un almacén.
func (uc *LocationUseCase) ListLocations(ctx context.Context, warehouseID string) ([]*entity.Location, error) {
	if warehouseID == "" {
		return nil, fmt.Errorf("%w: id de almacén requerido", domain.ErrInvalidInput)
	}
	warehouse, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, fmt.Errorf("%w: el almacén %s no existe", domain.ErrNotFound, warehouseID)
	}
	return uc.locationRepo.ListByWarehouse(warehouseID)
}

// DeactivateLocation desactiva una ubicación solo si no tiene stock.
func (uc *LocationUseCase) DeactivateLocation(ctx context.Context, id string) error {
	location, err := uc.GetLocation(ctx, id)
	if err != nil {
		return err
	}
	records, err := uc.recordRepo.ListByLocation(id)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.Quantity.GreaterThan(decimal.Zero) {
			return fmt.Errorf("%w: la ubicación %s todavía tiene stock del producto %s",
				domain.ErrInvalidInput, location.Code, r.ProductID)
		}
	}
	if !location.Active {
		return nil
	}
	location.Active = false
	location.UpdatedAt = uc.now()
	return uc.locationRepo.Update(location)
}

// CreateWarehouseInput datos para crear un almacén.
type CreateWarehouseInput struct {
	Name        string
	Address     string
	Responsible string
}

// CreateWarehouse valida y crea un almacén.
func (uc *LocationUseCase) CreateWarehouse(ctx context.Context, in CreateWarehouseInput) (*entity.Warehouse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: el nombre del almacén es requerido", domain.ErrInvalidInput)
	}
	nowTs := uc.now()
	warehouse := &entity.Warehouse{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Address:     strings.TrimSpace(in.Address),
		Responsible: strings.TrimSpace(in.Responsible),
		CreatedAt:   nowTs,
		UpdatedAt:   nowTs,
	}
	if err := uc.warehouseRepo.Create(warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

// GetWarehouse obtiene un almacén por ID.
func (uc *LocationUseCase) GetWarehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id de almacén requerido", domain.ErrInvalidInput)
	}
	warehouse, err := uc.warehouseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, fmt.Errorf("%w: almacén %s", domain.ErrNotFound, id)
	}
	return warehouse, nil
}
