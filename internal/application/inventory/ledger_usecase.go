package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/domain"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/domain/repository"
)

// maxReasonLength longitud máxima del motivo de un movimiento.
const maxReasonLength = 255

// LedgerUseCase es el único punto de mutación de stock del sistema. Aplica la
// semántica por tipo (entrada, salida, ajuste, devolucion, transferencia),
// garantiza cantidad >= 0 en cada registro dentro de la transacción y deja
// una fila inmutable en el libro de movimientos por cada ubicación afectada.
type LedgerUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	recordRepo   repository.InventoryRecordRepository
	movementRepo repository.MovementRepository

	// receivingLocationID ubicación de recepción por defecto cuando el
	// movimiento no especifica ubicación.
	receivingLocationID string
	now                 domain.Clock
}

// NewLedgerUseCase construye el caso de uso. recordRepo y movementRepo se usan
// solo para lecturas; toda mutación pasa por los repos atados a la tx.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	recordRepo repository.InventoryRecordRepository,
	movementRepo repository.MovementRepository,
	receivingLocationID string,
	now domain.Clock,
) *LedgerUseCase {
	if now == nil {
		now = time.Now
	}
	return &LedgerUseCase{
		txRunner:            txRunner,
		productRepo:         productRepo,
		locationRepo:        locationRepo,
		recordRepo:          recordRepo,
		movementRepo:        movementRepo,
		receivingLocationID: receivingLocationID,
		now:                 now,
	}
}

// MovementInput entrada para PostMovement.
// Para entrada/salida/ajuste/devolucion: ProductID, LocationID (vacío = ubicación
// de recepción), Quantity, Actor, Reason. Para transferencia: LocationID es el
// origen y ToLocationID el destino. En ajuste, Quantity es el delta con signo.
// MultiLocation habilita salidas multi-ubicación cuando no se indica ubicación.
type MovementInput struct {
	Type          string
	ProductID     string
	LocationID    string
	ToLocationID  string
	Quantity      decimal.Decimal
	MultiLocation bool
	Actor         string
	Reason        string
}

// PostMovement valida, abre una transacción, bloquea los registros afectados
// (SELECT FOR UPDATE) y aplica el movimiento. Devuelve las filas del libro
// creadas; ante cualquier error no queda ningún cambio parcial.
func (uc *LedgerUseCase) PostMovement(ctx context.Context, in MovementInput) ([]*entity.Movement, error) {
	if err := uc.validateInput(&in); err != nil {
		return nil, err
	}

	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}
	if err := uc.checkLocations(in); err != nil {
		return nil, err
	}

	nowTs := uc.now()
	txID := uuid.New().String()

	var created []*entity.Movement
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		recordRepo repository.InventoryRecordRepository,
	) error {
		var err error
		switch in.Type {
		case entity.MovementTypeEntrada, entity.MovementTypeDevolucion:
			created, err = uc.doEntrada(movRepo, recordRepo, in, nowTs, txID)
		case entity.MovementTypeSalida:
			created, err = uc.doSalida(movRepo, recordRepo, in, nowTs, txID)
		case entity.MovementTypeAjuste:
			created, err = uc.doAjuste(movRepo, recordRepo, in, nowTs, txID)
		case entity.MovementTypeTransferencia:
			created, err = uc.doTransferencia(movRepo, recordRepo, in, nowTs, txID)
		default:
			err = domain.ErrInvalidInput
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (uc *LedgerUseCase) validateInput(in *MovementInput) error {
	if !entity.ValidMovementType(in.Type) {
		return fmt.Errorf("%w: tipo de movimiento inválido, permitidos: %s",
			domain.ErrInvalidInput, strings.Join(entity.MovementTypes, ", "))
	}
	if in.ProductID == "" {
		return fmt.Errorf("%w: id de producto requerido", domain.ErrInvalidInput)
	}
	if in.Actor == "" {
		return fmt.Errorf("%w: actor requerido", domain.ErrInvalidInput)
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Reason == "" {
		return fmt.Errorf("%w: el motivo del movimiento es requerido", domain.ErrInvalidInput)
	}
	if len(in.Reason) > maxReasonLength {
		return fmt.Errorf("%w: el motivo supera los %d caracteres", domain.ErrInvalidInput, maxReasonLength)
	}

	switch in.Type {
	case entity.MovementTypeAjuste:
		// El ajuste es un delta con signo y exige ubicación concreta o de recepción.
		if in.Quantity.IsZero() {
			return fmt.Errorf("%w: el ajuste debe ser diferente de 0", domain.ErrInvalidInput)
		}
	case entity.MovementTypeTransferencia:
		if in.LocationID == "" || in.ToLocationID == "" {
			return fmt.Errorf("%w: transferencia requiere ubicación origen y destino", domain.ErrInvalidInput)
		}
		if in.LocationID == in.ToLocationID {
			return fmt.Errorf("%w: origen y destino no pueden ser la misma ubicación", domain.ErrInvalidInput)
		}
		if !in.Quantity.GreaterThan(decimal.Zero) {
			return fmt.Errorf("%w: la cantidad debe ser mayor a 0", domain.ErrInvalidInput)
		}
	default:
		if !in.Quantity.GreaterThan(decimal.Zero) {
			return fmt.Errorf("%w: la cantidad debe ser mayor a 0", domain.ErrInvalidInput)
		}
	}

	if in.LocationID == "" && in.Type != entity.MovementTypeTransferencia {
		if uc.receivingLocationID == "" {
			return fmt.Errorf("%w: no hay ubicación de recepción configurada", domain.ErrInvalidInput)
		}
	}
	return nil
}

func (uc *LedgerUseCase) checkLocations(in MovementInput) error {
	ids := []string{}
	if in.LocationID != "" {
		ids = append(ids, in.LocationID)
	} else if in.Type != entity.MovementTypeSalida || !in.MultiLocation {
		ids = append(ids, uc.receivingLocationID)
	}
	if in.Type == entity.MovementTypeTransferencia {
		ids = append(ids, in.ToLocationID)
	}
	for _, id := range ids {
		loc, err := uc.locationRepo.GetByID(id)
		if err != nil {
			return err
		}
		if loc == nil {
			return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
		}
		if !loc.Active {
			return fmt.Errorf("%w: la ubicación %s está desactivada", domain.ErrInvalidInput, loc.Code)
		}
	}
	return nil
}

// doEntrada suma la cantidad en la ubicación indicada (o la de recepción),
// creando el registro si es el primer abastecimiento del par.
func (uc *LedgerUseCase) doEntrada(
	movRepo repository.MovementRepository,
	recordRepo repository.InventoryRecordRepository,
	in MovementInput,
	nowTs time.Time, txID string,
) ([]*entity.Movement, error) {
	locationID := in.LocationID
	if locationID == "" {
		locationID = uc.receivingLocationID
	}
	record, err := recordRepo.GetForUpdate(in.ProductID, locationID)
	if err != nil {
		return nil, err
	}
	record.Quantity = record.Quantity.Add(in.Quantity)
	record.UpdatedAt = nowTs
	if err := recordRepo.Upsert(record); err != nil {
		return nil, err
	}
	mov := uc.buildMovement(in, locationID, in.Quantity, nowTs, txID)
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return []*entity.Movement{mov}, nil
}

// doSalida resta stock. Con ubicación: esa fila debe cubrir la cantidad. Sin
// ubicación: primero se verifica el stock agregado del producto y luego se
// descuenta de la ubicación de recepción, o de varias ubicaciones (de mayor a
// menor saldo) si el llamador lo pidió explícitamente con MultiLocation.
func (uc *LedgerUseCase) doSalida(
	movRepo repository.MovementRepository,
	recordRepo repository.InventoryRecordRepository,
	in MovementInput,
	nowTs time.Time, txID string,
) ([]*entity.Movement, error) {
	if in.LocationID != "" {
		record, err := recordRepo.GetForUpdate(in.ProductID, in.LocationID)
		if err != nil {
			return nil, err
		}
		if record.Quantity.LessThan(in.Quantity) {
			return nil, &domain.InsufficientStockError{
				ProductID:  in.ProductID,
				LocationID: in.LocationID,
				Available:  record.Quantity,
				Requested:  in.Quantity,
			}
		}
		record.Quantity = record.Quantity.Sub(in.Quantity)
		record.UpdatedAt = nowTs
		if err := recordRepo.Upsert(record); err != nil {
			return nil, err
		}
		mov := uc.buildMovement(in, in.LocationID, in.Quantity.Neg(), nowTs, txID)
		if err := movRepo.Create(mov); err != nil {
			return nil, err
		}
		return []*entity.Movement{mov}, nil
	}

	// Sin ubicación: bloquear todas las filas del producto y verificar agregado.
	records, err := recordRepo.ListByProductForUpdate(in.ProductID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Quantity)
	}
	if total.LessThan(in.Quantity) {
		return nil, &domain.InsufficientStockError{
			ProductID: in.ProductID,
			Available: total,
			Requested: in.Quantity,
		}
	}

	if !in.MultiLocation {
		// Descontar solo de la ubicación de recepción.
		var receiving *entity.InventoryRecord
		for _, r := range records {
			if r.LocationID == uc.receivingLocationID {
				receiving = r
				break
			}
		}
		if receiving == nil || receiving.Quantity.LessThan(in.Quantity) {
			available := decimal.Zero
			if receiving != nil {
				available = receiving.Quantity
			}
			return nil, &domain.InsufficientStockError{
				ProductID:  in.ProductID,
				LocationID: uc.receivingLocationID,
				Available:  available,
				Requested:  in.Quantity,
			}
		}
		receiving.Quantity = receiving.Quantity.Sub(in.Quantity)
		receiving.UpdatedAt = nowTs
		if err := recordRepo.Upsert(receiving); err != nil {
			return nil, err
		}
		mov := uc.buildMovement(in, uc.receivingLocationID, in.Quantity.Neg(), nowTs, txID)
		if err := movRepo.Create(mov); err != nil {
			return nil, err
		}
		return []*entity.Movement{mov}, nil
	}

	// Sourcing multi-ubicación: de mayor a menor saldo, sin fraccionar de más.
	sort.Slice(records, func(i, j int) bool {
		return records[i].Quantity.GreaterThan(records[j].Quantity)
	})
	remaining := in.Quantity
	var created []*entity.Movement
	for _, r := range records {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		if !r.Quantity.GreaterThan(decimal.Zero) {
			continue
		}
		take := decimal.Min(r.Quantity, remaining)
		r.Quantity = r.Quantity.Sub(take)
		r.UpdatedAt = nowTs
		if err := recordRepo.Upsert(r); err != nil {
			return nil, err
		}
		mov := uc.buildMovement(in, r.LocationID, take.Neg(), nowTs, txID)
		if err := movRepo.Create(mov); err != nil {
			return nil, err
		}
		created = append(created, mov)
		remaining = remaining.Sub(take)
	}
	return created, nil
}

// doAjuste aplica un delta con signo sobre el registro; rechaza resultados
// negativos.
func (uc *LedgerUseCase) doAjuste(
	movRepo repository.MovementRepository,
	recordRepo repository.InventoryRecordRepository,
	in MovementInput,
	nowTs time.Time, txID string,
) ([]*entity.Movement, error) {
	locationID := in.LocationID
	if locationID == "" {
		locationID = uc.receivingLocationID
	}
	record, err := recordRepo.GetForUpdate(in.ProductID, locationID)
	if err != nil {
		return nil, err
	}
	newQty := record.Quantity.Add(in.Quantity)
	if newQty.IsNegative() {
		return nil, &domain.NegativeStockError{
			ProductID:  in.ProductID,
			LocationID: locationID,
			Current:    record.Quantity,
			Delta:      in.Quantity,
		}
	}
	record.Quantity = newQty
	record.UpdatedAt = nowTs
	if err := recordRepo.Upsert(record); err != nil {
		return nil, err
	}
	mov := uc.buildMovement(in, locationID, in.Quantity, nowTs, txID)
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return []*entity.Movement{mov}, nil
}

// doTransferencia mueve cantidad entre dos ubicaciones en una sola
// transacción: dos filas del libro con el mismo TransactionID, negativa en
// origen y positiva en destino.
func (uc *LedgerUseCase) doTransferencia(
	movRepo repository.MovementRepository,
	recordRepo repository.InventoryRecordRepository,
	in MovementInput,
	nowTs time.Time, txID string,
) ([]*entity.Movement, error) {
	origin, err := recordRepo.GetForUpdate(in.ProductID, in.LocationID)
	if err != nil {
		return nil, err
	}
	if origin.Quantity.LessThan(in.Quantity) {
		return nil, &domain.InsufficientStockError{
			ProductID:  in.ProductID,
			LocationID: in.LocationID,
			Available:  origin.Quantity,
			Requested:  in.Quantity,
		}
	}
	dest, err := recordRepo.GetForUpdate(in.ProductID, in.ToLocationID)
	if err != nil {
		return nil, err
	}

	origin.Quantity = origin.Quantity.Sub(in.Quantity)
	dest.Quantity = dest.Quantity.Add(in.Quantity)
	origin.UpdatedAt = nowTs
	dest.UpdatedAt = nowTs
	if err := recordRepo.Upsert(origin); err != nil {
		return nil, err
	}
	if err := recordRepo.Upsert(dest); err != nil {
		return nil, err
	}

	outMov := uc.buildMovement(in, in.LocationID, in.Quantity.Neg(), nowTs, txID)
	if err := movRepo.Create(outMov); err != nil {
		return nil, err
	}
	inMov := uc.buildMovement(in, in.ToLocationID, in.Quantity, nowTs, txID)
	if err := movRepo.Create(inMov); err != nil {
		return nil, err
	}
	return []*entity.Movement{outMov, inMov}, nil
}

func (uc *LedgerUseCase) buildMovement(in MovementInput, locationID string, qty decimal.Decimal, nowTs time.Time, txID string) *entity.Movement {
	return &entity.Movement{
		ID:            uuid.New().String(),
		TransactionID: txID,
		ProductID:     in.ProductID,
		LocationID:    locationID,
		Type:          in.Type,
		Quantity:      qty,
		Reason:        in.Reason,
		CreatedBy:     in.Actor,
		Date:          nowTs,
		CreatedAt:     nowTs,
	}
}
