package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/domain"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/domain/repository"
)

// PostEntradaInTx asienta una entrada usando repositorios ya atados a la
// transacción del llamador (la recepción de una orden de compra asienta todas
// sus líneas y el cambio de estado en una sola tx). No abre transacción propia.
func (uc *LedgerUseCase) PostEntradaInTx(
	movRepo repository.MovementRepository,
	recordRepo repository.InventoryRecordRepository,
	productID, locationID, actor, reason string,
	quantity decimal.Decimal,
	nowTs time.Time,
	txID string,
) (*entity.Movement, error) {
	if !quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	record, err := recordRepo.GetForUpdate(productID, locationID)
	if err != nil {
		return nil, err
	}
	record.Quantity = record.Quantity.Add(quantity)
	record.UpdatedAt = nowTs
	if err := recordRepo.Upsert(record); err != nil {
		return nil, err
	}
	mov := &entity.Movement{
		ID:            uuid.New().String(),
		TransactionID: txID,
		ProductID:     productID,
		LocationID:    locationID,
		Type:          entity.MovementTypeEntrada,
		Quantity:      quantity,
		Reason:        reason,
		CreatedBy:     actor,
		Date:          nowTs,
		CreatedAt:     nowTs,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}
