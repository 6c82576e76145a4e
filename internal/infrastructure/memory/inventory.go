package memory

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/acampos/almacen-api/internal/domain"
	"github.com/acampos/almacen-api/internal/domain/entity"
	"github.com/acampos/almacen-api/internal/domain/repository"
)

var _ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)
var _ repository.MovementRepository = (*MovementRepo)(nil)

// InventoryRecordRepo implementación en memoria de InventoryRecordRepository.
// El campo tx marca las instancias creadas dentro de una transacción del
// Store, que ya corren bajo el mutex global.
type InventoryRecordRepo struct {
	s  *Store
	tx bool
}

// NewInventoryRecordRepository construye el adaptador fuera de transacción.
func NewInventoryRecordRepository(s *Store) *InventoryRecordRepo {
	return &InventoryRecordRepo{s: s}
}

// Create inserta el registro del par; el par duplicado se mapea a
// ErrAlreadyExists.
func (r *InventoryRecordRepo) Create(record *entity.InventoryRecord) error {
	defer r.s.lock(r.tx)()
	key := recordKey(record.ProductID, record.LocationID)
	if _, ok := r.s.records[key]; ok {
		return fmt.Errorf("%w: registro de inventario %s/%s", domain.ErrAlreadyExists,
			record.ProductID, record.LocationID)
	}
	r.s.records[key] = *record
	return nil
}

// Get devuelve el registro del par, o uno en cero si aún no existe.
func (r *InventoryRecordRepo) Get(productID, locationID string) (*entity.InventoryRecord, error) {
	defer r.s.lock(r.tx)()
	return r.getLocked(productID, locationID), nil
}

// GetForUpdate igual que Get: el mutex global ya serializa.
func (r *InventoryRecordRepo) GetForUpdate(productID, locationID string) (*entity.InventoryRecord, error) {
	return r.Get(productID, locationID)
}

func (r *InventoryRecordRepo) getLocked(productID, locationID string) *entity.InventoryRecord {
	rec, ok := r.s.records[recordKey(productID, locationID)]
	if !ok {
		return &entity.InventoryRecord{
			ProductID:  productID,
			LocationID: locationID,
			Quantity:   decimal.Zero,
		}
	}
	return &rec
}

// Exists indica si el par ya tiene registro.
func (r *InventoryRecordRepo) Exists(productID, locationID string) (bool, error) {
	defer r.s.lock(r.tx)()
	_, ok := r.s.records[recordKey(productID, locationID)]
	return ok, nil
}

// Upsert inserta o reemplaza el registro del par.
func (r *InventoryRecordRepo) Upsert(record *entity.InventoryRecord) error {
	defer r.s.lock(r.tx)()
	r.s.records[recordKey(record.ProductID, record.LocationID)] = *record
	return nil
}

// ListByProduct lista los registros del producto ordenados por ubicación.
func (r *InventoryRecordRepo) ListByProduct(productID string) ([]*entity.InventoryRecord, error) {
	defer r.s.lock(r.tx)()
	var all []entity.InventoryRecord
	for _, rec := range r.s.records {
		if rec.ProductID == productID {
			all = append(all, rec)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LocationID < all[j].LocationID })
	return paginate(all, 0, 0), nil
}

// ListByProductForUpdate igual que ListByProduct.
func (r *InventoryRecordRepo) ListByProductForUpdate(productID string) ([]*entity.InventoryRecord, error) {
	return r.ListByProduct(productID)
}

// ListByLocation lista los registros de una ubicación ordenados por producto.
func (r *InventoryRecordRepo) ListByLocation(locationID string) ([]*entity.InventoryRecord, error) {
	defer r.s.lock(r.tx)()
	var all []entity.InventoryRecord
	for _, rec := range r.s.records {
		if rec.LocationID == locationID {
			all = append(all, rec)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ProductID < all[j].ProductID })
	return paginate(all, 0, 0), nil
}

// SumByProduct devuelve el stock agregado del producto.
func (r *InventoryRecordRepo) SumByProduct(productID string) (decimal.Decimal, error) {
	defer r.s.lock(r.tx)()
	total := decimal.Zero
	for _, rec := range r.s.records {
		if rec.ProductID == productID {
			total = total.Add(rec.Quantity)
		}
	}
	return total, nil
}

// MovementRepo implementación en memoria de MovementRepository.
type MovementRepo struct {
	s  *Store
	tx bool
}

// NewMovementRepository construye el adaptador fuera de transacción.
func NewMovementRepository(s *Store) *MovementRepo {
	return &MovementRepo{s: s}
}

// Create inserta un movimiento en el libro.
func (r *MovementRepo) Create(movement *entity.Movement) error {
	defer r.s.lock(r.tx)()
	r.s.movements = append(r.s.movements, *movement)
	return nil
}

// Query lista movimientos según filtro, del más reciente al más antiguo.
func (r *MovementRepo) Query(filter entity.MovementFilter) ([]*entity.Movement, error) {
	defer r.s.lock(r.tx)()
	var matched []entity.Movement
	for _, m := range r.s.movements {
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.From != nil && m.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.Date.After(*filter.To) {
			continue
		}
		matched = append(matched, m)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, filter.Limit, filter.Offset), nil
}

// Summarize agrega cantidad y conteo por tipo sobre todas las filas que
// cumplen el filtro, ignorando Limit y Offset.
func (r *MovementRepo) Summarize(filter entity.MovementFilter) (*entity.MovementTotals, error) {
	defer r.s.lock(r.tx)()
	totals := &entity.MovementTotals{
		Entradas: decimal.Zero,
		Salidas:  decimal.Zero,
		Ajustes:  decimal.Zero,
	}
	for _, m := range r.s.movements {
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.From != nil && m.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.Date.After(*filter.To) {
			continue
		}
		totals.Count++
		switch m.Type {
		case entity.MovementTypeEntrada, entity.MovementTypeDevolucion:
			totals.Entradas = totals.Entradas.Add(m.Quantity)
		case entity.MovementTypeSalida:
			totals.Salidas = totals.Salidas.Add(m.Quantity)
		case entity.MovementTypeAjuste:
			totals.Ajustes = totals.Ajustes.Add(m.Quantity)
		}
	}
	return totals, nil
}
