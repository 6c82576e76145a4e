package repository

import "github.com/acampos/almacen-api/internal/domain/entity"

// MovementRepository define el puerto de persistencia del libro de
// movimientos. Solo inserta y consulta: las filas son inmutables.
type MovementRepository interface {
	Create(movement *entity.Movement) error
	// Query lista movimientos según filtro, del más reciente al más antiguo.
	// El caso de uso exige al menos una dimensión de filtro antes de llamar.
	Query(filter entity.MovementFilter) ([]*entity.Movement, error)
	// Summarize agrega cantidad y conteo por tipo sobre TODAS las filas que
	// cumplen el filtro; Limit y Offset se ignoran.
	Summarize(filter entity.MovementFilter) (*entity.MovementTotals, error)
}
