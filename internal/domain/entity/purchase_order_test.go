package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acampos/almacen-api/internal/domain/entity"
)

func TestCanTransition(t *testing.T) {
	permitidas := map[[2]string]bool{
		{entity.OrderStatusPendiente, entity.OrderStatusAprobada}:  true,
		{entity.OrderStatusPendiente, entity.OrderStatusCancelada}: true,
		{entity.OrderStatusAprobada, entity.OrderStatusEnviada}:    true,
		{entity.OrderStatusAprobada, entity.OrderStatusCancelada}:  true,
		{entity.OrderStatusEnviada, entity.OrderStatusRecibida}:    true,
		{entity.OrderStatusEnviada, entity.OrderStatusCancelada}:   true,
	}
	for _, from := range entity.OrderStatuses {
		for _, to := range entity.OrderStatuses {
			want := permitidas[[2]string{from, to}]
			assert.Equal(t, want, entity.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition_EstadoDesconocido(t *testing.T) {
	assert.False(t, entity.CanTransition("abierta", entity.OrderStatusAprobada))
	assert.False(t, entity.CanTransition(entity.OrderStatusPendiente, "abierta"))
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range entity.OrderStatuses {
		assert.True(t, entity.ValidOrderStatus(s), s)
	}
	assert.False(t, entity.ValidOrderStatus("entregada"))
	assert.False(t, entity.ValidOrderStatus(""))
}

func TestMutable(t *testing.T) {
	mutables := map[string]bool{
		entity.OrderStatusPendiente: true,
		entity.OrderStatusAprobada:  true,
	}
	for _, s := range entity.OrderStatuses {
		o := entity.PurchaseOrder{Status: s}
		assert.Equal(t, mutables[s], o.Mutable(), s)
	}
}
