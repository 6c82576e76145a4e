// Package metrics define las métricas Prometheus de la API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa los colectores registrados con promauto.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	MovementsPosted     *prometheus.CounterVec
	OrderTransitions    *prometheus.CounterVec
}

// New registra los colectores con el prefijo configurado.
func New(prefix string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total de peticiones HTTP",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duración de las peticiones HTTP en segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		MovementsPosted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_movements_posted_total",
				Help: "Total de movimientos de inventario asentados, por tipo",
			},
			[]string{"type"},
		),
		OrderTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_order_transitions_total",
				Help: "Total de transiciones de órdenes de compra, por estado destino",
			},
			[]string{"to"},
		),
	}
}
