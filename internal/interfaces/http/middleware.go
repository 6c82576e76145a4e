package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/acampos/almacen-api/pkg/metrics"
)

// MetricsMiddleware registra contador y duración por petición HTTP.
// Usa la plantilla de la ruta (c.Route().Path) para no explotar la
// cardinalidad de las etiquetas con ids.
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		labels := []string{c.Method(), c.Route().Path, strconv.Itoa(status)}
		m.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		m.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}
