package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the Prometheus exposition endpoint.
type Handler struct {
	collectors *Collectors
	expose     fiber.Handler
}

// NewHandler creates a new metrics handler.
func NewHandler(collectors *Collectors) *Handler {
	return &Handler{
		collectors: collectors,
		expose: adaptor.HTTPHandler(promhttp.HandlerFor(collectors.Registry(), promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		})),
	}
}

// Expose writes every registered metric in the Prometheus text format.
func (h *Handler) Expose(c *fiber.Ctx) error {
	return h.expose(c)
}
