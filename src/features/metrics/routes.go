package metrics

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the metrics routes with the Fiber app.
func RegisterRoutes(app *fiber.App, collectors *Collectors) {
	handler := NewHandler(collectors)
	app.Get("/metrics", handler.Expose)
}
