package organizing

import "github.com/gofiber/fiber/v2"

// RegisterRoutes registers the organizing routes with the Fiber app.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)
	organize := app.Group("/organize")
	organize.Get("/status", handler.GetStatus)
	organize.Get("/categories", handler.GetCategories)
	organize.Get("/history", handler.GetHistory)
	organize.Get("/failures", handler.GetFailures)
	organize.Post("/failures/clear", handler.ClearFailures)
	organize.Post("/scan", handler.StartScan)
}
