package organizing

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for the organizing feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new organizing handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetStatus returns the organizer status.
func (h *Handler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status(c.Context()))
}

// GetCategories returns the effective category table.
func (h *Handler) GetCategories(c *fiber.Ctx) error {
	return c.JSON(h.service.Categories())
}

// GetHistory returns recent moves. The limit query parameter defaults to 20.
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 1000 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be between 1 and 1000"})
	}
	records, err := h.service.History(c.Context(), limit)
	if err != nil {
		slog.Error("Error loading move history", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load history"})
	}
	return c.JSON(fiber.Map{"moves": records, "count": len(records)})
}

// GetFailures returns the files waiting for manual review.
func (h *Handler) GetFailures(c *fiber.Ctx) error {
	items := h.service.Failures()
	return c.JSON(fiber.Map{"failures": items, "count": len(items)})
}

// ClearFailures empties the review list.
func (h *Handler) ClearFailures(c *fiber.Ctx) error {
	if err := h.service.ClearFailures(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StartScan starts a sort job for the watched root.
func (h *Handler) StartScan(c *fiber.Ctx) error {
	jobID, err := h.service.StartScan()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"job_id": jobID})
}
