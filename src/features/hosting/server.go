package hosting

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/contre95/downsort/src/features/config"
	"github.com/contre95/downsort/src/features/jobs"
	"github.com/contre95/downsort/src/features/metrics"
	"github.com/contre95/downsort/src/features/organizing"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server exposing the status API.
func NewServer(cfg *config.Manager, organizingService *organizing.Service, jobService *jobs.Service, collectors *metrics.Collectors) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				slog.Error("Internal Server Error", "error", err)
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
		AppName:               "downsort",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	app.Use(recover.New())
	app.Use(LogAllRequestsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	config.RegisterRoutes(app, cfg)
	organizing.RegisterRoutes(app, organizingService)
	jobs.RegisterRoutes(app, jobService)
	if collectors != nil {
		metrics.RegisterRoutes(app, collectors)
	}

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	slog.Info("Starting HTTP server", "port", s.port)
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
