package hosting

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// quietPaths are polled by dashboards and scrapers; successful requests to
// them are logged at debug level only.
var quietPaths = []string{"/health", "/metrics", "/jobs/", "/organize/status"}

// LogAllRequestsMiddleware logs every request. Failures are logged as errors.
func LogAllRequestsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", duration.String(),
			"ip", c.IP(),
		}
		switch {
		case status >= 400:
			slog.Error("HTTP request", append(attrs, "error", err)...)
		case isQuiet(c.Path()):
			slog.Debug("HTTP request", attrs...)
		default:
			slog.Info("HTTP request", attrs...)
		}
		return err
	}
}

func isQuiet(path string) bool {
	for _, p := range quietPaths {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}
