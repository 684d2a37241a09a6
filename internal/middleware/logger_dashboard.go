package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/imnotdurnk/internal/debug"
)

// DashboardLogger streams one record per request to the debug dashboard.
// It only does work while the dashboard is enabled.
func DashboardLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !debug.IsEnabled() {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		status := c.Response().StatusCode()
		path := c.Path()
		debug.SendLog(sourceOf(path), levelOf(status), fmt.Sprintf("%s %s", c.Method(), path), map[string]any{
			"method":      c.Method(),
			"path":        path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"ip":          c.IP(),
		})

		return err
	}
}

func levelOf(status int) string {
	switch {
	case status >= 500:
		return "error"
	case status >= 400:
		return "warn"
	default:
		return "info"
	}
}

// sourceOf names the dashboard channel by the first path segment.
func sourceOf(path string) string {
	seg := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	switch seg {
	case "calendars", "users", "voice", "game-logs", "maps":
		return seg
	default:
		return "backend"
	}
}
