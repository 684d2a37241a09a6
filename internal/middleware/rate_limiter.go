package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/yourorg/imnotdurnk/internal/models"
)

// ============================================================================
// RATE LIMITING MIDDLEWARE
// ============================================================================

// GlobalRateLimiter caps every client at 600 requests per minute.
func GlobalRateLimiter() fiber.Handler {
	return newLimiter(600, time.Minute, func(c *fiber.Ctx) string {
		return c.IP()
	})
}

// AuthRateLimiter caps login, sign-up and password recovery at 10 requests
// per minute per IP and path.
func AuthRateLimiter() fiber.Handler {
	return newLimiter(10, time.Minute, func(c *fiber.Ctx) string {
		return c.IP() + ":" + c.Path()
	})
}

// ExpensiveOperationLimiter guards the pronunciation scoring and transit
// lookups: 30 requests per 5 minutes.
func ExpensiveOperationLimiter() fiber.Handler {
	return newLimiter(30, 5*time.Minute, func(c *fiber.Ctx) string {
		return c.IP()
	})
}

func newLimiter(max int, window time.Duration, key func(*fiber.Ctx) string) fiber.Handler {
	msg := fmt.Sprintf("too many requests, retry in %s", window)
	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   window,
		KeyGenerator: key,
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).
				JSON(models.NewResponse(fiber.StatusTooManyRequests, msg))
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
