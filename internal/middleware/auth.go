package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AccessToken.
const (
	LocalAccessToken  = "AccessToken"
	LocalRefreshToken = "RefreshToken"
)

// RefreshCookie is the cookie the refresh token travels in.
const RefreshCookie = "RefreshToken"

// AccessToken copies the bearer token from the Authorization header and the
// refresh token cookie into request locals. Requests without them pass
// through; services decide whether a token is required.
func AccessToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearer(c.Get(fiber.HeaderAuthorization)); token != "" {
			c.Locals(LocalAccessToken, token)
		}
		if refresh := strings.TrimSpace(c.Cookies(RefreshCookie)); refresh != "" {
			c.Locals(LocalRefreshToken, refresh)
		}
		return c.Next()
	}
}

func bearer(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// Token returns the string stored under key, or "".
func Token(c *fiber.Ctx, key string) string {
	v, _ := c.Locals(key).(string)
	return v
}
