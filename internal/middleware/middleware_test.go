package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenExtractsBearerAndCookie(t *testing.T) {
	app := fiber.New()
	app.Use(AccessToken())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(Token(c, LocalAccessToken) + "|" + Token(c, LocalRefreshToken))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def")
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "r1"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "abc.def|r1", string(body))
}

func TestBearer(t *testing.T) {
	assert.Equal(t, "tok", bearer("Bearer tok"))
	assert.Equal(t, "tok", bearer("bearer  tok "))
	assert.Empty(t, bearer("Basic dXNlcg=="))
	assert.Empty(t, bearer(""))
}

func TestAuthRateLimiterReturnsEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/users/login", AuthRateLimiter(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	var last *http.Response
	for i := 0; i < 11; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/login", nil))
		require.NoError(t, err)
		last = resp
	}
	assert.Equal(t, fiber.StatusTooManyRequests, last.StatusCode)
	assert.Equal(t, "60", last.Header.Get("Retry-After"))
}

func TestSourceAndLevel(t *testing.T) {
	assert.Equal(t, "calendars", sourceOf("/calendars/2024-05-01/plans"))
	assert.Equal(t, "maps", sourceOf("/maps/transit"))
	assert.Equal(t, "backend", sourceOf("/health"))
	assert.Equal(t, "error", levelOf(502))
	assert.Equal(t, "warn", levelOf(404))
	assert.Equal(t, "info", levelOf(201))
}
