// Package handlers adapts HTTP requests onto the services and writes the
// response envelope.
package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/imnotdurnk/internal/apperror"
	"github.com/yourorg/imnotdurnk/internal/debug"
	"github.com/yourorg/imnotdurnk/internal/middleware"
	"github.com/yourorg/imnotdurnk/internal/models"
)

// ErrorHandler is the fiber.Config ErrorHandler: every error returned by a
// handler leaves the server as an envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.NewResponse(fe.Code, fe.Message))
	}

	status, msg := apperror.Status(err)
	if apperror.KindOf(err) == apperror.KindInternal {
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
		debug.LogError(err.Error(), map[string]any{"method": c.Method(), "path": c.Path()})
	}
	return c.Status(status).JSON(models.NewResponse(status, msg))
}

func ok(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusOK).JSON(models.NewResponse(fiber.StatusOK, msg))
}

func single(c *fiber.Ctx, status int, msg string, data any) error {
	return c.Status(status).JSON(models.SingleResponse(status, msg, data))
}

func list[T any](c *fiber.Ctx, msg string, items []T) error {
	return c.Status(fiber.StatusOK).JSON(models.ListResponse(fiber.StatusOK, msg, items))
}

func accessToken(c *fiber.Ctx) string {
	return middleware.Token(c, middleware.LocalAccessToken)
}

func refreshToken(c *fiber.Ctx) string {
	return middleware.Token(c, middleware.LocalRefreshToken)
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("invalid " + name)
	}
	return id, nil
}

func queryInt(c *fiber.Ctx, name string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return 0, apperror.BadRequest("invalid " + name)
	}
	return v, nil
}

func queryFloat(c *fiber.Ctx, name string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(c.Query(name)), 64)
	if err != nil {
		return 0, apperror.BadRequest("invalid " + name)
	}
	return v, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.BadRequest("invalid request body")
	}
	return nil
}
