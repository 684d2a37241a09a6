package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/imnotdurnk/internal/models"
)

// GameLogService is what the game log endpoints need from the service layer.
type GameLogService interface {
	SaveGameLog(ctx context.Context, token string, req models.GameLogRequest) (*models.GameLogDTO, error)
	ListGameLogs(ctx context.Context, token string, planID int64) ([]models.GameLogDTO, error)
}

type GameLogHandler struct {
	svc GameLogService
}

func NewGameLogHandler(svc GameLogService) *GameLogHandler {
	return &GameLogHandler{svc: svc}
}

// SaveGameLog handles POST /game-logs.
func (h *GameLogHandler) SaveGameLog(c *fiber.Ctx) error {
	var req models.GameLogRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	saved, err := h.svc.SaveGameLog(c.UserContext(), accessToken(c), req)
	if err != nil {
		return err
	}
	return single(c, fiber.StatusCreated, "game log saved", saved)
}

// ListGameLogs handles GET /game-logs/:planId.
func (h *GameLogHandler) ListGameLogs(c *fiber.Ctx) error {
	planID, err := paramID(c, "planId")
	if err != nil {
		return err
	}
	logs, err := h.svc.ListGameLogs(c.UserContext(), accessToken(c), planID)
	if err != nil {
		return err
	}
	return list(c, "game logs loaded", logs)
}
