package service

import (
	"context"

	"github.com/yourorg/imnotdurnk/internal/apperror"
	"github.com/yourorg/imnotdurnk/internal/models"
)

const maxGameScore = 100

// GameLogStore is the persistence of game results.
type GameLogStore interface {
	Create(ctx context.Context, g *models.GameLog) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.GameLog, error)
	ListByPlan(ctx context.Context, planID int64) ([]models.GameLogDTO, error)
	Delete(ctx context.Context, id int64) error
}

// PlanFinder loads a plan only when it belongs to the user.
type PlanFinder interface {
	FindByIDAndUser(ctx context.Context, id, userID int64) (*models.Plan, error)
}

type GameLogService struct {
	logs  GameLogStore
	plans PlanFinder
	auth  TokenResolver
}

func NewGameLogService(logs GameLogStore, plans PlanFinder, auth TokenResolver) *GameLogService {
	return &GameLogService{logs: logs, plans: plans, auth: auth}
}

// SaveGameLog records the result of a sobriety game played during a plan.
func (s *GameLogService) SaveGameLog(ctx context.Context, token string, req models.GameLogRequest) (*models.GameLogDTO, error) {
	userID, err := s.auth.UserID(token)
	if err != nil {
		return nil, err
	}
	if req.PlanID <= 0 {
		return nil, apperror.BadRequest("planId is required")
	}
	if !models.IsValidGameType(req.GameType) {
		return nil, apperror.BadRequest("unknown game type")
	}
	if req.Score < 0 || req.Score > maxGameScore {
		return nil, apperror.BadRequest("score must be between 0 and 100")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if _, err := s.plans.FindByIDAndUser(ctx, req.PlanID, userID); err != nil {
		return nil, notFoundOr(err, "plan not found", "failed to load plan")
	}

	id, err := s.logs.Create(ctx, &models.GameLog{PlanID: req.PlanID, GameType: req.GameType, Score: req.Score})
	if err != nil {
		return nil, internal("failed to save game log", err)
	}
	return &models.GameLogDTO{LogID: id, PlanID: req.PlanID, GameType: req.GameType, Score: req.Score}, nil
}

// ListGameLogs lists the games of one of the user's plans.
func (s *GameLogService) ListGameLogs(ctx context.Context, token string, planID int64) ([]models.GameLogDTO, error) {
	userID, err := s.auth.UserID(token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if _, err := s.plans.FindByIDAndUser(ctx, planID, userID); err != nil {
		return nil, notFoundOr(err, "plan not found", "failed to load plan")
	}
	logs, err := s.logs.ListByPlan(ctx, planID)
	if err != nil {
		return nil, internal("failed to load game logs", err)
	}
	return logs, nil
}
