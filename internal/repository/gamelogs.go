package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yourorg/imnotdurnk/internal/models"
)

type GameLogRepository struct {
	db *sql.DB
}

func NewGameLogRepository(db *sql.DB) *GameLogRepository {
	return &GameLogRepository{db: db}
}

func (r *GameLogRepository) Create(ctx context.Context, g *models.GameLog) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO game_logs (plan_id, game_type, score) VALUES (?, ?, ?)`,
		g.PlanID, g.GameType, g.Score)
	if err != nil {
		return 0, fmt.Errorf("insert game log: %w", err)
	}
	return res.LastInsertId()
}

func (r *GameLogRepository) FindByID(ctx context.Context, id int64) (*models.GameLog, error) {
	var g models.GameLog
	err := r.db.QueryRowContext(ctx, `SELECT id, plan_id, game_type, score FROM game_logs WHERE id = ?`, id).
		Scan(&g.ID, &g.PlanID, &g.GameType, &g.Score)
	if err != nil {
		return nil, fmt.Errorf("find game log: %w", err)
	}
	return &g, nil
}

func (r *GameLogRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM game_logs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete game log: %w", err)
	}
	return nil
}

// ListByPlan returns the plan's game logs, oldest first, with the URL of the
// attached recording when there is one.
func (r *GameLogRepository) ListByPlan(ctx context.Context, planID int64) ([]models.GameLogDTO, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT g.id, g.plan_id, g.game_type, g.score, COALESCE(v.file_url, '')
		FROM game_logs g
		LEFT JOIN voices v ON v.log_id = g.id
		WHERE g.plan_id = ?
		ORDER BY g.id ASC`, planID)
	if err != nil {
		return nil, fmt.Errorf("list game logs: %w", err)
	}
	defer rows.Close()

	logs := make([]models.GameLogDTO, 0)
	for rows.Next() {
		var dto models.GameLogDTO
		if err := rows.Scan(&dto.LogID, &dto.PlanID, &dto.GameType, &dto.Score, &dto.FileURL); err != nil {
			return nil, fmt.Errorf("scan game log: %w", err)
		}
		logs = append(logs, dto)
	}
	return logs, rows.Err()
}
