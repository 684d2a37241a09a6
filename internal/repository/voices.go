package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yourorg/imnotdurnk/internal/models"
)

type VoiceRepository struct {
	db *sql.DB
}

func NewVoiceRepository(db *sql.DB) *VoiceRepository {
	return &VoiceRepository{db: db}
}

func (r *VoiceRepository) Create(ctx context.Context, v *models.Voice) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO voices (log_id, file_name, file_url) VALUES (?, ?, ?)`,
		v.LogID, v.FileName, v.FileURL)
	if err != nil {
		return 0, fmt.Errorf("insert voice: %w", err)
	}
	return res.LastInsertId()
}

func (r *VoiceRepository) FindByLogID(ctx context.Context, logID int64) (*models.Voice, error) {
	var v models.Voice
	err := r.db.QueryRowContext(ctx, `SELECT id, log_id, file_name, file_url FROM voices WHERE log_id = ?`, logID).
		Scan(&v.ID, &v.LogID, &v.FileName, &v.FileURL)
	if err != nil {
		return nil, fmt.Errorf("find voice: %w", err)
	}
	return &v, nil
}

func (r *VoiceRepository) DeleteByLogID(ctx context.Context, logID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM voices WHERE log_id = ?`, logID); err != nil {
		return fmt.Errorf("delete voice: %w", err)
	}
	return nil
}
