package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yourorg/imnotdurnk/internal/models"
)

const planColumns = `id, user_id, title, memo, date_time, arrival_time,
	alcohol_level, soju_amount, beer_amount`

type PlanRepository struct {
	db *sql.DB
}

func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(ctx context.Context, p *models.Plan) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO plans (user_id, title, memo, date_time, arrival_time,
			alcohol_level, soju_amount, beer_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Title, nullString(p.Memo), p.DateTime, nullString(p.ArrivalTime),
		nullInt(p.AlcoholLevel), nullInt(p.SojuAmount), nullInt(p.BeerAmount))
	if err != nil {
		return 0, fmt.Errorf("insert plan: %w", err)
	}
	return res.LastInsertId()
}

// ListBetween returns the user's plans with from <= date_time < to, oldest
// first.
func (r *PlanRepository) ListBetween(ctx context.Context, userID int64, from, to time.Time) ([]models.Plan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+planColumns+` FROM plans
		WHERE user_id = ? AND date_time >= ? AND date_time < ?
		ORDER BY date_time ASC, id ASC`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	plans := make([]models.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// FindByIDAndUser returns plan id only if it belongs to userID.
func (r *PlanRepository) FindByIDAndUser(ctx context.Context, id, userID int64) (*models.Plan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = ? AND user_id = ?`, id, userID)
	return scanPlan(row)
}

// FindLatestBetween returns the user's most recent plan with
// from <= date_time <= to.
func (r *PlanRepository) FindLatestBetween(ctx context.Context, userID int64, from, to time.Time) (*models.Plan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+planColumns+` FROM plans
		WHERE user_id = ? AND date_time >= ? AND date_time <= ?
		ORDER BY date_time DESC, id DESC
		LIMIT 1`, userID, from, to)
	return scanPlan(row)
}

// UpdateFeedback writes the post-event fields of p.
func (r *PlanRepository) UpdateFeedback(ctx context.Context, p *models.Plan) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE plans SET memo = ?, arrival_time = ?, alcohol_level = ?,
			soju_amount = ?, beer_amount = ?
		WHERE id = ? AND user_id = ?`,
		nullString(p.Memo), nullString(p.ArrivalTime), nullInt(p.AlcoholLevel),
		nullInt(p.SojuAmount), nullInt(p.BeerAmount), p.ID, p.UserID)
	if err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}
	return nil
}

func (r *PlanRepository) UpdateArrivalTime(ctx context.Context, id, userID int64, arrival string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE plans SET arrival_time = ? WHERE id = ? AND user_id = ?`, arrival, id, userID)
	if err != nil {
		return fmt.Errorf("update arrival time: %w", err)
	}
	return nil
}

// Delete removes the plan and reports whether a row matched.
func (r *PlanRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// StatRows returns the statistic projection of plans with
// from <= date_time < to.
func (r *PlanRepository) StatRows(ctx context.Context, userID int64, from, to time.Time) ([]models.PlanStatRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date_time, alcohol_level, soju_amount, beer_amount FROM plans
		WHERE user_id = ? AND date_time >= ? AND date_time < ?`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("plan statistics: %w", err)
	}
	defer rows.Close()

	out := make([]models.PlanStatRow, 0)
	for rows.Next() {
		var (
			row               models.PlanStatRow
			level, soju, beer sql.NullInt64
		)
		if err := rows.Scan(&row.DateTime, &level, &soju, &beer); err != nil {
			return nil, fmt.Errorf("scan plan statistics: %w", err)
		}
		row.AlcoholLevel = intPtr(level)
		row.SojuAmount = intPtr(soju)
		row.BeerAmount = intPtr(beer)
		out = append(out, row)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(s rowScanner) (*models.Plan, error) {
	var (
		p                 models.Plan
		memo, arrival     sql.NullString
		level, soju, beer sql.NullInt64
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.Title, &memo, &p.DateTime, &arrival, &level, &soju, &beer); err != nil {
		return nil, fmt.Errorf("scan plan: %w", err)
	}
	p.Memo = stringPtr(memo)
	p.ArrivalTime = stringPtr(arrival)
	p.AlcoholLevel = intPtr(level)
	p.SojuAmount = intPtr(soju)
	p.BeerAmount = intPtr(beer)
	return &p, nil
}
