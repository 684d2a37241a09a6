package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestPlanRepositoryListBetween(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlanRepository(db)
	ctx := context.Background()

	userID := mustCreateUser(t, db, "a@example.com")
	other := mustCreateUser(t, db, "b@example.com")

	mustCreatePlan(t, db, userID, "late", date(2024, 11, 11, 22, 0))
	mustCreatePlan(t, db, userID, "early", date(2024, 11, 11, 10, 0))
	mustCreatePlan(t, db, userID, "december", date(2024, 12, 1, 0, 0))
	mustCreatePlan(t, db, other, "someone else", date(2024, 11, 11, 12, 0))

	plans, err := repo.ListBetween(ctx, userID, date(2024, 11, 1, 0, 0), date(2024, 12, 1, 0, 0))
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "early", plans[0].Title)
	assert.Equal(t, "late", plans[1].Title)
	assert.True(t, plans[0].DateTime.Equal(date(2024, 11, 11, 10, 0)))
	assert.Nil(t, plans[0].Memo)
}

func TestPlanRepositoryOwnership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlanRepository(db)
	ctx := context.Background()

	owner := mustCreateUser(t, db, "a@example.com")
	stranger := mustCreateUser(t, db, "b@example.com")
	planID := mustCreatePlan(t, db, owner, "Gym", date(2024, 11, 11, 10, 0))

	_, err := repo.FindByIDAndUser(ctx, planID, stranger)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	deleted, err := repo.Delete(ctx, planID, stranger)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.Delete(ctx, planID, owner)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestPlanRepositoryFeedbackAndArrival(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlanRepository(db)
	ctx := context.Background()

	userID := mustCreateUser(t, db, "a@example.com")
	planID := mustCreatePlan(t, db, userID, "Dinner", date(2024, 11, 11, 19, 0))

	p, err := repo.FindByIDAndUser(ctx, planID, userID)
	require.NoError(t, err)
	p.AlcoholLevel = ptr(2)
	p.SojuAmount = ptr(3)
	p.Memo = ptr("good night")
	require.NoError(t, repo.UpdateFeedback(ctx, p))
	require.NoError(t, repo.UpdateArrivalTime(ctx, planID, userID, "23:40"))

	p, err = repo.FindByIDAndUser(ctx, planID, userID)
	require.NoError(t, err)
	require.NotNil(t, p.AlcoholLevel)
	assert.Equal(t, 2, *p.AlcoholLevel)
	assert.Equal(t, 3, *p.SojuAmount)
	assert.Nil(t, p.BeerAmount)
	assert.Equal(t, "good night", *p.Memo)
	assert.Equal(t, "23:40", *p.ArrivalTime)
}

func TestPlanRepositoryFindLatestBetween(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlanRepository(db)
	ctx := context.Background()

	userID := mustCreateUser(t, db, "a@example.com")
	mustCreatePlan(t, db, userID, "two days ago", date(2024, 11, 9, 20, 0))
	mustCreatePlan(t, db, userID, "dinner", date(2024, 11, 10, 19, 0))
	want := mustCreatePlan(t, db, userID, "second round", date(2024, 11, 10, 22, 0))
	mustCreatePlan(t, db, userID, "tomorrow", date(2024, 11, 11, 12, 0))

	now := date(2024, 11, 11, 1, 30)
	p, err := repo.FindLatestBetween(ctx, userID, now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, want, p.ID)

	_, err = repo.FindLatestBetween(ctx, userID, date(2024, 1, 1, 0, 0), date(2024, 1, 2, 0, 0))
	assert.ErrorIs(t, err, sql.ErrNoRows)

	edge := mustCreatePlan(t, db, userID, "edge", date(2024, 11, 20, 1, 30))
	at := date(2024, 11, 21, 1, 30)
	p, err = repo.FindLatestBetween(ctx, userID, at.Add(-24*time.Hour), at)
	require.NoError(t, err)
	assert.Equal(t, edge, p.ID, "lower bound is inclusive")

	_, err = repo.FindLatestBetween(ctx, userID, at.Add(-24*time.Hour+time.Minute), at)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPlanRepositoryStatRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlanRepository(db)
	ctx := context.Background()

	userID := mustCreateUser(t, db, "a@example.com")
	planID := mustCreatePlan(t, db, userID, "Dinner", date(2024, 11, 11, 19, 0))
	mustCreatePlan(t, db, userID, "Gym", date(2024, 11, 12, 7, 0))
	p, err := repo.FindByIDAndUser(ctx, planID, userID)
	require.NoError(t, err)
	p.AlcoholLevel = ptr(3)
	p.BeerAmount = ptr(4)
	require.NoError(t, repo.UpdateFeedback(ctx, p))

	rows, err := repo.StatRows(ctx, userID, date(2024, 11, 1, 0, 0), date(2024, 12, 1, 0, 0))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var levels int
	for _, r := range rows {
		if r.AlcoholLevel != nil {
			levels += *r.AlcoholLevel
		}
	}
	assert.Equal(t, 3, levels)
}
