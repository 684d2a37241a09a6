package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/imnotdurnk/internal/models"
)

func TestGameLogAndVoiceRepositories(t *testing.T) {
	db := setupTestDB(t)
	logs := NewGameLogRepository(db)
	voices := NewVoiceRepository(db)
	ctx := context.Background()

	userID := mustCreateUser(t, db, "a@example.com")
	planID := mustCreatePlan(t, db, userID, "Dinner", date(2024, 11, 11, 19, 0))

	balanceID, err := logs.Create(ctx, &models.GameLog{PlanID: planID, GameType: models.GameBalance, Score: 70})
	require.NoError(t, err)
	voiceLogID, err := logs.Create(ctx, &models.GameLog{PlanID: planID, GameType: models.GamePronunciation, Score: 85})
	require.NoError(t, err)

	g, err := logs.FindByID(ctx, balanceID)
	require.NoError(t, err)
	assert.Equal(t, models.GameBalance, g.GameType)

	_, err = voices.Create(ctx, &models.Voice{LogID: voiceLogID, FileName: "v.wav", FileURL: "https://cdn/v.wav"})
	require.NoError(t, err)

	list, err := logs.ListByPlan(ctx, planID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Empty(t, list[0].FileURL)
	assert.Equal(t, "https://cdn/v.wav", list[1].FileURL)

	v, err := voices.FindByLogID(ctx, voiceLogID)
	require.NoError(t, err)
	assert.Equal(t, "v.wav", v.FileName)

	require.NoError(t, voices.DeleteByLogID(ctx, voiceLogID))
	_, err = voices.FindByLogID(ctx, voiceLogID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, logs.Delete(ctx, balanceID))
	_, err = logs.FindByID(ctx, balanceID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = logs.FindByID(ctx, 999)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
