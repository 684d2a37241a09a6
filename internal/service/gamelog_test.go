package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/imnotdurnk/internal/apperror"
	"github.com/yourorg/imnotdurnk/internal/models"
)

func TestGameLogService(t *testing.T) {
	plans := newFakePlanStore()
	logs := newFakeGameLogs()
	svc := NewGameLogService(logs, plans, fakeResolver{})
	ctx := context.Background()

	planID, err := plans.Create(ctx, &models.Plan{UserID: testUserID, Title: "Dinner"})
	require.NoError(t, err)
	otherPlan, err := plans.Create(ctx, &models.Plan{UserID: 99, Title: "Not mine"})
	require.NoError(t, err)

	out, err := svc.SaveGameLog(ctx, validToken, models.GameLogRequest{PlanID: planID, GameType: models.GameBalance, Score: 55})
	require.NoError(t, err)
	assert.Equal(t, planID, out.PlanID)

	list, err := svc.ListGameLogs(ctx, validToken, planID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 55, list[0].Score)

	_, err = svc.SaveGameLog(ctx, validToken, models.GameLogRequest{PlanID: planID, GameType: "darts", Score: 10})
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	_, err = svc.SaveGameLog(ctx, validToken, models.GameLogRequest{PlanID: planID, GameType: models.GameTyping, Score: 101})
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	_, err = svc.SaveGameLog(ctx, validToken, models.GameLogRequest{PlanID: otherPlan, GameType: models.GameTyping, Score: 10})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	_, err = svc.ListGameLogs(ctx, "bogus", planID)
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}
