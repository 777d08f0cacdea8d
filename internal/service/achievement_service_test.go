package service

import (
	"context"
	"testing"

	"vivafit/wellness-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func achievementDef(field string, value, points int, active bool) domain.AchievementDefinition {
	return domain.AchievementDefinition{
		ID:               primitive.NewObjectID(),
		Title:            "Conquista",
		RequirementField: field,
		RequirementValue: value,
		Points:           points,
		IsActive:         active,
	}
}

func TestEvaluateUnlocks(t *testing.T) {
	firstWorkout := achievementDef(domain.StatTotalWorkouts, 1, 50, true)
	tenWorkouts := achievementDef(domain.StatTotalWorkouts, 10, 100, true)
	repo := newFakeAchievementRepo(firstWorkout, tenWorkouts)
	stats := newFakeStatsRepo()
	svc := NewAchievementService(repo, stats)

	userID := primitive.NewObjectID()
	unlocked, err := svc.Evaluate(context.Background(), userID, map[string]int{
		domain.StatTotalWorkouts: 3,
	})
	require.NoError(t, err)

	require.Len(t, unlocked, 1)
	assert.Equal(t, firstWorkout.ID, unlocked[0].AchievementID)
	assert.Equal(t, 50, unlocked[0].PointsAwarded)

	s, err := stats.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 50, s.TotalPoints)
}

func TestEvaluateThresholdIsInclusive(t *testing.T) {
	def := achievementDef(domain.StatTotalCheckpoints, 10, 25, true)
	repo := newFakeAchievementRepo(def)
	svc := NewAchievementService(repo, newFakeStatsRepo())
	ctx := context.Background()

	unlocked, err := svc.Evaluate(ctx, primitive.NewObjectID(), map[string]int{domain.StatTotalCheckpoints: 9})
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	unlocked, err = svc.Evaluate(ctx, primitive.NewObjectID(), map[string]int{domain.StatTotalCheckpoints: 10})
	require.NoError(t, err)
	assert.Len(t, unlocked, 1)
}

func TestEvaluateNeverDoubleAwards(t *testing.T) {
	def := achievementDef(domain.StatTotalPoints, 100, 50, true)
	repo := newFakeAchievementRepo(def)
	stats := newFakeStatsRepo()
	svc := NewAchievementService(repo, stats)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	first, err := svc.Evaluate(ctx, userID, map[string]int{domain.StatTotalPoints: 150})
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.Evaluate(ctx, userID, map[string]int{domain.StatTotalPoints: 150})
	require.NoError(t, err)
	assert.Empty(t, second)

	assert.Equal(t, 1, repo.unlockCount())
	s, err := stats.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 50, s.TotalPoints)
}

func TestEvaluateLosingRaceCreditsNothing(t *testing.T) {
	def := achievementDef(domain.StatTotalPoints, 100, 50, true)
	repo := newFakeAchievementRepo(def)
	stats := newFakeStatsRepo()
	svc := NewAchievementService(repo, stats)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	_, err := svc.Evaluate(ctx, userID, map[string]int{domain.StatTotalPoints: 150})
	require.NoError(t, err)

	// Simulate a concurrent evaluation whose unlock read lagged the
	// insert: the list comes back empty but the unique index still
	// rejects the duplicate.
	repo.hideList = true
	unlocked, err := svc.Evaluate(ctx, userID, map[string]int{domain.StatTotalPoints: 150})
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	assert.Equal(t, 1, repo.unlockCount())
	s, err := stats.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 50, s.TotalPoints)
}

func TestEvaluateSkipsInactiveDefinitions(t *testing.T) {
	def := achievementDef(domain.StatTotalMeals, 1, 10, false)
	repo := newFakeAchievementRepo(def)
	svc := NewAchievementService(repo, newFakeStatsRepo())

	unlocked, err := svc.Evaluate(context.Background(), primitive.NewObjectID(), map[string]int{domain.StatTotalMeals: 5})
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestEvaluateCurrentUsesStoredStats(t *testing.T) {
	def := achievementDef(domain.StatTotalExercises, 5, 20, true)
	repo := newFakeAchievementRepo(def)
	stats := newFakeStatsRepo()
	svc := NewAchievementService(repo, stats)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	require.NoError(t, stats.Increment(ctx, userID, map[string]int{domain.StatTotalExercises: 5}))

	unlocked, err := svc.EvaluateCurrent(ctx, userID)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, def.ID, unlocked[0].AchievementID)
}

func TestListWithStatus(t *testing.T) {
	first := achievementDef(domain.StatTotalWorkouts, 1, 50, true)
	second := achievementDef(domain.StatTotalWorkouts, 10, 100, true)
	repo := newFakeAchievementRepo(first, second)
	svc := NewAchievementService(repo, newFakeStatsRepo())
	ctx := context.Background()
	userID := primitive.NewObjectID()

	_, err := svc.Evaluate(ctx, userID, map[string]int{domain.StatTotalWorkouts: 2})
	require.NoError(t, err)

	list, err := svc.ListWithStatus(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := make(map[primitive.ObjectID]domain.AchievementWithStatus, len(list))
	for _, entry := range list {
		byID[entry.ID] = entry
	}
	assert.True(t, byID[first.ID].Unlocked)
	assert.NotNil(t, byID[first.ID].UnlockedAt)
	assert.False(t, byID[second.ID].Unlocked)
	assert.Nil(t, byID[second.ID].UnlockedAt)
}
