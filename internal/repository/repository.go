package repository

import (
	"context"
	"time"

	"vivafit/wellness-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key") // A uniqueness constraint rejected the write
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// PlanRepository defines the interface for interacting with user plan data.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.UserPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.UserPlan, error)
	GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.UserPlan, error)
	// IncrementProgress bumps currentProgress by one. It only matches
	// active plans, so a completed plan can never be advanced.
	IncrementProgress(ctx context.Context, planID primitive.ObjectID) error
	SetCompleted(ctx context.Context, planID primitive.ObjectID, completed bool) error
	Delete(ctx context.Context, planID, userID primitive.ObjectID) error
}

// CheckpointRepository manages the daily, plan-level completion records.
type CheckpointRepository interface {
	// Upsert completes the checkpoint for (planID, date), creating it on
	// first completion and updating it on repeats. The returned flag is
	// true when the record was created by this call.
	Upsert(ctx context.Context, cp *domain.Checkpoint) (*domain.Checkpoint, bool, error)
	GetByPlanAndDate(ctx context.Context, planID primitive.ObjectID, date time.Time) (*domain.Checkpoint, error)
	GetByUserAndDateRange(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.Checkpoint, error)
	DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error
}

// ExerciseCheckpointRepository manages per-exercise sub-checkpoints.
type ExerciseCheckpointRepository interface {
	// Upsert keys on (planId, exerciseId, date) so re-initializing a
	// session for the same day does not duplicate checkpoints.
	Upsert(ctx context.Context, cp *domain.ExerciseCheckpoint) (*domain.ExerciseCheckpoint, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseCheckpoint, error)
	GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date time.Time) ([]domain.ExerciseCheckpoint, error)
	Update(ctx context.Context, cp *domain.ExerciseCheckpoint) error
	DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error
}

// MealCheckpointRepository manages per-meal-item sub-checkpoints.
type MealCheckpointRepository interface {
	Upsert(ctx context.Context, cp *domain.MealCheckpoint) (*domain.MealCheckpoint, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealCheckpoint, error)
	GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date time.Time) ([]domain.MealCheckpoint, error)
	Update(ctx context.Context, cp *domain.MealCheckpoint) error
	DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error
}

// SessionRepository manages workout sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date time.Time) ([]domain.WorkoutSession, error)
	Update(ctx context.Context, session *domain.WorkoutSession) error
	DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error
}

// NutritionGoalRepository manages the per-(user, date) nutrition rows.
type NutritionGoalRepository interface {
	Upsert(ctx context.Context, goal *domain.DailyNutritionGoal) (*domain.DailyNutritionGoal, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DailyNutritionGoal, error)
	GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date time.Time) (*domain.DailyNutritionGoal, error)
	// AddWaterConsumed applies a monotone $inc to waterConsumedMl.
	AddWaterConsumed(ctx context.Context, goalID primitive.ObjectID, amountML int) (*domain.DailyNutritionGoal, error)
}

// AchievementRepository serves the read-only catalog and the per-user
// unlock records.
type AchievementRepository interface {
	ListActiveDefinitions(ctx context.Context) ([]domain.AchievementDefinition, error)
	ListUnlockedByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.UnlockedAchievement, error)
	// InsertUnlocked returns ErrDuplicate when the (user, achievement)
	// pair already exists; the unique index is the arbiter.
	InsertUnlocked(ctx context.Context, unlocked *domain.UnlockedAchievement) (primitive.ObjectID, error)
}

// LevelRepository serves the read-only level catalog.
type LevelRepository interface {
	ListDefinitions(ctx context.Context) ([]domain.LevelDefinition, error)
}

// StatsRepository manages the denormalized per-user counters.
type StatsRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserStats, error)
	// Increment applies the given deltas atomically, creating the stats
	// document on first touch.
	Increment(ctx context.Context, userID primitive.ObjectID, deltas map[string]int) error
}
