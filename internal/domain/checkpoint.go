// internal/domain/checkpoint.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Checkpoint is the daily, plan-level completion record.
// At most one checkpoint exists per (plan, date) pair; completing the
// same date twice updates the existing record instead of duplicating it.
type Checkpoint struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	PlanID       primitive.ObjectID `bson:"planId" json:"planId"`
	Date         time.Time          `bson:"date" json:"date"` // Normalized to midnight UTC
	Completed    bool               `bson:"completed" json:"completed"`
	PointsEarned int                `bson:"pointsEarned" json:"pointsEarned"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseCheckpoint tracks completion of a single exercise within a
// workout session on a given date. Unique per (plan, exercise, date).
type ExerciseCheckpoint struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID  `bson:"userId" json:"userId"`
	PlanID        primitive.ObjectID  `bson:"planId" json:"planId"`
	SessionID     *primitive.ObjectID `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	ExerciseID    primitive.ObjectID  `bson:"exerciseId" json:"exerciseId"`
	ExerciseName  string              `bson:"exerciseName" json:"exerciseName"`
	Date          time.Time           `bson:"date" json:"date"`
	Completed     bool                `bson:"completed" json:"completed"`
	SetsCompleted int                 `bson:"setsCompleted,omitempty" json:"setsCompleted,omitempty"`
	RepsCompleted int                 `bson:"repsCompleted,omitempty" json:"repsCompleted,omitempty"`
	WeightUsed    float64             `bson:"weightUsed,omitempty" json:"weightUsed,omitempty"`
	PointsEarned  int                 `bson:"pointsEarned" json:"pointsEarned"`
	Notes         string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CompletedAt   *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// MealCheckpoint tracks completion of a single meal item on a given
// date. Unique per (plan, meal item, date).
type MealCheckpoint struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	PlanID           primitive.ObjectID `bson:"planId" json:"planId"`
	MealItemID       primitive.ObjectID `bson:"mealItemId" json:"mealItemId"`
	MealItemName     string             `bson:"mealItemName" json:"mealItemName"`
	Date             time.Time          `bson:"date" json:"date"`
	Completed        bool               `bson:"completed" json:"completed"`
	QuantityConsumed float64            `bson:"quantityConsumed,omitempty" json:"quantityConsumed,omitempty"`
	CaloriesConsumed float64            `bson:"caloriesConsumed,omitempty" json:"caloriesConsumed,omitempty"`
	PhotoURL         string             `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	PointsEarned     int                `bson:"pointsEarned" json:"pointsEarned"`
	Notes            string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CompletedAt      *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NormalizeDate truncates a timestamp to midnight UTC so that every
// checkpoint written for the same calendar day hits the same unique key.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
