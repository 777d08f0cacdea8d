package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutSession groups the exercise checkpoints performed together on
// one date (e.g., "Day 3: Upper Body").
type WorkoutSession struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	PlanID        primitive.ObjectID `bson:"planId" json:"planId"`
	TemplateID    primitive.ObjectID `bson:"templateId" json:"templateId"`
	Name          string             `bson:"name" json:"name"`
	Date          time.Time          `bson:"date" json:"date"`
	ExerciseCount int                `bson:"exerciseCount" json:"exerciseCount"`
	StartedAt     time.Time          `bson:"startedAt" json:"startedAt"`
	CompletedAt   *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Completed     bool               `bson:"completed" json:"completed"`
	DurationSec   int                `bson:"durationSec,omitempty" json:"durationSec,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SessionExercise describes one entry of the exercise list used to
// initialize a workout session for the day.
type SessionExercise struct {
	ExerciseID primitive.ObjectID `json:"exerciseId"`
	Name       string             `json:"name"`
	Points     int                `json:"points"` // Award on completion, supplied by the template
}

// PlannedMealItem describes one entry of the meal list used to
// initialize meal checkpoints for the day.
type PlannedMealItem struct {
	MealItemID primitive.ObjectID `json:"mealItemId"`
	Name       string             `json:"name"`
	Points     int                `json:"points"`
}
