// internal/domain/achievement.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stat field names an achievement requirement can reference.
// These are the keys of the stats map fed to the evaluator.
const (
	StatTotalPoints      = "total_points"
	StatTotalCheckpoints = "total_checkpoints"
	StatTotalWorkouts    = "total_workouts"
	StatTotalExercises   = "total_exercises"
	StatTotalMeals       = "total_meals"
	StatStreakDays       = "streak_days"
)

// AchievementDefinition is one entry of the read-only achievement
// catalog. Requirements are always ">= RequirementValue" comparisons.
type AchievementDefinition struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title            string             `bson:"title" json:"title"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	Icon             string             `bson:"icon,omitempty" json:"icon,omitempty"`
	RequirementField string             `bson:"requirementField" json:"requirementField"`
	RequirementValue int                `bson:"requirementValue" json:"requirementValue"`
	Points           int                `bson:"points" json:"points"`
	IsActive         bool               `bson:"isActive" json:"isActive"`
}

// UnlockedAchievement records a one-time unlock for a user.
// Unique per (user, achievement); never re-awarded.
type UnlockedAchievement struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	AchievementID primitive.ObjectID `bson:"achievementId" json:"achievementId"`
	UnlockedAt    time.Time          `bson:"unlockedAt" json:"unlockedAt"`
	PointsAwarded int                `bson:"pointsAwarded" json:"pointsAwarded"`
}

// AchievementWithStatus pairs a catalog entry with the user's unlock
// state for display.
type AchievementWithStatus struct {
	AchievementDefinition
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// UserStats is the denormalized per-user counter document. It is the
// single written authority for cumulative totals; each point-awarding
// write increments it in the same logical operation. Totals remain
// re-derivable from checkpoint/achievement history for reconciliation.
type UserStats struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	TotalPoints      int                `bson:"totalPoints" json:"totalPoints"`
	TotalCheckpoints int                `bson:"totalCheckpoints" json:"totalCheckpoints"`
	TotalWorkouts    int                `bson:"totalWorkouts" json:"totalWorkouts"`
	TotalExercises   int                `bson:"totalExercises" json:"totalExercises"`
	TotalMeals       int                `bson:"totalMeals" json:"totalMeals"`
	StreakDays       int                `bson:"streakDays" json:"streakDays"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AsMap exposes the stats under the requirement field names the
// achievement catalog uses.
func (s UserStats) AsMap() map[string]int {
	return map[string]int{
		StatTotalPoints:      s.TotalPoints,
		StatTotalCheckpoints: s.TotalCheckpoints,
		StatTotalWorkouts:    s.TotalWorkouts,
		StatTotalExercises:   s.TotalExercises,
		StatTotalMeals:       s.TotalMeals,
		StatStreakDays:       s.StreakDays,
	}
}
