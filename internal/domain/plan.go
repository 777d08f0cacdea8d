// internal/domain/plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanType distinguishes the kinds of templates a user can follow.
type PlanType string

const (
	PlanTypeWorkout PlanType = "workout"
	PlanTypeMeal    PlanType = "meal"
	PlanTypeDiet    PlanType = "diet"
)

// IsValid reports whether the plan type is one of the known kinds.
func (t PlanType) IsValid() bool {
	switch t {
	case PlanTypeWorkout, PlanTypeMeal, PlanTypeDiet:
		return true
	}
	return false
}

// UserPlan is a user's active instance of a workout, meal, or diet
// template, tracked independently of the template itself.
//
// CurrentProgress counts completed days and is monotonically
// non-decreasing while the plan is active; once IsCompleted is set no
// further checkpoint may advance it.
type UserPlan struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	PlanType        PlanType           `bson:"planType" json:"planType"`
	TemplateID      primitive.ObjectID `bson:"templateId" json:"templateId"` // Reference to the template plan
	Title           string             `bson:"title" json:"title"`
	StartDate       time.Time          `bson:"startDate" json:"startDate"`
	TargetDays      int                `bson:"targetDays" json:"targetDays"`
	CurrentProgress int                `bson:"currentProgress" json:"currentProgress"` // Completed day count
	IsCompleted     bool               `bson:"isCompleted" json:"isCompleted"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
