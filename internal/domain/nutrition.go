package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyNutritionGoal holds the water/calorie targets and running
// consumption for one user on one date. One row per (user, date).
type DailyNutritionGoal struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Date            time.Time          `bson:"date" json:"date"`
	WaterTargetML   int                `bson:"waterTargetMl" json:"waterTargetMl"`
	WaterConsumedML int                `bson:"waterConsumedMl" json:"waterConsumedMl"`
	CalorieTarget   float64            `bson:"calorieTarget" json:"calorieTarget"`
	CaloriesEaten   float64            `bson:"caloriesEaten" json:"caloriesEaten"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
