// internal/repository/mongo/nutrition_goal_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"vivafit/wellness-app/internal/domain"
	"vivafit/wellness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const nutritionGoalCollectionName = "daily_nutrition_goals"

// mongoNutritionGoalRepository implements repository.NutritionGoalRepository
type mongoNutritionGoalRepository struct {
	collection *mongo.Collection
}

// NewMongoNutritionGoalRepository creates a new nutrition goal repository.
func NewMongoNutritionGoalRepository(db *mongo.Database) repository.NutritionGoalRepository {
	return &mongoNutritionGoalRepository{
		collection: db.Collection(nutritionGoalCollectionName),
	}
}

// Upsert ensures the (userId, date) row exists, writing targets on
// first creation only. Consumption counters always start at zero.
func (r *mongoNutritionGoalRepository) Upsert(ctx context.Context, goal *domain.DailyNutritionGoal) (*domain.DailyNutritionGoal, error) {
	if goal.UserID == primitive.NilObjectID {
		return nil, errors.New("nutrition goal requires userId")
	}
	date := domain.NormalizeDate(goal.Date)
	now := time.Now().UTC()

	filter := bson.M{
		"userId": goal.UserID,
		"date":   date,
	}
	update := bson.M{
		"$set": bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"userId":          goal.UserID,
			"date":            date,
			"waterTargetMl":   goal.WaterTargetML,
			"waterConsumedMl": 0,
			"calorieTarget":   goal.CalorieTarget,
			"caloriesEaten":   0.0,
			"createdAt":       now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var result domain.DailyNutritionGoal
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		if isDuplicateKey(err) {
			if err := r.collection.FindOne(ctx, filter).Decode(&result); err != nil {
				return nil, err
			}
			return &result, nil
		}
		return nil, err
	}
	return &result, nil
}

// GetByID retrieves a single goal row.
func (r *mongoNutritionGoalRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DailyNutritionGoal, error) {
	var goal domain.DailyNutritionGoal
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&goal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &goal, nil
}

// GetByUserAndDate retrieves the goal row for one day.
func (r *mongoNutritionGoalRepository) GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date time.Time) (*domain.DailyNutritionGoal, error) {
	var goal domain.DailyNutritionGoal
	filter := bson.M{
		"userId": userID,
		"date":   domain.NormalizeDate(date),
	}
	err := r.collection.FindOne(ctx, filter).Decode(&goal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &goal, nil
}

// AddWaterConsumed applies a monotone $inc to the consumed-water field.
// No upper clamp: display clamping is the caller's concern.
func (r *mongoNutritionGoalRepository) AddWaterConsumed(ctx context.Context, goalID primitive.ObjectID, amountML int) (*domain.DailyNutritionGoal, error) {
	update := bson.M{
		"$inc": bson.M{"waterConsumedMl": amountML},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var result domain.DailyNutritionGoal
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": goalID}, update, opts).Decode(&result); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

// EnsureNutritionGoalIndexes creates necessary indexes. The unique
// (userId, date) index enforces one row per user per day.
func EnsureNutritionGoalIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
