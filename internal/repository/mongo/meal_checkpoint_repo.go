// internal/repository/mongo/meal_checkpoint_repo.go
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

const mealCheckpointCollectionName = "meal_checkpoints"

// mongoMealCheckpointRepository implements repository.MealCheckpointRepository
type mongoMealCheckpointRepository struct {
	collection *mongo.Collection
}

// NewMongoMealCheckpointRepository creates a new meal checkpoint repository.
func NewMongoMealCheckpointRepository(db *mongo.Database) repository.MealCheckpointRepository {
	return &mongoMealCheckpointRepository{
		collection: db.Collection(mealCheckpointCollectionName),
	}
}

// Upsert creates the day's checkpoint for one meal item, keyed on
// (planId, mealItemId, date).
func (r *mongoMealCheckpointRepository) Upsert(ctx context.Context, cp *domain.MealCheckpoint) (*domain.MealCheckpoint, error) {
	if cp.PlanID == primitive.NilObjectID || cp.MealItemID == primitive.NilObjectID {
		return nil, errors.New("meal checkpoint requires planId and mealItemId")
	}
	date := domain.NormalizeDate(cp.Date)
	now := time.Now().UTC()

	filter := bson.M{
		"planId":     cp.PlanID,
		"mealItemId": cp.MealItemID,
		"date":       date,
	}
	update := bson.M{
		"$set": bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"userId":       cp.UserID,
			"planId":       cp.PlanID,
			"mealItemId":   cp.MealItemID,
			"mealItemName": cp.MealItemName,
			"date":         date,
			"completed":    false,
			"pointsEarned": cp.PointsEarned,
			"createdAt":    now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var result domain.MealCheckpoint
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

// GetByID retrieves a single meal checkpoint.
func (r *mongoMealCheckpointRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealCheckpoint, error) {
	var cp domain.MealCheckpoint
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&cp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &cp, nil
}

// GetByUserAndDate returns all of the user's meal checkpoints for one
// calendar day.
func (r *mongoMealCheckpointRepository) GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date time.Time) ([]domain.MealCheckpoint, error) {
	var cps []domain.MealCheckpoint
	filter := bson.M{
		"userId": userID,
		"date":   domain.NormalizeDate(date),
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &cps); err != nil {
		return nil, err
	}
	return cps, nil
}

// Update writes back the mutable completion fields.
func (r *mongoMealCheckpointRepository) Update(ctx context.Context, cp *domain.MealCheckpoint) error {
	if cp.ID == primitive.NilObjectID {
		return errors.New("meal checkpoint ID is required for update")
	}
	update := bson.M{
		"$set": bson.M{
			"completed":        cp.Completed,
			"quantityConsumed": cp.QuantityConsumed,
			"caloriesConsumed": cp.CaloriesConsumed,
			"photoUrl":         cp.PhotoURL,
			"notes":            cp.Notes,
			"completedAt":      cp.CompletedAt,
			"updatedAt":        time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": cp.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByPlanID removes every meal checkpoint of a plan.
func (r *mongoMealCheckpointRepository) DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID})
	return err
}

// EnsureMealCheckpointIndexes creates necessary indexes.
func EnsureMealCheckpointIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "planId", Value: 1},
				{Key: "mealItemId", Value: 1},
				{Key: "date", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
