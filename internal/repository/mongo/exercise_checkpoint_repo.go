// internal/repository/mongo/exercise_checkpoint_repo.go
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

const exerciseCheckpointCollectionName = "exercise_checkpoints"

// mongoExerciseCheckpointRepository implements repository.ExerciseCheckpointRepository
type mongoExerciseCheckpointRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseCheckpointRepository creates a new exercise checkpoint repository.
func NewMongoExerciseCheckpointRepository(db *mongo.Database) repository.ExerciseCheckpointRepository {
	return &mongoExerciseCheckpointRepository{
		collection: db.Collection(exerciseCheckpointCollectionName),
	}
}

// Upsert creates the day's checkpoint for one exercise, keyed on
// (planId, exerciseId, date). Re-initializing the same session on the
// same day finds the existing record and leaves its completion state
// alone.
func (r *mongoExerciseCheckpointRepository) Upsert(ctx context.Context, cp *domain.ExerciseCheckpoint) (*domain.ExerciseCheckpoint, error) {
	if cp.PlanID == primitive.NilObjectID || cp.ExerciseID == primitive.NilObjectID {
		return nil, errors.New("exercise checkpoint requires planId and exerciseId")
	}
	date := domain.NormalizeDate(cp.Date)
	now := time.Now().UTC()

	filter := bson.M{
		"planId":     cp.PlanID,
		"exerciseId": cp.ExerciseID,
		"date":       date,
	}
	update := bson.M{
		"$set": bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"userId":       cp.UserID,
			"planId":       cp.PlanID,
			"sessionId":    cp.SessionID,
			"exerciseId":   cp.ExerciseID,
			"exerciseName": cp.ExerciseName,
			"date":         date,
			"completed":    false,
			"pointsEarned": cp.PointsEarned,
			"createdAt":    now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var result domain.ExerciseCheckpoint
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

// GetByID retrieves a single exercise checkpoint.
func (r *mongoExerciseCheckpointRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseCheckpoint, error) {
	var cp domain.ExerciseCheckpoint
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&cp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &cp, nil
}

// GetByUserAndDate returns all of the user's exercise checkpoints for
// one calendar day.
func (r *mongoExerciseCheckpointRepository) GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date time.Time) ([]domain.ExerciseCheckpoint, error) {
	var cps []domain.ExerciseCheckpoint
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
func (r *mongoExerciseCheckpointRepository) Update(ctx context.Context, cp *domain.ExerciseCheckpoint) error {
	if cp.ID == primitive.NilObjectID {
		return errors.New("exercise checkpoint ID is required for update")
	}
	update := bson.M{
		"$set": bson.M{
			"completed":     cp.Completed,
			"setsCompleted": cp.SetsCompleted,
			"repsCompleted": cp.RepsCompleted,
			"weightUsed":    cp.WeightUsed,
			"notes":         cp.Notes,
			"completedAt":   cp.CompletedAt,
			"updatedAt":     time.Now().UTC(),
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

// DeleteByPlanID removes every exercise checkpoint of a plan.
func (r *mongoExerciseCheckpointRepository) DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID})
	return err
}

// EnsureExerciseCheckpointIndexes creates necessary indexes.
func EnsureExerciseCheckpointIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "planId", Value: 1},
				{Key: "exerciseId", Value: 1},
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
