// internal/repository/mongo/checkpoint_repo.go
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

const checkpointCollectionName = "daily_checkpoints"

// mongoCheckpointRepository implements repository.CheckpointRepository
type mongoCheckpointRepository struct {
	collection *mongo.Collection
}

// NewMongoCheckpointRepository creates a new daily checkpoint repository.
func NewMongoCheckpointRepository(db *mongo.Database) repository.CheckpointRepository {
	return &mongoCheckpointRepository{
		collection: db.Collection(checkpointCollectionName),
	}
}

// Upsert completes the checkpoint for (planId, date) in a single
// FindOneAndUpdate guarded by the unique index, so there is no
// check-then-insert race window. Points and creation fields are written
// only on insert; repeated completions of the same date update the
// existing record. Notes are set only when non-empty so a repeat call
// without notes keeps the prior ones.
func (r *mongoCheckpointRepository) Upsert(ctx context.Context, cp *domain.Checkpoint) (*domain.Checkpoint, bool, error) {
	if cp.PlanID == primitive.NilObjectID || cp.UserID == primitive.NilObjectID {
		return nil, false, errors.New("checkpoint requires planId and userId")
	}
	date := domain.NormalizeDate(cp.Date)
	now := time.Now().UTC()

	filter := bson.M{
		"planId": cp.PlanID,
		"date":   date,
	}
	set := bson.M{
		"completed": true,
		"updatedAt": now,
	}
	if cp.Notes != "" {
		set["notes"] = cp.Notes
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"userId":       cp.UserID,
			"planId":       cp.PlanID,
			"date":         date,
			"pointsEarned": cp.PointsEarned,
			"createdAt":    now,
		},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	created := false
	if err != nil {
		if !isDuplicateKey(err) {
			return nil, false, err
		}
		// Lost the upsert race to a concurrent completion of the same
		// date; the other writer's record is the one, fall through and
		// read it.
	} else {
		created = res.UpsertedCount == 1
	}

	var result domain.Checkpoint
	if err := r.collection.FindOne(ctx, filter).Decode(&result); err != nil {
		return nil, false, err
	}
	return &result, created, nil
}

// GetByPlanAndDate fetches the checkpoint for a single day.
func (r *mongoCheckpointRepository) GetByPlanAndDate(ctx context.Context, planID primitive.ObjectID, date time.Time) (*domain.Checkpoint, error) {
	var cp domain.Checkpoint
	filter := bson.M{
		"planId": planID,
		"date":   domain.NormalizeDate(date),
	}
	err := r.collection.FindOne(ctx, filter).Decode(&cp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &cp, nil
}

// GetByUserAndDateRange returns the user's checkpoints with date in
// [from, to], newest first. Used by the streak walk.
func (r *mongoCheckpointRepository) GetByUserAndDateRange(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.Checkpoint, error) {
	var cps []domain.Checkpoint
	filter := bson.M{
		"userId": userID,
		"date": bson.M{
			"$gte": domain.NormalizeDate(from),
			"$lte": domain.NormalizeDate(to),
		},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &cps); err != nil {
		return nil, err
	}
	return cps, nil
}

// DeleteByPlanID removes every checkpoint of a plan. Deleting by filter
// matches zero documents on retry, so a re-attempted purge is safe.
func (r *mongoCheckpointRepository) DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID})
	return err
}

// EnsureCheckpointIndexes creates necessary indexes. The unique
// (planId, date) index is the storage-level arbiter of the
// one-checkpoint-per-day invariant.
func EnsureCheckpointIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
