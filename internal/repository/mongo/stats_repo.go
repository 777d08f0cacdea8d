// internal/repository/mongo/stats_repo.go
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

const statsCollectionName = "user_stats"

// Maps the stat field names of the achievement catalog onto the bson
// field names of the user_stats document.
var statFieldToBson = map[string]string{
	domain.StatTotalPoints:      "totalPoints",
	domain.StatTotalCheckpoints: "totalCheckpoints",
	domain.StatTotalWorkouts:    "totalWorkouts",
	domain.StatTotalExercises:   "totalExercises",
	domain.StatTotalMeals:       "totalMeals",
	domain.StatStreakDays:       "streakDays",
}

// mongoStatsRepository implements repository.StatsRepository
type mongoStatsRepository struct {
	collection *mongo.Collection
}

// NewMongoStatsRepository creates a new user stats repository.
func NewMongoStatsRepository(db *mongo.Database) repository.StatsRepository {
	return &mongoStatsRepository{
		collection: db.Collection(statsCollectionName),
	}
}

// GetByUserID returns the user's counters; a user with no document yet
// gets zero-valued stats, not an error.
func (r *mongoStatsRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserStats, error) {
	var stats domain.UserStats
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&stats)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domain.UserStats{UserID: userID}, nil
		}
		return nil, err
	}
	return &stats, nil
}

// Increment applies the deltas as one atomic $inc, upserting the stats
// document on first touch. StreakDays is absolute rather than
// cumulative, so its delta is written with $max semantics via a second
// $set when present.
func (r *mongoStatsRepository) Increment(ctx context.Context, userID primitive.ObjectID, deltas map[string]int) error {
	if userID == primitive.NilObjectID {
		return errors.New("user ID is required")
	}
	inc := bson.M{}
	set := bson.M{"updatedAt": time.Now().UTC()}
	for field, delta := range deltas {
		bsonField, ok := statFieldToBson[field]
		if !ok {
			return errors.New("unknown stat field: " + field)
		}
		if field == domain.StatStreakDays {
			set[bsonField] = delta
			continue
		}
		if delta != 0 {
			inc[bsonField] = delta
		}
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"userId": userID},
	}
	if len(inc) > 0 {
		update["$inc"] = inc
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"userId": userID}, update, options.Update().SetUpsert(true))
	if err != nil && isDuplicateKey(err) {
		// Concurrent first touch; retry against the now-existing doc.
		_, err = r.collection.UpdateOne(ctx, bson.M{"userId": userID}, update)
	}
	return err
}

// EnsureStatsIndexes creates necessary indexes.
func EnsureStatsIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
