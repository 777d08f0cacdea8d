// internal/repository/mongo/achievement_repo.go
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

const (
	achievementCollectionName = "achievements"
	unlockedCollectionName    = "unlocked_achievements"
)

// mongoAchievementRepository implements repository.AchievementRepository.
// The achievements collection is read-only catalog data seeded
// externally; this repository never writes to it.
type mongoAchievementRepository struct {
	catalog  *mongo.Collection
	unlocked *mongo.Collection
}

// NewMongoAchievementRepository creates a new achievement repository.
func NewMongoAchievementRepository(db *mongo.Database) repository.AchievementRepository {
	return &mongoAchievementRepository{
		catalog:  db.Collection(achievementCollectionName),
		unlocked: db.Collection(unlockedCollectionName),
	}
}

// ListActiveDefinitions returns the active catalog entries.
func (r *mongoAchievementRepository) ListActiveDefinitions(ctx context.Context) ([]domain.AchievementDefinition, error) {
	var defs []domain.AchievementDefinition
	cursor, err := r.catalog.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// ListUnlockedByUser returns every unlock the user has earned.
func (r *mongoAchievementRepository) ListUnlockedByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.UnlockedAchievement, error) {
	var unlocks []domain.UnlockedAchievement
	cursor, err := r.unlocked.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &unlocks); err != nil {
		return nil, err
	}
	return unlocks, nil
}

// InsertUnlocked records a one-time unlock. The unique
// (userId, achievementId) index turns a concurrent double-award into
// ErrDuplicate, which the evaluator treats as "the other evaluation
// won".
func (r *mongoAchievementRepository) InsertUnlocked(ctx context.Context, unlocked *domain.UnlockedAchievement) (primitive.ObjectID, error) {
	if unlocked.UserID == primitive.NilObjectID || unlocked.AchievementID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("unlock requires userId and achievementId")
	}
	unlocked.ID = primitive.NewObjectID()
	if unlocked.UnlockedAt.IsZero() {
		unlocked.UnlockedAt = time.Now().UTC()
	}

	result, err := r.unlocked.InsertOne(ctx, unlocked)
	if err != nil {
		if isDuplicateKey(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted unlock ID")
	}
	return insertedID, nil
}

// EnsureAchievementIndexes creates necessary indexes on the unlock
// collection. The unique pair index is the never-re-awarded guarantee.
func EnsureAchievementIndexes(ctx context.Context, unlocked *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "achievementId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = unlocked.Indexes().CreateMany(ctx, indexes)
}
