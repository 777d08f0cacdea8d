// internal/repository/mongo/level_repo.go
package mongo

import (
	"context"

	"vivafit/wellness-app/internal/domain"
	"vivafit/wellness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const levelCollectionName = "levels"

// mongoLevelRepository implements repository.LevelRepository over the
// read-only level catalog collection.
type mongoLevelRepository struct {
	collection *mongo.Collection
}

// NewMongoLevelRepository creates a new level catalog repository.
func NewMongoLevelRepository(db *mongo.Database) repository.LevelRepository {
	return &mongoLevelRepository{
		collection: db.Collection(levelCollectionName),
	}
}

// ListDefinitions returns the catalog ordered by minPoints ascending,
// the order the resolver's bucket scan expects.
func (r *mongoLevelRepository) ListDefinitions(ctx context.Context) ([]domain.LevelDefinition, error) {
	var defs []domain.LevelDefinition
	findOptions := options.Find().SetSort(bson.D{{Key: "minPoints", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}
