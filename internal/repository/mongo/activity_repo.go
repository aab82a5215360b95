package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

type mongoActivityRepository struct {
	store[domain.Activity]
}

func NewActivityRepository(db *mongo.Database) repository.ActivityRepository {
	return &mongoActivityRepository{newStore[domain.Activity](db.Collection(domain.CollectionActivities), repository.ActivitySchema)}
}

func (r *mongoActivityRepository) Append(ctx context.Context, a *domain.Activity) error {
	return r.Create(ctx, a)
}

func (r *mongoActivityRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
