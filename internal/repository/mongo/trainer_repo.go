package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

type mongoTrainerRepository struct {
	store[domain.Trainer]
}

func NewTrainerRepository(db *mongo.Database) repository.TrainerRepository {
	return &mongoTrainerRepository{newStore[domain.Trainer](db.Collection(domain.CollectionTrainers), repository.TrainerSchema)}
}

func (r *mongoTrainerRepository) AdjustSessions(ctx context.Context, id string, current, total int) error {
	update := bson.M{
		"$inc": bson.M{"currentSessions": current, "totalSessions": total},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
