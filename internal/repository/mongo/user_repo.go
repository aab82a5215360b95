package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	store[domain.User]
}

func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{newStore[domain.User](db.Collection(userCollectionName), repository.UserSchema)}
}

// GetByUsername retrieves a staff account by its login name.
func (r *mongoUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
