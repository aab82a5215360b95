package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

type userRepo struct {
	store[domain.User]
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepo{newStore[domain.User](db, repository.UserSchema)}
}

// GetByUsername retrieves a user by their login name.
func (r *userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
