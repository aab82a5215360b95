package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

type activityRepo struct {
	store[domain.Activity]
}

func NewActivityRepository(db *gorm.DB) repository.ActivityRepository {
	return &activityRepo{newStore[domain.Activity](db, repository.ActivitySchema)}
}

func (r *activityRepo) Append(ctx context.Context, a *domain.Activity) error {
	return r.Create(ctx, a)
}

// Clear deletes the whole log and reports how many entries were removed.
func (r *activityRepo) Clear(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Activity{})
	return res.RowsAffected, translate(res.Error)
}
