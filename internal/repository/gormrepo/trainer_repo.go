package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

type trainerRepo struct {
	store[domain.Trainer]
}

func NewTrainerRepository(db *gorm.DB) repository.TrainerRepository {
	return &trainerRepo{newStore[domain.Trainer](db, repository.TrainerSchema)}
}

// AdjustSessions applies both counter deltas in a single UPDATE.
func (r *trainerRepo) AdjustSessions(ctx context.Context, id string, current, total int) error {
	res := r.db.WithContext(ctx).Model(&domain.Trainer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"current_sessions": gorm.Expr("current_sessions + ?", current),
			"total_sessions":   gorm.Expr("total_sessions + ?", total),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
