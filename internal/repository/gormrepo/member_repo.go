package gormrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

// memberRepo implements repository.MemberRepository.
type memberRepo struct {
	store[domain.Member]
}

func NewMemberRepository(db *gorm.DB) repository.MemberRepository {
	return &memberRepo{newStore[domain.Member](db, repository.MemberSchema)}
}

func (r *memberRepo) FindByContact(ctx context.Context, email, phone, excludeID string) (*domain.Member, error) {
	var m domain.Member
	q := r.db.WithContext(ctx).Where("(email = ? OR phone = ?)", email, phone)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Take(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// RecordCheckIn performs the guarded increment and the check-in insert in one transaction.
func (r *memberRepo) RecordCheckIn(ctx context.Context, checkIn *domain.CheckIn) (*domain.Member, error) {
	var member domain.Member
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Member{}).
			Where("id = ? AND status = ?", checkIn.MemberID, domain.MemberActive).
			Updates(map[string]any{
				"total_visits": gorm.Expr("total_visits + ?", 1),
				"last_visit":   checkIn.Timestamp,
				"updated_at":   checkIn.Timestamp,
			})
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Where("id = ?", checkIn.MemberID).Take(&member).Error; err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return repository.ErrPrecondition
		}
		checkIn.MemberName = member.Name
		return tx.Create(checkIn).Error
	})
	if err != nil {
		if errors.Is(err, repository.ErrPrecondition) {
			return &member, err
		}
		return nil, translate(err)
	}
	return &member, nil
}

func (r *memberRepo) ExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.Member, error) {
	members := []domain.Member{}
	err := r.db.WithContext(ctx).
		Where("status = ? AND expiry_date <= ?", domain.MemberActive, cutoff).
		Order("expiry_date ASC").Order("id ASC").
		Find(&members).Error
	return members, translate(err)
}

func (r *memberRepo) ExpireLapsed(ctx context.Context, now time.Time) ([]domain.Member, error) {
	lapsed := []domain.Member{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status = ? AND expiry_date < ?", domain.MemberActive, now).
			Order("expiry_date ASC").Find(&lapsed).Error; err != nil {
			return err
		}
		if len(lapsed) == 0 {
			return nil
		}
		ids := make([]string, len(lapsed))
		for i := range lapsed {
			ids[i] = lapsed[i].ID
			lapsed[i].Status = domain.MemberExpired
			lapsed[i].UpdatedAt = now
		}
		return tx.Model(&domain.Member{}).
			Where("id IN ? AND status = ?", ids, domain.MemberActive).
			Updates(map[string]any{"status": domain.MemberExpired, "updated_at": now}).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return lapsed, nil
}

// Delete removes the member and cascades to its invoices and follow-ups.
func (r *memberRepo) Delete(ctx context.Context, id string) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&domain.Member{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		if err := tx.Where("member_id = ?", id).Delete(&domain.Invoice{}).Error; err != nil {
			return err
		}
		return tx.Where("member_id = ?", id).Delete(&domain.FollowUp{}).Error
	}))
}
