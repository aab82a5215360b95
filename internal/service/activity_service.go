package service

import (
	"context"

	"go.uber.org/zap"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

type ActivityService interface {
	List(ctx context.Context, q repository.ListQuery) ([]domain.Activity, repository.Pagination, error)
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int64, error)
}

type activityService struct {
	activities repository.ActivityRepository
	logger     *zap.Logger
}

func NewActivityService(repos repository.Repositories, env Env) ActivityService {
	env = env.withDefaults()
	return &activityService{activities: repos.Activities, logger: env.Logger}
}

func (s *activityService) List(ctx context.Context, q repository.ListQuery) ([]domain.Activity, repository.Pagination, error) {
	return list(ctx, q, repository.ActivitySchema, "activity", s.activities.List)
}

func (s *activityService) Clear(ctx context.Context) (int64, error) {
	n, err := s.activities.Clear(ctx)
	if err != nil {
		return 0, fromRepo(err, "activity")
	}
	s.logger.Info("activity log cleared", zap.Int64("removed", n))
	return n, nil
}

type CheckInService interface {
	List(ctx context.Context, q repository.ListQuery) ([]domain.CheckIn, repository.Pagination, error)
}

type checkInService struct {
	checkIns repository.CheckInRepository
}

func NewCheckInService(repos repository.Repositories) CheckInService {
	return &checkInService{checkIns: repos.CheckIns}
}

func (s *checkInService) List(ctx context.Context, q repository.ListQuery) ([]domain.CheckIn, repository.Pagination, error) {
	return list(ctx, q, repository.CheckInSchema, "check-in", s.checkIns.List)
}
