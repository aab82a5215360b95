package service

import (
	"context"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

type VisitorService interface {
	Create(ctx context.Context, v domain.Visitor) (*domain.Visitor, error)
	List(ctx context.Context, q repository.ListQuery) ([]domain.Visitor, repository.Pagination, error)
	Get(ctx context.Context, id string) (*domain.Visitor, error)
	Update(ctx context.Context, id string, patch domain.VisitorPatch) (*domain.Visitor, error)
	Delete(ctx context.Context, id string) error
}

type visitorService struct {
	recorder
	visitors repository.VisitorRepository
}

func NewVisitorService(repos repository.Repositories, env Env) VisitorService {
	env = env.withDefaults()
	return &visitorService{
		recorder: recorder{env: env, activities: repos.Activities},
		visitors: repos.Visitors,
	}
}

func (s *visitorService) Create(ctx context.Context, v domain.Visitor) (*domain.Visitor, error) {
	if err := v.PrepareNew(s.env.NewID(), s.env.Now()); err != nil {
		return nil, err
	}
	if err := s.visitors.Create(ctx, &v); err != nil {
		return nil, fromRepo(err, "visitor")
	}
	s.record(ctx, domain.NewActivity(domain.ActivityVisitor, "Visitor checked in", v.Name, v.Purpose))
	return &v, nil
}

func (s *visitorService) List(ctx context.Context, q repository.ListQuery) ([]domain.Visitor, repository.Pagination, error) {
	return list(ctx, q, repository.VisitorSchema, "visitor", s.visitors.List)
}

func (s *visitorService) Get(ctx context.Context, id string) (*domain.Visitor, error) {
	v, err := s.visitors.GetByID(ctx, id)
	return v, fromRepo(err, "visitor")
}

func (s *visitorService) Update(ctx context.Context, id string, patch domain.VisitorPatch) (*domain.Visitor, error) {
	v, err := s.visitors.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "visitor")
	}
	changed := patch.Apply(v, s.env.Now())
	if len(changed) == 0 {
		return v, nil
	}
	if err := domain.Validate(v); err != nil {
		return nil, err
	}
	if err := s.visitors.Update(ctx, v); err != nil {
		return nil, fromRepo(err, "visitor")
	}
	s.record(ctx, domain.NewActivity(domain.ActivityVisitor, "Visitor updated", v.Name, changedDetails(changed)))
	return v, nil
}

func (s *visitorService) Delete(ctx context.Context, id string) error {
	v, err := s.visitors.GetByID(ctx, id)
	if err != nil {
		return fromRepo(err, "visitor")
	}
	if err := s.visitors.Delete(ctx, id); err != nil {
		return fromRepo(err, "visitor")
	}
	s.record(ctx, domain.NewActivity(domain.ActivityVisitor, "Visitor removed", v.Name, ""))
	return nil
}
