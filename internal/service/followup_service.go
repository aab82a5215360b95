package service

import (
	"context"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

type FollowUpService interface {
	// Create resolves the subject name from the referenced member or visitor.
	Create(ctx context.Context, f domain.FollowUp) (*domain.FollowUp, error)
	List(ctx context.Context, q repository.ListQuery) ([]domain.FollowUp, repository.Pagination, error)
	Get(ctx context.Context, id string) (*domain.FollowUp, error)
	Update(ctx context.Context, id string, patch domain.FollowUpPatch) (*domain.FollowUp, error)
	Delete(ctx context.Context, id string) error
}

type followUpService struct {
	recorder
	followUps repository.FollowUpRepository
	members   repository.MemberRepository
	visitors  repository.VisitorRepository
}

func NewFollowUpService(repos repository.Repositories, env Env) FollowUpService {
	env = env.withDefaults()
	return &followUpService{
		recorder:  recorder{env: env, activities: repos.Activities},
		followUps: repos.FollowUps,
		members:   repos.Members,
		visitors:  repos.Visitors,
	}
}

func (s *followUpService) Create(ctx context.Context, f domain.FollowUp) (*domain.FollowUp, error) {
	if err := f.PrepareNew(s.env.NewID(), "", s.env.Now()); err != nil {
		return nil, err
	}
	name, err := s.subjectName(ctx, &f)
	if err != nil {
		return nil, err
	}
	f.SubjectName = name
	if err := s.followUps.Create(ctx, &f); err != nil {
		return nil, fromRepo(err, "follow-up")
	}

	a := domain.NewActivity(domain.ActivityFollowUp, "Follow-up created", name, string(f.Type))
	if f.MemberID != nil {
		a = a.ForMember(*f.MemberID)
	}
	s.record(ctx, a)
	return &f, nil
}

func (s *followUpService) subjectName(ctx context.Context, f *domain.FollowUp) (string, error) {
	if f.MemberID != nil {
		m, err := s.members.GetByID(ctx, *f.MemberID)
		if err != nil {
			return "", fromRepo(err, "member")
		}
		return m.Name, nil
	}
	v, err := s.visitors.GetByID(ctx, *f.VisitorID)
	if err != nil {
		return "", fromRepo(err, "visitor")
	}
	return v.Name, nil
}

func (s *followUpService) List(ctx context.Context, q repository.ListQuery) ([]domain.FollowUp, repository.Pagination, error) {
	return list(ctx, q, repository.FollowUpSchema, "follow-up", s.followUps.List)
}

func (s *followUpService) Get(ctx context.Context, id string) (*domain.FollowUp, error) {
	f, err := s.followUps.GetByID(ctx, id)
	return f, fromRepo(err, "follow-up")
}

func (s *followUpService) Update(ctx context.Context, id string, patch domain.FollowUpPatch) (*domain.FollowUp, error) {
	f, err := s.followUps.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "follow-up")
	}
	changed := patch.Apply(f, s.env.Now())
	if len(changed) == 0 {
		return f, nil
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := s.followUps.Update(ctx, f); err != nil {
		return nil, fromRepo(err, "follow-up")
	}

	action := "Follow-up updated"
	if f.Status == domain.FollowUpCompleted && patch.Status != nil {
		action = "Follow-up completed"
	}
	a := domain.NewActivity(domain.ActivityFollowUp, action, f.SubjectName, changedDetails(changed))
	if f.MemberID != nil {
		a = a.ForMember(*f.MemberID)
	}
	s.record(ctx, a)
	return f, nil
}

func (s *followUpService) Delete(ctx context.Context, id string) error {
	f, err := s.followUps.GetByID(ctx, id)
	if err != nil {
		return fromRepo(err, "follow-up")
	}
	if err := s.followUps.Delete(ctx, id); err != nil {
		return fromRepo(err, "follow-up")
	}
	s.record(ctx, domain.NewActivity(domain.ActivityFollowUp, "Follow-up deleted", f.SubjectName, string(f.Type)))
	return nil
}
