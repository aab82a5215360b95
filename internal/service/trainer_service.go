package service

import (
	"context"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

// --- Service Interface ---
type TrainerService interface {
	Create(ctx context.Context, t domain.Trainer) (*domain.Trainer, error)
	List(ctx context.Context, q repository.ListQuery) ([]domain.Trainer, repository.Pagination, error)
	Get(ctx context.Context, id string) (*domain.Trainer, error)
	Update(ctx context.Context, id string, patch domain.TrainerPatch) (*domain.Trainer, error)
	// Delete removes the trainer. Members keep their assignedTrainer reference,
	// which is weak and may dangle.
	Delete(ctx context.Context, id string) error
}

// --- Service Implementation ---

// trainerService implements the TrainerService interface.
type trainerService struct {
	recorder
	trainers repository.TrainerRepository
}

func NewTrainerService(repos repository.Repositories, env Env) TrainerService {
	env = env.withDefaults()
	return &trainerService{
		recorder: recorder{env: env, activities: repos.Activities},
		trainers: repos.Trainers,
	}
}

func (s *trainerService) Create(ctx context.Context, t domain.Trainer) (*domain.Trainer, error) {
	if err := t.PrepareNew(s.env.NewID(), s.env.Now()); err != nil {
		return nil, err
	}
	if err := s.trainers.Create(ctx, &t); err != nil {
		return nil, fromRepo(err, "trainer")
	}
	s.record(ctx, domain.NewActivity(domain.ActivityTrainer, "Trainer added", t.Name, t.Specialization))
	return &t, nil
}

func (s *trainerService) List(ctx context.Context, q repository.ListQuery) ([]domain.Trainer, repository.Pagination, error) {
	return list(ctx, q, repository.TrainerSchema, "trainer", s.trainers.List)
}

func (s *trainerService) Get(ctx context.Context, id string) (*domain.Trainer, error) {
	t, err := s.trainers.GetByID(ctx, id)
	return t, fromRepo(err, "trainer")
}

func (s *trainerService) Update(ctx context.Context, id string, patch domain.TrainerPatch) (*domain.Trainer, error) {
	t, err := s.trainers.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "trainer")
	}
	changed := patch.Apply(t, s.env.Now())
	if len(changed) == 0 {
		return t, nil
	}
	if err := domain.Validate(t); err != nil {
		return nil, err
	}
	if err := s.trainers.Update(ctx, t); err != nil {
		return nil, fromRepo(err, "trainer")
	}
	s.record(ctx, domain.NewActivity(domain.ActivityTrainer, "Trainer updated", t.Name, changedDetails(changed)))
	return t, nil
}

func (s *trainerService) Delete(ctx context.Context, id string) error {
	t, err := s.trainers.GetByID(ctx, id)
	if err != nil {
		return fromRepo(err, "trainer")
	}
	if err := s.trainers.Delete(ctx, id); err != nil {
		return fromRepo(err, "trainer")
	}
	s.record(ctx, domain.NewActivity(domain.ActivityTrainer, "Trainer removed", t.Name, ""))
	return nil
}
