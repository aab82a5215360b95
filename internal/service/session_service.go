package service

import (
	"context"

	"go.uber.org/zap"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

type SessionService interface {
	Create(ctx context.Context, sess domain.Session) (*domain.Session, error)
	List(ctx context.Context, q repository.ListQuery) ([]domain.Session, repository.Pagination, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	Update(ctx context.Context, id string, patch domain.SessionPatch) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// sessionService keeps trainer counters in step with sessions: totalSessions
// counts every booking and currentSessions counts sessions in progress.
type sessionService struct {
	recorder
	sessions repository.SessionRepository
	trainers repository.TrainerRepository
	members  repository.MemberRepository
}

func NewSessionService(repos repository.Repositories, env Env) SessionService {
	env = env.withDefaults()
	return &sessionService{
		recorder: recorder{env: env, activities: repos.Activities},
		sessions: repos.Sessions,
		trainers: repos.Trainers,
		members:  repos.Members,
	}
}

func (s *sessionService) Create(ctx context.Context, sess domain.Session) (*domain.Session, error) {
	// Missing references are left to PrepareNew's required-field validation.
	var trainerName, memberName string
	if sess.TrainerID != "" {
		trainer, err := s.trainers.GetByID(ctx, sess.TrainerID)
		if err != nil {
			return nil, fromRepo(err, "trainer")
		}
		trainerName = trainer.Name
	}
	if sess.MemberID != "" {
		member, err := s.members.GetByID(ctx, sess.MemberID)
		if err != nil {
			return nil, fromRepo(err, "member")
		}
		memberName = member.Name
	}
	if err := sess.PrepareNew(s.env.NewID(), trainerName, memberName, s.env.Now()); err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, &sess); err != nil {
		return nil, fromRepo(err, "session")
	}

	active := 0
	if sess.Status.Active() {
		active = 1
	}
	s.adjust(ctx, sess.TrainerID, active, 1)
	s.record(ctx, domain.NewActivity(domain.ActivitySession, "Session booked", memberName,
		"With "+trainerName).ForMember(sess.MemberID))
	return &sess, nil
}

// adjust applies counter deltas. The session write already succeeded, so a
// failure is logged rather than returned.
func (s *sessionService) adjust(ctx context.Context, trainerID string, current, total int) {
	if current == 0 && total == 0 {
		return
	}
	if err := s.trainers.AdjustSessions(ctx, trainerID, current, total); err != nil {
		s.env.Logger.Warn("failed to adjust trainer session counters",
			zap.String("trainerId", trainerID), zap.Error(err))
	}
}

func (s *sessionService) List(ctx context.Context, q repository.ListQuery) ([]domain.Session, repository.Pagination, error) {
	return list(ctx, q, repository.SessionSchema, "session", s.sessions.List)
}

func (s *sessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.sessions.GetByID(ctx, id)
	return sess, fromRepo(err, "session")
}

func (s *sessionService) Update(ctx context.Context, id string, patch domain.SessionPatch) (*domain.Session, error) {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "session")
	}
	changed, delta := patch.Apply(sess, s.env.Now())
	if len(changed) == 0 {
		return sess, nil
	}
	if err := domain.Validate(sess); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, fromRepo(err, "session")
	}
	s.adjust(ctx, sess.TrainerID, delta, 0)
	s.record(ctx, domain.NewActivity(domain.ActivitySession, "Session updated", sess.MemberName,
		changedDetails(changed)).ForMember(sess.MemberID))
	return sess, nil
}

func (s *sessionService) Delete(ctx context.Context, id string) error {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return fromRepo(err, "session")
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fromRepo(err, "session")
	}
	if sess.Status.Active() {
		s.adjust(ctx, sess.TrainerID, -1, 0)
	}
	s.record(ctx, domain.NewActivity(domain.ActivitySession, "Session deleted", sess.MemberName,
		"With "+sess.TrainerName).ForMember(sess.MemberID))
	return nil
}
