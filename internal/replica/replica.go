// Package replica is the sync client's locally persisted copy of the Record
// Store collections. Every mutation applies the same derived-field rules as the
// server, appends an activity entry and persists the whole state before
// returning.
package replica

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
)

type Options struct {
	Logger *zap.Logger
	Now    func() time.Time
	NewID  func() string
}

// Replica owns the in-memory state and its persister.
type Replica struct {
	mu     sync.RWMutex
	state  State
	store  Persister
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// Open loads the persisted state, starting from an empty shell when nothing is stored.
func Open(ctx context.Context, store Persister, opts Options) (*Replica, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	state, found, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		state = NewState()
	}
	return &Replica{
		state:  state,
		store:  store,
		logger: opts.Logger,
		now:    opts.Now,
		newID:  opts.NewID,
	}, nil
}

// Close releases the persister.
func (r *Replica) Close() error {
	return r.store.Close()
}

// mutate runs fn against a copy of the state and installs the copy only when
// fn succeeds and the result is persisted.
func (r *Replica) mutate(ctx context.Context, fn func(s *State) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.state.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := r.store.Save(ctx, next); err != nil {
		return apperr.Internal("persist replica", err)
	}
	r.state = next
	return nil
}

func (r *Replica) read(fn func(s *State)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(&r.state)
}

func (r *Replica) log(s *State, a domain.Activity) {
	a.ID = r.newID()
	a.Timestamp = r.now()
	s.Activities = append(s.Activities, a)
}

// Snapshot returns a copy of the whole state.
func (r *Replica) Snapshot() State {
	var out State
	r.read(func(s *State) { out = s.clone() })
	return out
}

func (r *Replica) Members() []domain.Member {
	var out []domain.Member
	r.read(func(s *State) { out = slices.Clone(s.Members) })
	return out
}

func (r *Replica) Trainers() []domain.Trainer {
	var out []domain.Trainer
	r.read(func(s *State) { out = slices.Clone(s.Trainers) })
	return out
}

func (r *Replica) Visitors() []domain.Visitor {
	var out []domain.Visitor
	r.read(func(s *State) { out = slices.Clone(s.Visitors) })
	return out
}

func (r *Replica) Invoices() []domain.Invoice {
	var out []domain.Invoice
	r.read(func(s *State) { out = slices.Clone(s.Invoices) })
	return out
}

func (r *Replica) FollowUps() []domain.FollowUp {
	var out []domain.FollowUp
	r.read(func(s *State) { out = slices.Clone(s.FollowUps) })
	return out
}

// Activities returns the log oldest first.
func (r *Replica) Activities() []domain.Activity {
	var out []domain.Activity
	r.read(func(s *State) { out = slices.Clone(s.Activities) })
	return out
}

func (r *Replica) CheckIns() []domain.CheckIn {
	var out []domain.CheckIn
	r.read(func(s *State) { out = slices.Clone(s.CheckIns) })
	return out
}

func (r *Replica) Member(id string) (domain.Member, error) {
	var (
		m     domain.Member
		found bool
	)
	r.read(func(s *State) {
		if i := indexOf(s.Members, id); i >= 0 {
			m, found = s.Members[i], true
		}
	})
	if !found {
		return domain.Member{}, apperr.NotFound("member")
	}
	return m, nil
}

// --- Members ---

// checkContact rejects an email or phone already held by another member.
func checkContact(s *State, m *domain.Member) error {
	for _, other := range s.Members {
		if other.ID == m.ID {
			continue
		}
		if other.Email == m.Email {
			return apperr.Conflict("a member with this email already exists")
		}
		if other.Phone == m.Phone {
			return apperr.Conflict("a member with this phone number already exists")
		}
	}
	return nil
}

func checkTrainer(s *State, id *string) error {
	if id == nil || indexOf(s.Trainers, *id) >= 0 {
		return nil
	}
	return apperr.Field("assignedTrainer", "trainer not found")
}

func (r *Replica) AddMember(ctx context.Context, m domain.Member) (domain.Member, error) {
	err := r.mutate(ctx, func(s *State) error {
		if err := m.PrepareNew(r.newID(), r.now()); err != nil {
			return err
		}
		if err := checkContact(s, &m); err != nil {
			return err
		}
		if err := checkTrainer(s, m.AssignedTrainer); err != nil {
			return err
		}
		s.Members = append(s.Members, m)
		r.log(s, domain.NewActivity(domain.ActivityMember, "Member added", m.Name,
			fmt.Sprintf("%s membership until %s", m.MembershipType, m.ExpiryDate.Format(domain.DateLayout))).ForMember(m.ID))
		return nil
	})
	return m, err
}

// UpdateMember merges patch into the member. A new term or start date moves
// the expiry unless the patch sets it.
func (r *Replica) UpdateMember(ctx context.Context, id string, patch domain.MemberPatch) (domain.Member, error) {
	var m domain.Member
	err := r.mutate(ctx, func(s *State) error {
		i := indexOf(s.Members, id)
		if i < 0 {
			return apperr.NotFound("member")
		}
		m = s.Members[i]
		now := r.now()
		changed := patch.Apply(&m, now)
		if len(changed) == 0 {
			return nil
		}
		if err := patch.Rederive(&m); err != nil {
			return err
		}
		if err := domain.Validate(&m); err != nil {
			return err
		}
		if patch.TouchesContact() {
			if err := checkContact(s, &m); err != nil {
				return err
			}
		}
		if patch.AssignedTrainer != nil {
			if err := checkTrainer(s, m.AssignedTrainer); err != nil {
				return err
			}
		}
		s.Members[i] = m
		r.log(s, domain.NewActivity(domain.ActivityMember, "Member updated", m.Name, changedDetails(changed)).ForMember(m.ID))
		return nil
	})
	return m, err
}

// DeleteMember removes the member together with its invoices and follow-ups.
func (r *Replica) DeleteMember(ctx context.Context, id string) error {
	return r.mutate(ctx, func(s *State) error {
		i := indexOf(s.Members, id)
		if i < 0 {
			return apperr.NotFound("member")
		}
		m := s.Members[i]
		s.Members = slices.Delete(s.Members, i, i+1)
		s.Invoices = slices.DeleteFunc(s.Invoices, func(inv domain.Invoice) bool { return inv.MemberID == id })
		s.FollowUps = slices.DeleteFunc(s.FollowUps, func(f domain.FollowUp) bool {
			return f.MemberID != nil && *f.MemberID == id
		})
		r.log(s, domain.NewActivity(domain.ActivityMember, "Member deleted", m.Name, "Deleted member "+m.Name))
		return nil
	})
}

// AddCheckIn records a visit for an active member.
func (r *Replica) AddCheckIn(ctx context.Context, memberID string) (domain.CheckIn, domain.Member, error) {
	var (
		checkIn domain.CheckIn
		m       domain.Member
	)
	err := r.mutate(ctx, func(s *State) error {
		i := indexOf(s.Members, memberID)
		if i < 0 {
			return apperr.NotFound("member")
		}
		m = s.Members[i]
		now := r.now()
		if err := m.RecordVisit(now); err != nil {
			return err
		}
		s.Members[i] = m
		checkIn = domain.NewCheckIn(r.newID(), &m, now)
		s.CheckIns = append(s.CheckIns, checkIn)
		r.log(s, domain.NewActivity(domain.ActivityCheckIn, "Member checked in", m.Name,
			fmt.Sprintf("Visit #%d", m.TotalVisits)).ForMember(m.ID))
		return nil
	})
	return checkIn, m, err
}

// RenewMember starts a new term at start, or now when start is zero.
func (r *Replica) RenewMember(ctx context.Context, id string, t domain.MembershipType, start time.Time) (domain.Member, error) {
	var m domain.Member
	err := r.mutate(ctx, func(s *State) error {
		i := indexOf(s.Members, id)
		if i < 0 {
			return apperr.NotFound("member")
		}
		m = s.Members[i]
		now := r.now()
		if start.IsZero() {
			start = now
		}
		if err := m.Renew(t, start.UTC(), now); err != nil {
			return err
		}
		s.Members[i] = m
		r.log(s, domain.NewActivity(domain.ActivityMember, "Membership renewed", m.Name,
			fmt.Sprintf("%s membership from %s until %s", m.MembershipType,
				m.StartDate.Format(domain.DateLayout), m.ExpiryDate.Format(domain.DateLayout))).ForMember(m.ID))
		return nil
	})
	return m, err
}

// AutoExpireMembers moves active members past their expiry to expired and
// returns how many changed. Calling it again is a no-op.
func (r *Replica) AutoExpireMembers(ctx context.Context) (int, error) {
	expired := 0
	err := r.mutate(ctx, func(s *State) error {
		now := r.now()
		for i := range s.Members {
			m := &s.Members[i]
			if m.Expire(now) {
				expired++
				r.log(s, domain.NewActivity(domain.ActivityMember, "Membership expired", m.Name,
					"Expired on "+m.ExpiryDate.Format(domain.DateLayout)).ForMember(m.ID))
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		r.logger.Info("Expired lapsed memberships", zap.Int("count", expired))
	}
	return expired, nil
}

func changedDetails(changed []string) string {
	return "Updated " + strings.Join(changed, ", ")
}
