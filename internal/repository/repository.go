package repository

import (
	"context"
	"time"

	"tristar/fitness-hub/internal/domain" // Import our defined domain models
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrPrecondition = RepositoryError("precondition failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Entity is implemented by every stored record.
type Entity interface {
	Key() string
}

// Store is the shape shared by every collection.
type Store[T Entity] interface {
	Create(ctx context.Context, v *T) error
	GetByID(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, q ListQuery) ([]T, int64, error)
	// FindBy returns every record whose field equals value, in default sort order.
	FindBy(ctx context.Context, field, value string) ([]T, error)
	All(ctx context.Context) ([]T, error)
	// Update replaces the stored record with v.
	Update(ctx context.Context, v *T) error
	Delete(ctx context.Context, id string) error
}

// MemberRepository defines the interface for interacting with member data.
// Delete removes the member together with its invoices and follow-ups.
type MemberRepository interface {
	Store[domain.Member]
	// FindByContact returns a member other than excludeID holding email or phone.
	FindByContact(ctx context.Context, email, phone, excludeID string) (*domain.Member, error)
	// RecordCheckIn atomically increments totalVisits, sets lastVisit and stores the
	// check-in, provided the member is active. Returns ErrPrecondition otherwise.
	RecordCheckIn(ctx context.Context, checkIn *domain.CheckIn) (*domain.Member, error)
	// ExpiringBefore lists active members expiring at or before cutoff, soonest first.
	ExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.Member, error)
	// ExpireLapsed marks active members whose expiry is before now as expired
	// and returns the members it changed.
	ExpireLapsed(ctx context.Context, now time.Time) ([]domain.Member, error)
}

// InvoiceRepository defines the interface for interacting with invoice data.
type InvoiceRepository interface {
	Store[domain.Invoice]
	// IDs returns every invoice identifier.
	IDs(ctx context.Context) ([]string, error)
}

// TrainerRepository defines the interface for interacting with trainer data.
type TrainerRepository interface {
	Store[domain.Trainer]
	// AdjustSessions adds the deltas to currentSessions and totalSessions.
	AdjustSessions(ctx context.Context, id string, current, total int) error
}

type VisitorRepository interface {
	Store[domain.Visitor]
}

type FollowUpRepository interface {
	Store[domain.FollowUp]
}

type SessionRepository interface {
	Store[domain.Session]
}

// ActivityRepository is append-only apart from the bulk Clear.
type ActivityRepository interface {
	Append(ctx context.Context, a *domain.Activity) error
	List(ctx context.Context, q ListQuery) ([]domain.Activity, int64, error)
	All(ctx context.Context) ([]domain.Activity, error)
	Clear(ctx context.Context) (int64, error)
}

type CheckInRepository interface {
	List(ctx context.Context, q ListQuery) ([]domain.CheckIn, int64, error)
	All(ctx context.Context) ([]domain.CheckIn, error)
}

// UserRepository defines the interface for interacting with staff accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Repositories bundles every collection of one backend.
type Repositories struct {
	Members    MemberRepository
	Invoices   InvoiceRepository
	Trainers   TrainerRepository
	Visitors   VisitorRepository
	FollowUps  FollowUpRepository
	Sessions   SessionRepository
	Activities ActivityRepository
	CheckIns   CheckInRepository
	Users      UserRepository
}
