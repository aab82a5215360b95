package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

const (
	DefaultExpiringDays = 30
	MaxExpiringDays     = 90

	recentActivityWindow = 10
	statsActivityWindow  = 5
)

// MemberDetails is a member together with its related records.
type MemberDetails struct {
	domain.Member
	Sessions         []domain.Session  `json:"sessions"`
	Invoices         []domain.Invoice  `json:"invoices"`
	RecentActivities []domain.Activity `json:"recentActivities"`
}

// RenewRequest starts a new membership term. StartDate defaults to now.
type RenewRequest struct {
	MembershipType domain.MembershipType `json:"membershipType" binding:"required,oneof=monthly quarterly annual"`
	StartDate      *time.Time            `json:"startDate"`
	CreateInvoice  bool                  `json:"createInvoice"`
}

type RenewResult struct {
	Member  *domain.Member  `json:"member"`
	Invoice *domain.Invoice `json:"invoice,omitempty"`
}

type SessionStats struct {
	Total    int                          `json:"total"`
	ByStatus map[domain.SessionStatus]int `json:"byStatus"`
}

type InvoiceStats struct {
	Total          int                                   `json:"total"`
	ByStatus       map[domain.InvoiceStatus]int          `json:"byStatus"`
	AmountByStatus map[domain.InvoiceStatus]domain.Money `json:"amountByStatus"`
	TotalRevenue   domain.Money                          `json:"totalRevenue"`
}

// MemberStats aggregates a member's history.
type MemberStats struct {
	MemberID         string              `json:"memberId"`
	Name             string              `json:"name"`
	Status           domain.MemberStatus `json:"status"`
	TotalVisits      int                 `json:"totalVisits"`
	LastVisit        *time.Time          `json:"lastVisit"`
	Sessions         SessionStats        `json:"sessions"`
	Invoices         InvoiceStats        `json:"invoices"`
	MembershipDays   int                 `json:"membershipDays"`
	DaysUntilExpiry  int                 `json:"daysUntilExpiry"`
	RecentActivities []domain.Activity   `json:"recentActivities"`
}

// --- Service Interface ---
type MemberService interface {
	Create(ctx context.Context, m domain.Member) (*domain.Member, error)
	List(ctx context.Context, q repository.ListQuery) ([]domain.Member, repository.Pagination, error)
	Get(ctx context.Context, id string) (*MemberDetails, error)
	Update(ctx context.Context, id string, patch domain.MemberPatch) (*domain.Member, error)
	Delete(ctx context.Context, id string) error
	CheckIn(ctx context.Context, id string) (*domain.Member, *domain.CheckIn, error)
	Renew(ctx context.Context, id string, req RenewRequest) (*RenewResult, error)
	ExpiringSoon(ctx context.Context, days int) ([]domain.Member, error)
	Stats(ctx context.Context, id string) (*MemberStats, error)
	ExpireLapsed(ctx context.Context) ([]domain.Member, error)
}

// --- Service Implementation ---

type memberService struct {
	recorder
	repos    repository.Repositories
	invoices InvoiceService
	pricing  domain.Pricing
}

// NewMemberService creates a member service. invoices issues renewal invoices.
func NewMemberService(repos repository.Repositories, invoices InvoiceService, pricing domain.Pricing, env Env) MemberService {
	env = env.withDefaults()
	return &memberService{
		recorder: recorder{env: env, activities: repos.Activities},
		repos:    repos,
		invoices: invoices,
		pricing:  pricing,
	}
}

func (s *memberService) Create(ctx context.Context, m domain.Member) (*domain.Member, error) {
	if err := m.PrepareNew(s.env.NewID(), s.env.Now()); err != nil {
		return nil, err
	}
	if err := s.checkContact(ctx, &m); err != nil {
		return nil, err
	}
	if err := s.checkTrainer(ctx, m.AssignedTrainer); err != nil {
		return nil, err
	}
	if err := s.repos.Members.Create(ctx, &m); err != nil {
		// Lost a race with a concurrent registration; the unique index caught it.
		return nil, fromRepo(err, "member")
	}

	s.record(ctx, domain.NewActivity(domain.ActivityMember, "Member registered", m.Name,
		fmt.Sprintf("%s membership until %s", m.MembershipType, m.ExpiryDate.Format(domain.DateLayout))).ForMember(m.ID))
	return &m, nil
}

// checkContact fails with a conflict when another member holds m's email or phone.
func (s *memberService) checkContact(ctx context.Context, m *domain.Member) error {
	other, err := s.repos.Members.FindByContact(ctx, m.Email, m.Phone, m.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fromRepo(err, "member")
	}
	if other.Email == m.Email {
		return apperr.Conflict("a member with this email already exists")
	}
	return apperr.Conflict("a member with this phone number already exists")
}

func (s *memberService) checkTrainer(ctx context.Context, trainerID *string) error {
	if trainerID == nil {
		return nil
	}
	_, err := s.repos.Trainers.GetByID(ctx, *trainerID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Validation("validation failed", apperr.FieldError{Field: "assignedTrainer", Message: "refers to an unknown trainer"})
	}
	return fromRepo(err, "trainer")
}

func (s *memberService) List(ctx context.Context, q repository.ListQuery) ([]domain.Member, repository.Pagination, error) {
	return list(ctx, q, repository.MemberSchema, "member", s.repos.Members.List)
}

func (s *memberService) Get(ctx context.Context, id string) (*MemberDetails, error) {
	m, err := s.repos.Members.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "member")
	}
	sessions, err := s.repos.Sessions.FindBy(ctx, "memberId", id)
	if err != nil {
		return nil, fromRepo(err, "session")
	}
	invoices, err := s.repos.Invoices.FindBy(ctx, "memberId", id)
	if err != nil {
		return nil, fromRepo(err, "invoice")
	}
	activities, err := s.recentActivities(ctx, id, recentActivityWindow)
	if err != nil {
		return nil, err
	}
	return &MemberDetails{Member: *m, Sessions: sessions, Invoices: invoices, RecentActivities: activities}, nil
}

func (s *memberService) recentActivities(ctx context.Context, memberID string, n int) ([]domain.Activity, error) {
	q := repository.ListQuery{Filters: map[string]string{"memberId": memberID}, Limit: n}
	items, _, err := list(ctx, q, repository.ActivitySchema, "activity", s.repos.Activities.List)
	return items, err
}

func (s *memberService) Update(ctx context.Context, id string, patch domain.MemberPatch) (*domain.Member, error) {
	m, err := s.repos.Members.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "member")
	}

	now := s.env.Now()
	changed := patch.Apply(m, now)
	if len(changed) == 0 {
		return m, nil
	}
	if err := patch.Rederive(m); err != nil {
		return nil, err
	}
	if err := domain.Validate(m); err != nil {
		return nil, err
	}
	if patch.TouchesContact() {
		if err := s.checkContact(ctx, m); err != nil {
			return nil, err
		}
	}
	if patch.AssignedTrainer != nil {
		if err := s.checkTrainer(ctx, m.AssignedTrainer); err != nil {
			return nil, err
		}
	}
	if err := s.repos.Members.Update(ctx, m); err != nil {
		return nil, fromRepo(err, "member")
	}

	s.record(ctx, domain.NewActivity(domain.ActivityMember, "Member updated", m.Name, changedDetails(changed)).ForMember(m.ID))
	return m, nil
}

func (s *memberService) Delete(ctx context.Context, id string) error {
	m, err := s.repos.Members.GetByID(ctx, id)
	if err != nil {
		return fromRepo(err, "member")
	}
	if err := s.repos.Members.Delete(ctx, id); err != nil {
		return fromRepo(err, "member")
	}
	s.record(ctx, domain.NewActivity(domain.ActivityMember, "Member deleted", m.Name, "Removed with invoices and follow-ups"))
	return nil
}

func (s *memberService) CheckIn(ctx context.Context, id string) (*domain.Member, *domain.CheckIn, error) {
	now := s.env.Now()
	checkIn := domain.CheckIn{ID: s.env.NewID(), MemberID: id, Timestamp: now, Date: now.Format(domain.DateLayout)}

	m, err := s.repos.Members.RecordCheckIn(ctx, &checkIn)
	if errors.Is(err, repository.ErrPrecondition) {
		return nil, nil, apperr.InvalidState(fmt.Sprintf("membership is %s, only active members can check in", m.Status))
	}
	if err != nil {
		return nil, nil, fromRepo(err, "member")
	}

	s.env.Metrics.CheckIn()
	s.record(ctx, domain.NewActivity(domain.ActivityCheckIn, "Member checked in", m.Name,
		fmt.Sprintf("Visit #%d", m.TotalVisits)).ForMember(m.ID))
	return m, &checkIn, nil
}

func (s *memberService) Renew(ctx context.Context, id string, req RenewRequest) (*RenewResult, error) {
	m, err := s.repos.Members.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "member")
	}

	now := s.env.Now()
	start := now
	if req.StartDate != nil {
		start = req.StartDate.UTC()
	}
	if err := m.Renew(req.MembershipType, start, now); err != nil {
		return nil, err
	}
	if err := s.repos.Members.Update(ctx, m); err != nil {
		return nil, fromRepo(err, "member")
	}
	s.record(ctx, domain.NewActivity(domain.ActivityMember, "Membership renewed", m.Name,
		fmt.Sprintf("%s membership from %s until %s", m.MembershipType,
			m.StartDate.Format(domain.DateLayout), m.ExpiryDate.Format(domain.DateLayout))).ForMember(m.ID))

	result := &RenewResult{Member: m}
	if req.CreateInvoice {
		inv, err := s.invoices.Create(ctx, domain.Invoice{
			MemberID: m.ID,
			Items: []domain.LineItem{{
				Description: fmt.Sprintf("Membership renewal (%s)", m.MembershipType),
				Quantity:    1,
				UnitPrice:   s.pricing.FeeFor(m.MembershipType),
			}},
		})
		if err != nil {
			return nil, err
		}
		result.Invoice = inv
	}
	return result, nil
}

// ExpiringSoon lists active members whose expiry falls within days of now.
// Members already past expiry but not yet swept are included.
func (s *memberService) ExpiringSoon(ctx context.Context, days int) ([]domain.Member, error) {
	if days == 0 {
		days = DefaultExpiringDays
	}
	if days < 1 || days > MaxExpiringDays {
		return nil, apperr.Validation("invalid days",
			apperr.FieldError{Field: "days", Message: fmt.Sprintf("must be between 1 and %d", MaxExpiringDays)})
	}
	members, err := s.repos.Members.ExpiringBefore(ctx, s.env.Now().AddDate(0, 0, days))
	return members, fromRepo(err, "member")
}

func (s *memberService) Stats(ctx context.Context, id string) (*MemberStats, error) {
	m, err := s.repos.Members.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "member")
	}
	sessions, err := s.repos.Sessions.FindBy(ctx, "memberId", id)
	if err != nil {
		return nil, fromRepo(err, "session")
	}
	invoices, err := s.repos.Invoices.FindBy(ctx, "memberId", id)
	if err != nil {
		return nil, fromRepo(err, "invoice")
	}
	activities, err := s.recentActivities(ctx, id, statsActivityWindow)
	if err != nil {
		return nil, err
	}

	now := s.env.Now()
	stats := &MemberStats{
		MemberID:         m.ID,
		Name:             m.Name,
		Status:           m.Status,
		TotalVisits:      m.TotalVisits,
		LastVisit:        m.LastVisit,
		Sessions:         SessionStats{Total: len(sessions), ByStatus: map[domain.SessionStatus]int{}},
		Invoices:         summarizeInvoices(invoices),
		MembershipDays:   daysBetween(m.StartDate, now),
		DaysUntilExpiry:  daysBetween(now, m.ExpiryDate),
		RecentActivities: activities,
	}
	for _, sess := range sessions {
		stats.Sessions.ByStatus[sess.Status]++
	}
	return stats, nil
}

func summarizeInvoices(invoices []domain.Invoice) InvoiceStats {
	out := InvoiceStats{
		Total:          len(invoices),
		ByStatus:       map[domain.InvoiceStatus]int{},
		AmountByStatus: map[domain.InvoiceStatus]domain.Money{},
	}
	for _, inv := range invoices {
		out.ByStatus[inv.Status]++
		out.AmountByStatus[inv.Status] += inv.Total
		if inv.Status == domain.InvoicePaid {
			out.TotalRevenue += inv.Total
		}
	}
	return out
}

// daysBetween counts whole calendar days from a to b; negative when b is earlier.
func daysBetween(a, b time.Time) int {
	day := func(t time.Time) time.Time {
		y, m, d := t.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return int(day(b).Sub(day(a)).Hours() / 24)
}

func (s *memberService) ExpireLapsed(ctx context.Context) ([]domain.Member, error) {
	expired, err := s.repos.Members.ExpireLapsed(ctx, s.env.Now())
	if err != nil {
		return nil, fromRepo(err, "member")
	}
	for _, m := range expired {
		s.record(ctx, domain.NewActivity(domain.ActivityMember, "Membership expired", m.Name,
			"Expired on "+m.ExpiryDate.Format(domain.DateLayout)).ForMember(m.ID))
	}
	if len(expired) > 0 {
		s.env.Metrics.MembersExpired(len(expired))
		s.env.Logger.Info("expired lapsed memberships", zap.Int("count", len(expired)))
	}
	return expired, nil
}
