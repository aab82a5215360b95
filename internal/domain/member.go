package domain

import (
	"strings"
	"time"

	"tristar/fitness-hub/internal/apperr"
)

// MembershipType selects the length of a membership term.
type MembershipType string

const (
	MembershipMonthly   MembershipType = "monthly"
	MembershipQuarterly MembershipType = "quarterly"
	MembershipAnnual    MembershipType = "annual"
)

// Months returns the calendar length of the term, or 0 for unknown types.
func (t MembershipType) Months() int {
	switch t {
	case MembershipMonthly:
		return 1
	case MembershipQuarterly:
		return 3
	case MembershipAnnual:
		return 12
	}
	return 0
}

func (t MembershipType) Valid() bool {
	return t.Months() > 0
}

// MemberStatus is the lifecycle state of a membership.
type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberInactive  MemberStatus = "inactive"
	MemberExpired   MemberStatus = "expired"
	MemberPending   MemberStatus = "pending"
	MemberSuspended MemberStatus = "suspended"
)

// Member is a registered gym member.
type Member struct {
	ID              string         `bson:"_id" json:"id" gorm:"primaryKey;size:64"`
	Name            string         `bson:"name" json:"name" gorm:"not null" validate:"required,max=120"`
	Email           string         `bson:"email" json:"email" gorm:"size:255;uniqueIndex" validate:"required,email"`
	Phone           string         `bson:"phone" json:"phone" gorm:"size:32;uniqueIndex" validate:"required,min=7,max=20"`
	MembershipType  MembershipType `bson:"membershipType" json:"membershipType" gorm:"size:16" validate:"required,oneof=monthly quarterly annual"`
	StartDate       time.Time      `bson:"startDate" json:"startDate" validate:"required"`
	ExpiryDate      time.Time      `bson:"expiryDate" json:"expiryDate" gorm:"index" validate:"required,gtfield=StartDate"`
	Status          MemberStatus   `bson:"status" json:"status" gorm:"size:16;index" validate:"required,oneof=active inactive expired pending suspended"`
	AssignedTrainer *string        `bson:"assignedTrainer" json:"assignedTrainer" gorm:"size:64;index"`
	TotalVisits     int            `bson:"totalVisits" json:"totalVisits" validate:"min=0"`
	LastVisit       *time.Time     `bson:"lastVisit" json:"lastVisit"`
	CreatedAt       time.Time      `bson:"createdAt" json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time      `bson:"updatedAt" json:"updatedAt" gorm:"autoUpdateTime:false"`
}

func (m Member) Key() string { return m.ID }

// AddMonths adds n calendar months, clamping the day to the last day of the target month.
// 2024-01-31 + 1 month is 2024-02-29.
func AddMonths(t time.Time, n int) time.Time {
	y, mo, d := t.Date()
	first := time.Date(y, mo+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// ExpiryFor computes the end of a term starting at start.
func ExpiryFor(start time.Time, t MembershipType) (time.Time, error) {
	if !t.Valid() {
		return time.Time{}, apperr.Field("membershipType", "must be one of: monthly quarterly annual")
	}
	return AddMonths(start, t.Months()), nil
}

// PrepareNew fills the fields derived at registration time and validates the result.
func (m *Member) PrepareNew(id string, now time.Time) error {
	m.ID = id
	m.Name = strings.TrimSpace(m.Name)
	m.Email = normalizeEmail(m.Email)
	m.Phone = strings.TrimSpace(m.Phone)
	m.TotalVisits = 0
	m.LastVisit = nil
	if m.Status == "" {
		m.Status = MemberActive
	}
	if m.StartDate.IsZero() {
		m.StartDate = now
	}
	if m.ExpiryDate.IsZero() && m.MembershipType.Valid() {
		m.ExpiryDate, _ = ExpiryFor(m.StartDate, m.MembershipType)
	}
	m.AssignedTrainer = normalizeRef(m.AssignedTrainer)
	m.CreatedAt = now
	m.UpdatedAt = now
	return Validate(m)
}

// Renew starts a new term of the given type at start and reactivates the member.
func (m *Member) Renew(t MembershipType, start, now time.Time) error {
	expiry, err := ExpiryFor(start, t)
	if err != nil {
		return err
	}
	m.MembershipType = t
	m.StartDate = start
	m.ExpiryDate = expiry
	m.Status = MemberActive
	m.UpdatedAt = now
	return nil
}

// RecordVisit counts a check-in. Only active members may check in.
func (m *Member) RecordVisit(at time.Time) error {
	if m.Status != MemberActive {
		return apperr.InvalidState("membership is " + string(m.Status) + ", only active members can check in")
	}
	m.TotalVisits++
	visit := at
	m.LastVisit = &visit
	m.UpdatedAt = at
	return nil
}

// ShouldExpire reports whether the sweep must move the member to expired.
func (m *Member) ShouldExpire(now time.Time) bool {
	return m.Status == MemberActive && m.ExpiryDate.Before(now)
}

// Expire applies the sweep transition and reports whether anything changed.
func (m *Member) Expire(now time.Time) bool {
	if !m.ShouldExpire(now) {
		return false
	}
	m.Status = MemberExpired
	m.UpdatedAt = now
	return true
}

// MemberPatch carries a partial member update. Nil fields are left untouched;
// an empty AssignedTrainer clears the assignment.
type MemberPatch struct {
	Name            *string         `json:"name"`
	Email           *string         `json:"email"`
	Phone           *string         `json:"phone"`
	MembershipType  *MembershipType `json:"membershipType"`
	Status          *MemberStatus   `json:"status"`
	AssignedTrainer *string         `json:"assignedTrainer"`
	StartDate       *time.Time      `json:"startDate"`
	ExpiryDate      *time.Time      `json:"expiryDate"`
}

// Apply merges the patch into m and returns the names of the changed fields.
func (p MemberPatch) Apply(m *Member, now time.Time) []string {
	var changed []string
	if p.Name != nil && strings.TrimSpace(*p.Name) != m.Name {
		m.Name = strings.TrimSpace(*p.Name)
		changed = append(changed, "name")
	}
	if p.Email != nil && normalizeEmail(*p.Email) != m.Email {
		m.Email = normalizeEmail(*p.Email)
		changed = append(changed, "email")
	}
	if p.Phone != nil && strings.TrimSpace(*p.Phone) != m.Phone {
		m.Phone = strings.TrimSpace(*p.Phone)
		changed = append(changed, "phone")
	}
	if p.MembershipType != nil && *p.MembershipType != m.MembershipType {
		m.MembershipType = *p.MembershipType
		changed = append(changed, "membershipType")
	}
	if p.Status != nil && *p.Status != m.Status {
		m.Status = *p.Status
		changed = append(changed, "status")
	}
	if p.AssignedTrainer != nil {
		ref := normalizeRef(p.AssignedTrainer)
		if !sameRef(ref, m.AssignedTrainer) {
			m.AssignedTrainer = ref
			changed = append(changed, "assignedTrainer")
		}
	}
	if p.StartDate != nil && !p.StartDate.Equal(m.StartDate) {
		m.StartDate = p.StartDate.UTC()
		changed = append(changed, "startDate")
	}
	if p.ExpiryDate != nil && !p.ExpiryDate.Equal(m.ExpiryDate) {
		m.ExpiryDate = p.ExpiryDate.UTC()
		changed = append(changed, "expiryDate")
	}
	if len(changed) > 0 {
		m.UpdatedAt = now
	}
	return changed
}

// Rederive moves the expiry after a new term or start date unless the patch
// set the expiry explicitly.
func (p MemberPatch) Rederive(m *Member) error {
	if p.ExpiryDate != nil || (p.MembershipType == nil && p.StartDate == nil) {
		return nil
	}
	expiry, err := ExpiryFor(m.StartDate, m.MembershipType)
	if err != nil {
		return err
	}
	m.ExpiryDate = expiry
	return nil
}

// TouchesContact reports whether the patch may change a unique contact field.
func (p MemberPatch) TouchesContact() bool {
	return p.Email != nil || p.Phone != nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	v := strings.TrimSpace(*ref)
	if v == "" {
		return nil
	}
	return &v
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
