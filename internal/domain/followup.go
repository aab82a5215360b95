package domain

import (
	"strings"
	"time"

	"tristar/fitness-hub/internal/apperr"
)

// FollowUpType is the kind of reminder or task.
type FollowUpType string

const (
	FollowUpPaymentReminder   FollowUpType = "payment_reminder"
	FollowUpMembershipRenewal FollowUpType = "membership_renewal"
	FollowUpVisitReminder     FollowUpType = "visit_reminder"
	FollowUpGeneral           FollowUpType = "general"
	FollowUpMembershipExpiry  FollowUpType = "membership_expiry"
	FollowUpInquiry           FollowUpType = "inquiry"
	FollowUpMaintenance       FollowUpType = "maintenance"
	FollowUpComplaint         FollowUpType = "complaint"
	FollowUpStaff             FollowUpType = "staff"
	FollowUpInventory         FollowUpType = "inventory"
	FollowUpMarketing         FollowUpType = "marketing"
	FollowUpEvent             FollowUpType = "event"
	FollowUpMembershipInquiry FollowUpType = "membership_inquiry"
	FollowUpTrialRequest      FollowUpType = "trial_request"
	FollowUpPriceInquiry      FollowUpType = "price_inquiry"
	FollowUpFacilityTour      FollowUpType = "facility_tour"
	FollowUpCallbackRequest   FollowUpType = "callback_request"
	FollowUpGeneralInquiry    FollowUpType = "general_inquiry"
)

var followUpTypes = map[FollowUpType]struct{}{
	FollowUpPaymentReminder: {}, FollowUpMembershipRenewal: {}, FollowUpVisitReminder: {},
	FollowUpGeneral: {}, FollowUpMembershipExpiry: {}, FollowUpInquiry: {},
	FollowUpMaintenance: {}, FollowUpComplaint: {}, FollowUpStaff: {},
	FollowUpInventory: {}, FollowUpMarketing: {}, FollowUpEvent: {},
	FollowUpMembershipInquiry: {}, FollowUpTrialRequest: {}, FollowUpPriceInquiry: {},
	FollowUpFacilityTour: {}, FollowUpCallbackRequest: {}, FollowUpGeneralInquiry: {},
}

func (t FollowUpType) Valid() bool {
	_, ok := followUpTypes[t]
	return ok
}

type FollowUpStatus string

const (
	FollowUpPending    FollowUpStatus = "pending"
	FollowUpInProgress FollowUpStatus = "in_progress"
	FollowUpCompleted  FollowUpStatus = "completed"
	FollowUpCancelled  FollowUpStatus = "cancelled"
	FollowUpSnoozed    FollowUpStatus = "snoozed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// FollowUp is a task about exactly one member or one visitor.
// CompletedAt is set if and only if Status is completed.
type FollowUp struct {
	ID          string         `bson:"_id" json:"id" gorm:"primaryKey;size:64"`
	MemberID    *string        `bson:"memberId" json:"memberId" gorm:"size:64;index"`
	VisitorID   *string        `bson:"visitorId" json:"visitorId" gorm:"size:64;index"`
	SubjectName string         `bson:"subjectName" json:"subjectName"`
	Type        FollowUpType   `bson:"type" json:"type" gorm:"size:32;index" validate:"required,followup_type"`
	Status      FollowUpStatus `bson:"status" json:"status" gorm:"size:16;index" validate:"required,oneof=pending in_progress completed cancelled snoozed"`
	Priority    Priority       `bson:"priority" json:"priority" gorm:"size:8" validate:"required,oneof=low medium high"`
	DueDate     time.Time      `bson:"dueDate" json:"dueDate" gorm:"index" validate:"required"`
	Notes       string         `bson:"notes" json:"notes"`
	CompletedAt *time.Time     `bson:"completedAt" json:"completedAt"`
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time      `bson:"updatedAt" json:"updatedAt" gorm:"autoUpdateTime:false"`
}

func (f FollowUp) Key() string { return f.ID }

// Validate checks tags and the member-xor-visitor reference rule.
func (f *FollowUp) Validate() error {
	hasMember, hasVisitor := f.MemberID != nil, f.VisitorID != nil
	if hasMember == hasVisitor {
		return apperr.Field("memberId", "exactly one of memberId or visitorId must be set")
	}
	return Validate(f)
}

// SetStatus changes the status and keeps CompletedAt in step with it.
func (f *FollowUp) SetStatus(status FollowUpStatus, now time.Time) bool {
	changed := status != f.Status
	f.Status = status
	switch {
	case status == FollowUpCompleted && f.CompletedAt == nil:
		done := now
		f.CompletedAt = &done
	case status != FollowUpCompleted:
		f.CompletedAt = nil
	}
	if changed {
		f.UpdatedAt = now
	}
	return changed
}

func (f *FollowUp) PrepareNew(id, subjectName string, now time.Time) error {
	f.ID = id
	f.MemberID = normalizeRef(f.MemberID)
	f.VisitorID = normalizeRef(f.VisitorID)
	f.SubjectName = subjectName
	f.Notes = strings.TrimSpace(f.Notes)
	if f.Status == "" {
		f.Status = FollowUpPending
	}
	if f.Priority == "" {
		f.Priority = PriorityMedium
	}
	f.CompletedAt = nil
	f.SetStatus(f.Status, now)
	f.CreatedAt = now
	f.UpdatedAt = now
	return f.Validate()
}

type FollowUpPatch struct {
	Type     *FollowUpType   `json:"type"`
	Status   *FollowUpStatus `json:"status"`
	Priority *Priority       `json:"priority"`
	DueDate  *time.Time      `json:"dueDate"`
	Notes    *string         `json:"notes"`
}

func (p FollowUpPatch) Apply(f *FollowUp, now time.Time) []string {
	var changed []string
	if p.Type != nil && *p.Type != f.Type {
		f.Type = *p.Type
		changed = append(changed, "type")
	}
	if p.Status != nil && f.SetStatus(*p.Status, now) {
		changed = append(changed, "status")
	}
	if p.Priority != nil && *p.Priority != f.Priority {
		f.Priority = *p.Priority
		changed = append(changed, "priority")
	}
	if p.DueDate != nil && !p.DueDate.Equal(f.DueDate) {
		f.DueDate = p.DueDate.UTC()
		changed = append(changed, "dueDate")
	}
	setString(&changed, "notes", p.Notes, &f.Notes)
	if len(changed) > 0 {
		f.UpdatedAt = now
	}
	return changed
}
