package domain

import (
	"strings"
	"time"
)

type SessionType string

const (
	SessionPersonal SessionType = "personal"
	SessionGroup    SessionType = "group"
)

type SessionStatus string

const (
	SessionScheduled  SessionStatus = "scheduled"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

// Active reports whether the session counts towards a trainer's current load.
func (s SessionStatus) Active() bool {
	return s == SessionInProgress
}

// Session is a training session between a trainer and a member.
type Session struct {
	ID          string        `bson:"_id" json:"id" gorm:"primaryKey;size:64"`
	TrainerID   string        `bson:"trainerId" json:"trainerId" gorm:"size:64;index" validate:"required"`
	TrainerName string        `bson:"trainerName" json:"trainerName"`
	MemberID    string        `bson:"memberId" json:"memberId" gorm:"size:64;index" validate:"required"`
	MemberName  string        `bson:"memberName" json:"memberName"`
	Type        SessionType   `bson:"type" json:"type" gorm:"size:16" validate:"required,oneof=personal group"`
	Status      SessionStatus `bson:"status" json:"status" gorm:"size:16;index" validate:"required,oneof=scheduled in_progress completed cancelled"`
	StartTime   time.Time     `bson:"startTime" json:"startTime" gorm:"index" validate:"required"`
	EndTime     *time.Time    `bson:"endTime" json:"endTime"`
	Notes       string        `bson:"notes" json:"notes"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt" gorm:"autoUpdateTime:false"`
}

func (s Session) Key() string { return s.ID }

func (s *Session) PrepareNew(id, trainerName, memberName string, now time.Time) error {
	s.ID = id
	s.TrainerName = trainerName
	s.MemberName = memberName
	s.Notes = strings.TrimSpace(s.Notes)
	if s.Type == "" {
		s.Type = SessionPersonal
	}
	if s.Status == "" {
		s.Status = SessionScheduled
	}
	if s.StartTime.IsZero() {
		s.StartTime = now
	}
	if s.Status == SessionCompleted && s.EndTime == nil {
		end := now
		s.EndTime = &end
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	return Validate(s)
}

type SessionPatch struct {
	Status    *SessionStatus `json:"status"`
	StartTime *time.Time     `json:"startTime"`
	EndTime   *time.Time     `json:"endTime"`
	Notes     *string        `json:"notes"`
}

// Apply merges the patch and returns the changed fields plus the change in the
// trainer's current-session count (-1, 0 or +1).
func (p SessionPatch) Apply(s *Session, now time.Time) (changed []string, activeDelta int) {
	if p.Status != nil && *p.Status != s.Status {
		wasActive := s.Status.Active()
		s.Status = *p.Status
		switch {
		case wasActive && !s.Status.Active():
			activeDelta = -1
		case !wasActive && s.Status.Active():
			activeDelta = 1
		}
		if s.Status == SessionCompleted && s.EndTime == nil && p.EndTime == nil {
			end := now
			s.EndTime = &end
		}
		changed = append(changed, "status")
	}
	if p.StartTime != nil && !p.StartTime.Equal(s.StartTime) {
		s.StartTime = p.StartTime.UTC()
		changed = append(changed, "startTime")
	}
	if p.EndTime != nil {
		end := p.EndTime.UTC()
		s.EndTime = &end
		changed = append(changed, "endTime")
	}
	setString(&changed, "notes", p.Notes, &s.Notes)
	if len(changed) > 0 {
		s.UpdatedAt = now
	}
	return changed, activeDelta
}
