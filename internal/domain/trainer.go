package domain

import (
	"strings"
	"time"
)

// TrainerStatus is the availability of a trainer.
type TrainerStatus string

const (
	TrainerAvailable TrainerStatus = "available"
	TrainerBusy      TrainerStatus = "busy"
)

// Trainer is a staff trainer. CurrentSessions counts sessions in progress and
// TotalSessions counts every session ever booked with the trainer.
type Trainer struct {
	ID              string        `bson:"_id" json:"id" gorm:"primaryKey;size:64"`
	Name            string        `bson:"name" json:"name" gorm:"not null" validate:"required,max=120"`
	Email           string        `bson:"email" json:"email" validate:"omitempty,email"`
	Phone           string        `bson:"phone" json:"phone" validate:"required,min=7,max=20"`
	Specialization  string        `bson:"specialization" json:"specialization" gorm:"index"`
	Status          TrainerStatus `bson:"status" json:"status" gorm:"size:16;index" validate:"required,oneof=available busy"`
	Experience      int           `bson:"experience" json:"experience" validate:"min=0"`
	Certifications  []string      `bson:"certifications" json:"certifications" gorm:"serializer:json"`
	Bio             string        `bson:"bio" json:"bio"`
	JoinDate        time.Time     `bson:"joinDate" json:"joinDate"`
	CurrentSessions int           `bson:"currentSessions" json:"currentSessions" validate:"min=0"`
	TotalSessions   int           `bson:"totalSessions" json:"totalSessions" validate:"min=0"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time     `bson:"updatedAt" json:"updatedAt" gorm:"autoUpdateTime:false"`
}

func (t Trainer) Key() string { return t.ID }

func (t *Trainer) PrepareNew(id string, now time.Time) error {
	t.ID = id
	t.Name = strings.TrimSpace(t.Name)
	t.Email = normalizeEmail(t.Email)
	t.Phone = strings.TrimSpace(t.Phone)
	if t.Status == "" {
		t.Status = TrainerAvailable
	}
	if t.JoinDate.IsZero() {
		t.JoinDate = now
	}
	t.CurrentSessions = 0
	t.TotalSessions = 0
	t.CreatedAt = now
	t.UpdatedAt = now
	return Validate(t)
}

type TrainerPatch struct {
	Name           *string        `json:"name"`
	Email          *string        `json:"email"`
	Phone          *string        `json:"phone"`
	Specialization *string        `json:"specialization"`
	Status         *TrainerStatus `json:"status"`
	Experience     *int           `json:"experience"`
	Certifications *[]string      `json:"certifications"`
	Bio            *string        `json:"bio"`
}

func (p TrainerPatch) Apply(t *Trainer, now time.Time) []string {
	var changed []string
	setString(&changed, "name", p.Name, &t.Name)
	if p.Email != nil && normalizeEmail(*p.Email) != t.Email {
		t.Email = normalizeEmail(*p.Email)
		changed = append(changed, "email")
	}
	setString(&changed, "phone", p.Phone, &t.Phone)
	setString(&changed, "specialization", p.Specialization, &t.Specialization)
	if p.Status != nil && *p.Status != t.Status {
		t.Status = *p.Status
		changed = append(changed, "status")
	}
	if p.Experience != nil && *p.Experience != t.Experience {
		t.Experience = *p.Experience
		changed = append(changed, "experience")
	}
	if p.Certifications != nil {
		t.Certifications = append([]string(nil), (*p.Certifications)...)
		changed = append(changed, "certifications")
	}
	setString(&changed, "bio", p.Bio, &t.Bio)
	if len(changed) > 0 {
		t.UpdatedAt = now
	}
	return changed
}

func setString(changed *[]string, name string, src *string, dst *string) {
	if src == nil {
		return
	}
	v := strings.TrimSpace(*src)
	if v == *dst {
		return
	}
	*dst = v
	*changed = append(*changed, name)
}
