package domain

import (
	"strings"
	"time"
)

type VisitorStatus string

const (
	VisitorCheckedIn  VisitorStatus = "checked_in"
	VisitorCheckedOut VisitorStatus = "checked_out"
	VisitorConverted  VisitorStatus = "converted"
)

// Visitor is a walk-in guest or prospective member.
type Visitor struct {
	ID           string        `bson:"_id" json:"id" gorm:"primaryKey;size:64"`
	Name         string        `bson:"name" json:"name" gorm:"not null" validate:"required,max=120"`
	Phone        string        `bson:"phone" json:"phone" validate:"required,min=7,max=20"`
	Email        string        `bson:"email" json:"email" validate:"omitempty,email"`
	Purpose      string        `bson:"purpose" json:"purpose" gorm:"index"`
	Status       VisitorStatus `bson:"status" json:"status" gorm:"size:16;index" validate:"required,oneof=checked_in checked_out converted"`
	CheckInTime  time.Time     `bson:"checkInTime" json:"checkInTime" gorm:"index"`
	CheckOutTime *time.Time    `bson:"checkOutTime" json:"checkOutTime"`
	HostMember   string        `bson:"hostMember" json:"hostMember"`
	Notes        string        `bson:"notes" json:"notes"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt" gorm:"autoUpdateTime:false"`
}

func (v Visitor) Key() string { return v.ID }

func (v *Visitor) PrepareNew(id string, now time.Time) error {
	v.ID = id
	v.Name = strings.TrimSpace(v.Name)
	v.Email = normalizeEmail(v.Email)
	v.Phone = strings.TrimSpace(v.Phone)
	if v.Status == "" {
		v.Status = VisitorCheckedIn
	}
	if v.CheckInTime.IsZero() {
		v.CheckInTime = now
	}
	v.CheckOutTime = nil
	if v.Status == VisitorCheckedOut {
		out := now
		v.CheckOutTime = &out
	}
	v.CreatedAt = now
	v.UpdatedAt = now
	return Validate(v)
}

type VisitorPatch struct {
	Name       *string        `json:"name"`
	Phone      *string        `json:"phone"`
	Email      *string        `json:"email"`
	Purpose    *string        `json:"purpose"`
	Status     *VisitorStatus `json:"status"`
	HostMember *string        `json:"hostMember"`
	Notes      *string        `json:"notes"`
}

// Apply merges the patch into v. Checking out stamps CheckOutTime once.
func (p VisitorPatch) Apply(v *Visitor, now time.Time) []string {
	var changed []string
	setString(&changed, "name", p.Name, &v.Name)
	setString(&changed, "phone", p.Phone, &v.Phone)
	if p.Email != nil && normalizeEmail(*p.Email) != v.Email {
		v.Email = normalizeEmail(*p.Email)
		changed = append(changed, "email")
	}
	setString(&changed, "purpose", p.Purpose, &v.Purpose)
	if p.Status != nil && *p.Status != v.Status {
		v.Status = *p.Status
		if v.Status == VisitorCheckedOut && v.CheckOutTime == nil {
			out := now
			v.CheckOutTime = &out
		}
		changed = append(changed, "status")
	}
	setString(&changed, "hostMember", p.HostMember, &v.HostMember)
	setString(&changed, "notes", p.Notes, &v.Notes)
	if len(changed) > 0 {
		v.UpdatedAt = now
	}
	return changed
}
