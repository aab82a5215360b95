package domain

import "time"

// DateLayout is the date-only projection used for CheckIn.Date.
const DateLayout = "2006-01-02"

// CheckIn records one member visit.
type CheckIn struct {
	ID         string    `bson:"_id" json:"id" gorm:"primaryKey;size:64"`
	MemberID   string    `bson:"memberId" json:"memberId" gorm:"size:64;index"`
	MemberName string    `bson:"memberName" json:"memberName"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp" gorm:"index"`
	Date       string    `bson:"date" json:"date" gorm:"size:10;index"`
}

func (c CheckIn) Key() string { return c.ID }

func NewCheckIn(id string, m *Member, at time.Time) CheckIn {
	return CheckIn{
		ID:         id,
		MemberID:   m.ID,
		MemberName: m.Name,
		Timestamp:  at,
		Date:       at.Format(DateLayout),
	}
}
