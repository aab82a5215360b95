package domain

import "time"

// ActivityType groups log entries by the collection they describe.
type ActivityType string

const (
	ActivityMember   ActivityType = "member"
	ActivityInvoice  ActivityType = "invoice"
	ActivityTrainer  ActivityType = "trainer"
	ActivityVisitor  ActivityType = "visitor"
	ActivityFollowUp ActivityType = "followup"
	ActivitySession  ActivityType = "session"
	ActivityCheckIn  ActivityType = "checkin"
	ActivitySystem   ActivityType = "system"
)

// Activity is an append-only audit entry. Entries are never edited.
type Activity struct {
	ID          string       `bson:"_id" json:"id" gorm:"primaryKey;size:64"`
	Type        ActivityType `bson:"type" json:"type" gorm:"size:16;index"`
	Action      string       `bson:"action" json:"action"`
	SubjectName string       `bson:"subjectName" json:"subjectName"`
	Details     string       `bson:"details" json:"details"`
	MemberID    *string      `bson:"memberId" json:"memberId" gorm:"size:64;index"`
	InvoiceID   *string      `bson:"invoiceId" json:"invoiceId" gorm:"size:32;index"`
	Timestamp   time.Time    `bson:"timestamp" json:"timestamp" gorm:"index"`
}

func (a Activity) Key() string { return a.ID }

func NewActivity(kind ActivityType, action, subject, details string) Activity {
	return Activity{Type: kind, Action: action, SubjectName: subject, Details: details}
}

// ForMember links the entry to a member.
func (a Activity) ForMember(id string) Activity {
	a.MemberID = &id
	return a
}

// ForInvoice links the entry to an invoice.
func (a Activity) ForInvoice(id string) Activity {
	a.InvoiceID = &id
	return a
}
