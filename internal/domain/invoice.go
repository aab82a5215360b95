package domain

import (
	"strings"
	"time"
)

// InvoiceStatus tracks payment state.
type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePending, InvoicePaid, InvoiceOverdue:
		return true
	}
	return false
}

// DefaultPaymentTerm is the gap between issue and due date when none is given.
const DefaultPaymentTerm = 30 * 24 * time.Hour

// LineItem is one billed row. Total is always derived as Quantity x UnitPrice.
type LineItem struct {
	Description string `bson:"description" json:"description" validate:"required"`
	Quantity    int    `bson:"quantity" json:"quantity" validate:"min=1"`
	UnitPrice   Money  `bson:"unitPrice" json:"unitPrice" validate:"min=0"`
	Total       Money  `bson:"total" json:"total"`
}

// Invoice is a bill issued to a member. MemberName is a snapshot taken at creation.
type Invoice struct {
	ID         string        `bson:"_id" json:"id" gorm:"primaryKey;size:32"`
	MemberID   string        `bson:"memberId" json:"memberId" gorm:"size:64;index" validate:"required"`
	MemberName string        `bson:"memberName" json:"memberName"`
	Items      []LineItem    `bson:"items" json:"items" gorm:"serializer:json" validate:"min=1,dive"`
	Subtotal   Money         `bson:"subtotal" json:"subtotal"`
	Tax        Money         `bson:"tax" json:"tax"`
	Total      Money         `bson:"total" json:"total"`
	Status     InvoiceStatus `bson:"status" json:"status" gorm:"size:16;index" validate:"required,oneof=pending paid overdue"`
	DueDate    time.Time     `bson:"dueDate" json:"dueDate" validate:"required"`
	PaidDate   *time.Time    `bson:"paidDate" json:"paidDate"`
	Notes      string        `bson:"notes" json:"notes"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt" gorm:"autoCreateTime:false;index"`
	UpdatedAt  time.Time     `bson:"updatedAt" json:"updatedAt" gorm:"autoUpdateTime:false"`
}

func (inv Invoice) Key() string { return inv.ID }

// ComputeTotals derives line totals, subtotal, tax and grand total from the items.
// The returned slice is a copy; the input is not modified.
func ComputeTotals(items []LineItem) (priced []LineItem, subtotal, tax, total Money) {
	priced = make([]LineItem, len(items))
	for i, item := range items {
		item.Description = strings.TrimSpace(item.Description)
		item.Total = Money(int64(item.UnitPrice) * int64(item.Quantity))
		subtotal += item.Total
		priced[i] = item
	}
	tax = Tax(subtotal)
	return priced, subtotal, tax, subtotal + tax
}

// Recompute overwrites any supplied totals with values derived from the items.
func (inv *Invoice) Recompute() {
	inv.Items, inv.Subtotal, inv.Tax, inv.Total = ComputeTotals(inv.Items)
}

// PrepareNew assigns the identifier, member snapshot, derived totals and defaults.
func (inv *Invoice) PrepareNew(id, memberName string, now time.Time) error {
	inv.ID = id
	inv.MemberName = memberName
	inv.Recompute()
	if inv.Status == "" {
		inv.Status = InvoicePending
	}
	if inv.DueDate.IsZero() {
		inv.DueDate = now.Add(DefaultPaymentTerm)
	}
	inv.PaidDate = nil
	if inv.Status == InvoicePaid {
		paid := now
		inv.PaidDate = &paid
	}
	inv.CreatedAt = now
	inv.UpdatedAt = now
	return Validate(inv)
}

// SetStatus moves the invoice to status, stamping PaidDate when it becomes paid.
func (inv *Invoice) SetStatus(status InvoiceStatus, now time.Time) bool {
	if status == inv.Status {
		return false
	}
	inv.Status = status
	if status == InvoicePaid {
		paid := now
		inv.PaidDate = &paid
	} else {
		inv.PaidDate = nil
	}
	inv.UpdatedAt = now
	return true
}

// InvoicePatch carries a partial invoice update. Changing Items recomputes totals.
type InvoicePatch struct {
	Items   *[]LineItem    `json:"items"`
	Status  *InvoiceStatus `json:"status"`
	DueDate *time.Time     `json:"dueDate"`
	Notes   *string        `json:"notes"`
}

// Apply merges the patch into inv and returns the names of the changed fields.
func (p InvoicePatch) Apply(inv *Invoice, now time.Time) []string {
	var changed []string
	if p.Items != nil {
		inv.Items = *p.Items
		inv.Recompute()
		changed = append(changed, "items")
	}
	if p.Status != nil && inv.SetStatus(*p.Status, now) {
		changed = append(changed, "status")
	}
	if p.DueDate != nil && !p.DueDate.Equal(inv.DueDate) {
		inv.DueDate = p.DueDate.UTC()
		changed = append(changed, "dueDate")
	}
	if p.Notes != nil && *p.Notes != inv.Notes {
		inv.Notes = *p.Notes
		changed = append(changed, "notes")
	}
	if len(changed) > 0 {
		inv.UpdatedAt = now
	}
	return changed
}
