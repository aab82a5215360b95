package replica

import (
	"context"
	"slices"

	"tristar/fitness-hub/internal/domain"
)

// StorageKey is the key under which the whole replica is persisted.
const StorageKey = "tristar-fitness-storage"

// DefaultTerms is the terms-and-conditions text of a fresh replica.
const DefaultTerms = "TRI-STAR FITNESS: Membership fees are non-refundable and non-transferable. " +
	"Members must carry their membership card and follow the gym rules and staff instructions. " +
	"The management is not responsible for loss of personal belongings."

// State is everything the replica persists.
type State struct {
	domain.Dataset
	Pricing             domain.Pricing `json:"pricing"`
	TermsAndConditions  string         `json:"termsAndConditions"`
	LastInvoiceSequence int            `json:"lastInvoiceSequence"`
}

// NewState returns an empty shell with default settings.
func NewState() State {
	s := State{
		Pricing:            domain.DefaultPricing(),
		TermsAndConditions: DefaultTerms,
	}
	s.Normalize()
	return s
}

// clone copies every collection so mutations on the copy never leak into s.
func (s State) clone() State {
	c := s
	c.Members = slices.Clone(s.Members)
	c.Trainers = slices.Clone(s.Trainers)
	c.Visitors = slices.Clone(s.Visitors)
	c.Invoices = slices.Clone(s.Invoices)
	c.FollowUps = slices.Clone(s.FollowUps)
	c.Activities = slices.Clone(s.Activities)
	c.CheckIns = slices.Clone(s.CheckIns)
	c.Normalize()
	return c
}

// Persister stores the serialized replica.
type Persister interface {
	// Load returns the stored state, or found=false when nothing is stored yet.
	Load(ctx context.Context) (state State, found bool, err error)
	Save(ctx context.Context, state State) error
	Close() error
}

func indexOf[T interface{ Key() string }](items []T, id string) int {
	return slices.IndexFunc(items, func(item T) bool { return item.Key() == id })
}
