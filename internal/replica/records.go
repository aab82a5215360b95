package replica

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/sequence"
)

// --- Invoices ---

// nextSequence advances past both the persisted counter and every stored
// #MP identifier, so a replica imported without its counter still never
// reissues a number.
func nextSequence(s *State) string {
	ids := make([]string, len(s.Invoices))
	for i, inv := range s.Invoices {
		ids[i] = inv.ID
	}
	last := max(s.LastInvoiceSequence, sequence.MaxOf(ids))
	s.LastInvoiceSequence = last + 1
	return sequence.Format(s.LastInvoiceSequence)
}

// NextInvoiceID draws the next sequential identifier and persists the counter.
func (r *Replica) NextInvoiceID(ctx context.Context) (string, error) {
	var id string
	err := r.mutate(ctx, func(s *State) error {
		id = nextSequence(s)
		return nil
	})
	return id, err
}

// AddInvoice stores a new invoice for an existing member. Totals are always
// derived from the items. An empty ID draws the next sequential identifier.
func (r *Replica) AddInvoice(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	err := r.mutate(ctx, func(s *State) error {
		if inv.MemberID == "" {
			return apperr.Field("memberId", "is required")
		}
		mi := indexOf(s.Members, inv.MemberID)
		if mi < 0 {
			return apperr.NotFound("member")
		}
		id := strings.TrimSpace(inv.ID)
		if err := inv.PrepareNew(id, s.Members[mi].Name, r.now()); err != nil {
			return err
		}
		if id == "" {
			inv.ID = nextSequence(s)
		} else {
			if indexOf(s.Invoices, id) >= 0 {
				return apperr.Conflict("invoice " + id + " already exists")
			}
			if n, ok := sequence.Parse(id); ok && n > s.LastInvoiceSequence {
				s.LastInvoiceSequence = n
			}
		}
		s.Invoices = append(s.Invoices, inv)
		r.log(s, domain.NewActivity(domain.ActivityInvoice, "Invoice created", inv.MemberName,
			fmt.Sprintf("%s for %s", inv.ID, inv.Total)).ForMember(inv.MemberID).ForInvoice(inv.ID))
		return nil
	})
	return inv, err
}

func (r *Replica) UpdateInvoice(ctx context.Context, id string, patch domain.InvoicePatch) (domain.Invoice, error) {
	var inv domain.Invoice
	err := r.mutate(ctx, func(s *State) error {
		i := indexOf(s.Invoices, id)
		if i < 0 {
			return apperr.NotFound("invoice")
		}
		inv = s.Invoices[i]
		if patch.Status != nil && !patch.Status.Valid() {
			return apperr.Field("status", "must be one of: pending paid overdue")
		}
		changed := patch.Apply(&inv, r.now())
		if len(changed) == 0 {
			return nil
		}
		if err := domain.Validate(&inv); err != nil {
			return err
		}
		s.Invoices[i] = inv
		r.log(s, domain.NewActivity(domain.ActivityInvoice, "Invoice updated", inv.MemberName,
			inv.ID+": "+changedDetails(changed)).ForMember(inv.MemberID).ForInvoice(inv.ID))
		return nil
	})
	return inv, err
}

func (r *Replica) SetInvoiceStatus(ctx context.Context, id string, status domain.InvoiceStatus) (domain.Invoice, error) {
	return r.UpdateInvoice(ctx, id, domain.InvoicePatch{Status: &status})
}

func (r *Replica) DeleteInvoice(ctx context.Context, id string) error {
	return r.mutate(ctx, func(s *State) error {
		i := indexOf(s.Invoices, id)
		if i < 0 {
			return apperr.NotFound("invoice")
		}
		inv := s.Invoices[i]
		s.Invoices = slices.Delete(s.Invoices, i, i+1)
		r.log(s, domain.NewActivity(domain.ActivityInvoice, "Invoice deleted", inv.MemberName, inv.ID).ForMember(inv.MemberID))
		return nil
	})
}

// --- Trainers ---

func (r *Replica) AddTrainer(ctx context.Context, t domain.Trainer) (domain.Trainer, error) {
	err := r.mutate(ctx, func(s *State) error {
		if err := t.PrepareNew(r.newID(), r.now()); err != nil {
			return err
		}
		s.Trainers = append(s.Trainers, t)
		r.log(s, domain.NewActivity(domain.ActivityTrainer, "Trainer added", t.Name, t.Specialization))
		return nil
	})
	return t, err
}

func (r *Replica) UpdateTrainer(ctx context.Context, id string, patch domain.TrainerPatch) (domain.Trainer, error) {
	var t domain.Trainer
	err := r.mutate(ctx, func(s *State) error {
		i := indexOf(s.Trainers, id)
		if i < 0 {
			return apperr.NotFound("trainer")
		}
		t = s.Trainers[i]
		changed := patch.Apply(&t, r.now())
		if len(changed) == 0 {
			return nil
		}
		if err := domain.Validate(&t); err != nil {
			return err
		}
		s.Trainers[i] = t
		r.log(s, domain.NewActivity(domain.ActivityTrainer, "Trainer updated", t.Name, changedDetails(changed)))
		return nil
	})
	return t, err
}

// DeleteTrainer leaves members assigned to the trainer pointing at the old id.
func (r *Replica) DeleteTrainer(ctx context.Context, id string) error {
	return r.mutate(ctx, func(s *State) error {
		i := indexOf(s.Trainers, id)
		if i < 0 {
			return apperr.NotFound("trainer")
		}
		t := s.Trainers[i]
		s.Trainers = slices.Delete(s.Trainers, i, i+1)
		r.log(s, domain.NewActivity(domain.ActivityTrainer, "Trainer removed", t.Name, ""))
		return nil
	})
}

// --- Visitors ---

func (r *Replica) AddVisitor(ctx context.Context, v domain.Visitor) (domain.Visitor, error) {
	err := r.mutate(ctx, func(s *State) error {
		if err := v.PrepareNew(r.newID(), r.now()); err != nil {
			return err
		}
		s.Visitors = append(s.Visitors, v)
		r.log(s, domain.NewActivity(domain.ActivityVisitor, "Visitor checked in", v.Name, v.Purpose))
		return nil
	})
	return v, err
}

func (r *Replica) UpdateVisitor(ctx context.Context, id string, patch domain.VisitorPatch) (domain.Visitor, error) {
	var v domain.Visitor
	err := r.mutate(ctx, func(s *State) error {
		i := indexOf(s.Visitors, id)
		if i < 0 {
			return apperr.NotFound("visitor")
		}
		v = s.Visitors[i]
		changed := patch.Apply(&v, r.now())
		if len(changed) == 0 {
			return nil
		}
		if err := domain.Validate(&v); err != nil {
			return err
		}
		s.Visitors[i] = v
		r.log(s, domain.NewActivity(domain.ActivityVisitor, "Visitor updated", v.Name, changedDetails(changed)))
		return nil
	})
	return v, err
}

func (r *Replica) DeleteVisitor(ctx context.Context, id string) error {
	return r.mutate(ctx, func(s *State) error {
		i := indexOf(s.Visitors, id)
		if i < 0 {
			return apperr.NotFound("visitor")
		}
		v := s.Visitors[i]
		s.Visitors = slices.Delete(s.Visitors, i, i+1)
		r.log(s, domain.NewActivity(domain.ActivityVisitor, "Visitor removed", v.Name, ""))
		return nil
	})
}

// --- Follow-ups ---

func subjectName(s *State, f *domain.FollowUp) (string, error) {
	if f.MemberID != nil {
		if i := indexOf(s.Members, *f.MemberID); i >= 0 {
			return s.Members[i].Name, nil
		}
		return "", apperr.NotFound("member")
	}
	if f.VisitorID != nil {
		if i := indexOf(s.Visitors, *f.VisitorID); i >= 0 {
			return s.Visitors[i].Name, nil
		}
		return "", apperr.NotFound("visitor")
	}
	return "", apperr.Field("memberId", "exactly one of memberId or visitorId must be set")
}

func (r *Replica) AddFollowUp(ctx context.Context, f domain.FollowUp) (domain.FollowUp, error) {
	err := r.mutate(ctx, func(s *State) error {
		if err := f.PrepareNew(r.newID(), "", r.now()); err != nil {
			return err
		}
		name, err := subjectName(s, &f)
		if err != nil {
			return err
		}
		f.SubjectName = name
		s.FollowUps = append(s.FollowUps, f)
		a := domain.NewActivity(domain.ActivityFollowUp, "Follow-up created", name, string(f.Type))
		if f.MemberID != nil {
			a = a.ForMember(*f.MemberID)
		}
		r.log(s, a)
		return nil
	})
	return f, err
}

func (r *Replica) UpdateFollowUp(ctx context.Context, id string, patch domain.FollowUpPatch) (domain.FollowUp, error) {
	var f domain.FollowUp
	err := r.mutate(ctx, func(s *State) error {
		i := indexOf(s.FollowUps, id)
		if i < 0 {
			return apperr.NotFound("follow-up")
		}
		f = s.FollowUps[i]
		changed := patch.Apply(&f, r.now())
		if len(changed) == 0 {
			return nil
		}
		if err := f.Validate(); err != nil {
			return err
		}
		s.FollowUps[i] = f
		action := "Follow-up updated"
		if f.Status == domain.FollowUpCompleted && slices.Contains(changed, "status") {
			action = "Follow-up completed"
		}
		a := domain.NewActivity(domain.ActivityFollowUp, action, f.SubjectName, changedDetails(changed))
		if f.MemberID != nil {
			a = a.ForMember(*f.MemberID)
		}
		r.log(s, a)
		return nil
	})
	return f, err
}

// CompleteFollowUp marks the follow-up completed, stamping CompletedAt.
func (r *Replica) CompleteFollowUp(ctx context.Context, id string) (domain.FollowUp, error) {
	status := domain.FollowUpCompleted
	return r.UpdateFollowUp(ctx, id, domain.FollowUpPatch{Status: &status})
}

func (r *Replica) DeleteFollowUp(ctx context.Context, id string) error {
	return r.mutate(ctx, func(s *State) error {
		i := indexOf(s.FollowUps, id)
		if i < 0 {
			return apperr.NotFound("follow-up")
		}
		f := s.FollowUps[i]
		s.FollowUps = slices.Delete(s.FollowUps, i, i+1)
		r.log(s, domain.NewActivity(domain.ActivityFollowUp, "Follow-up deleted", f.SubjectName, string(f.Type)))
		return nil
	})
}

// --- Activities and settings ---

// ClearActivities empties the log and returns how many entries were removed.
func (r *Replica) ClearActivities(ctx context.Context) (int, error) {
	n := 0
	err := r.mutate(ctx, func(s *State) error {
		n = len(s.Activities)
		s.Activities = []domain.Activity{}
		return nil
	})
	return n, err
}

// ClearAllData empties every collection. Pricing, terms and the invoice
// counter are kept.
func (r *Replica) ClearAllData(ctx context.Context) error {
	return r.mutate(ctx, func(s *State) error {
		s.Dataset = domain.Dataset{}
		s.Normalize()
		return nil
	})
}

func (r *Replica) Pricing() domain.Pricing {
	var p domain.Pricing
	r.read(func(s *State) { p = s.Pricing })
	return p
}

func (r *Replica) SetPricing(ctx context.Context, p domain.Pricing) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return r.mutate(ctx, func(s *State) error {
		s.Pricing = p
		return nil
	})
}

func (r *Replica) Terms() string {
	var t string
	r.read(func(s *State) { t = s.TermsAndConditions })
	return t
}

func (r *Replica) SetTerms(ctx context.Context, terms string) error {
	return r.mutate(ctx, func(s *State) error {
		s.TermsAndConditions = terms
		return nil
	})
}
