package service

import (
	"context"
	"fmt"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
	"tristar/fitness-hub/internal/sequence"
)

// InvoiceSummary aggregates every invoice in the store.
type InvoiceSummary struct {
	Total         int                          `json:"total"`
	ByStatus      map[domain.InvoiceStatus]int `json:"byStatus"`
	TotalRevenue  domain.Money                 `json:"totalRevenue"`
	PendingAmount domain.Money                 `json:"pendingAmount"`
	OverdueAmount domain.Money                 `json:"overdueAmount"`
}

// --- Service Interface ---
type InvoiceService interface {
	// Create issues a new invoice. Totals are always derived from the items.
	Create(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error)
	List(ctx context.Context, q repository.ListQuery) ([]domain.Invoice, repository.Pagination, error)
	Get(ctx context.Context, id string) (*domain.Invoice, error)
	Update(ctx context.Context, id string, patch domain.InvoicePatch) (*domain.Invoice, error)
	UpdateStatus(ctx context.Context, id string, status domain.InvoiceStatus) (*domain.Invoice, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (*InvoiceSummary, error)
}

// --- Service Implementation ---

type invoiceService struct {
	recorder
	invoices repository.InvoiceRepository
	members  repository.MemberRepository
	ids      *sequence.Allocator
}

// NewInvoiceService creates an invoice service whose identifiers continue from
// the highest #MP number already stored.
func NewInvoiceService(repos repository.Repositories, env Env) InvoiceService {
	env = env.withDefaults()
	s := &invoiceService{
		recorder: recorder{env: env, activities: repos.Activities},
		invoices: repos.Invoices,
		members:  repos.Members,
	}
	s.ids = sequence.New(func(ctx context.Context) (int, error) {
		ids, err := repos.Invoices.IDs(ctx)
		if err != nil {
			return 0, err
		}
		return sequence.MaxOf(ids), nil
	})
	return s
}

func (s *invoiceService) Create(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error) {
	if inv.MemberID == "" {
		return nil, apperr.Field("memberId", "is required")
	}
	member, err := s.members.GetByID(ctx, inv.MemberID)
	if err != nil {
		return nil, fromRepo(err, "member")
	}

	// Validate before drawing a number so rejected input does not burn one.
	if err := inv.PrepareNew("", member.Name, s.env.Now()); err != nil {
		return nil, err
	}
	id, err := s.ids.Next(ctx)
	if err != nil {
		return nil, apperr.Internal("allocate invoice id", err)
	}
	inv.ID = id
	if err := s.invoices.Create(ctx, &inv); err != nil {
		return nil, fromRepo(err, "invoice")
	}

	s.env.Metrics.InvoiceCreated()
	s.record(ctx, domain.NewActivity(domain.ActivityInvoice, "Invoice created", member.Name,
		fmt.Sprintf("%s for %s", inv.ID, inv.Total)).ForMember(member.ID).ForInvoice(inv.ID))
	return &inv, nil
}

func (s *invoiceService) List(ctx context.Context, q repository.ListQuery) ([]domain.Invoice, repository.Pagination, error) {
	return list(ctx, q, repository.InvoiceSchema, "invoice", s.invoices.List)
}

func (s *invoiceService) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	return inv, fromRepo(err, "invoice")
}

func (s *invoiceService) Update(ctx context.Context, id string, patch domain.InvoicePatch) (*domain.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "invoice")
	}
	changed := patch.Apply(inv, s.env.Now())
	if len(changed) == 0 {
		return inv, nil
	}
	if err := domain.Validate(inv); err != nil {
		return nil, err
	}
	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, fromRepo(err, "invoice")
	}
	s.record(ctx, domain.NewActivity(domain.ActivityInvoice, "Invoice updated", inv.MemberName,
		inv.ID+": "+changedDetails(changed)).ForMember(inv.MemberID).ForInvoice(inv.ID))
	return inv, nil
}

func (s *invoiceService) UpdateStatus(ctx context.Context, id string, status domain.InvoiceStatus) (*domain.Invoice, error) {
	if !status.Valid() {
		return nil, apperr.Field("status", "must be one of: pending paid overdue")
	}
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "invoice")
	}
	if !inv.SetStatus(status, s.env.Now()) {
		return inv, nil
	}
	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, fromRepo(err, "invoice")
	}
	s.record(ctx, domain.NewActivity(domain.ActivityInvoice, "Invoice marked "+string(status), inv.MemberName,
		inv.ID).ForMember(inv.MemberID).ForInvoice(inv.ID))
	return inv, nil
}

// Delete removes one invoice. Nothing cascades.
func (s *invoiceService) Delete(ctx context.Context, id string) error {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return fromRepo(err, "invoice")
	}
	if err := s.invoices.Delete(ctx, id); err != nil {
		return fromRepo(err, "invoice")
	}
	s.record(ctx, domain.NewActivity(domain.ActivityInvoice, "Invoice deleted", inv.MemberName, inv.ID).ForMember(inv.MemberID))
	return nil
}

func (s *invoiceService) Summary(ctx context.Context) (*InvoiceSummary, error) {
	all, err := s.invoices.All(ctx)
	if err != nil {
		return nil, fromRepo(err, "invoice")
	}
	out := &InvoiceSummary{Total: len(all), ByStatus: map[domain.InvoiceStatus]int{}}
	for _, inv := range all {
		out.ByStatus[inv.Status]++
		switch inv.Status {
		case domain.InvoicePaid:
			out.TotalRevenue += inv.Total
		case domain.InvoicePending:
			out.PendingAmount += inv.Total
		case domain.InvoiceOverdue:
			out.OverdueAmount += inv.Total
		}
	}
	return out, nil
}
