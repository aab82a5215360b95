package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

func TestMemberCreateDerivesFields(t *testing.T) {
	f := newFixture(t)
	m := f.addMember(t, "  Asha Rao ", "Asha@Example.com", "9876543210")

	assert.Equal(t, "Asha Rao", m.Name)
	assert.Equal(t, "asha@example.com", m.Email)
	assert.Equal(t, domain.MemberActive, m.Status)
	assert.Equal(t, f.clock.Now(), m.StartDate)
	assert.Equal(t, time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC), m.ExpiryDate)
	assert.Zero(t, m.TotalVisits)

	acts := f.activities(t)
	require.Len(t, acts, 1)
	assert.Equal(t, "Member registered", acts[0].Action)
	require.NotNil(t, acts[0].MemberID)
	assert.Equal(t, m.ID, *acts[0].MemberID)
}

func TestMemberCreateValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.members.Create(context.Background(), domain.Member{Name: "", Email: "bad", Phone: "1", MembershipType: "weekly"})
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.NotEmpty(t, e.Fields)
}

func TestMemberUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.addMember(t, "Asha", "asha@example.com", "9876543210")
	second := f.addMember(t, "Bala", "bala@example.com", "9876500000")

	_, err := f.members.Create(ctx, domain.Member{Name: "Dup", Email: "ASHA@example.com", Phone: "1112223334", MembershipType: domain.MembershipMonthly})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.members.Create(ctx, domain.Member{Name: "Dup", Email: "dup@example.com", Phone: "9876543210", MembershipType: domain.MembershipMonthly})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.members.Update(ctx, second.ID, domain.MemberPatch{Email: ptr("asha@example.com")})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	// Unchanged collection after the failed writes.
	all, err := f.repos.Members.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	stored, err := f.repos.Members.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "bala@example.com", stored.Email)

	// Re-saving one's own contact details is not a conflict.
	_, err = f.members.Update(ctx, first.ID, domain.MemberPatch{Email: ptr("asha@example.com"), Name: ptr("Asha R")})
	assert.NoError(t, err)
}

func TestMemberUpdateRecomputesExpiry(t *testing.T) {
	f := newFixture(t)
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")
	f.clock.Set(f.clock.Now().Add(time.Hour))

	updated, err := f.members.Update(context.Background(), m.ID, domain.MemberPatch{MembershipType: ptr(domain.MembershipQuarterly)})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC), updated.ExpiryDate)
	assert.Equal(t, f.clock.Now(), updated.UpdatedAt)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
}

func TestMemberUpdateUnknownTrainer(t *testing.T) {
	f := newFixture(t)
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")
	_, err := f.members.Update(context.Background(), m.ID, domain.MemberPatch{AssignedTrainer: ptr("ghost")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	tr := f.addTrainer(t, "Ravi")
	updated, err := f.members.Update(context.Background(), m.ID, domain.MemberPatch{AssignedTrainer: ptr(tr.ID)})
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTrainer)
	assert.Equal(t, tr.ID, *updated.AssignedTrainer)
}

func TestMemberNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.members.Get(ctx, "ghost")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = f.members.Update(ctx, "ghost", domain.MemberPatch{Name: ptr("x")})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.True(t, apperr.Is(f.members.Delete(ctx, "ghost"), apperr.KindNotFound))
	_, _, err = f.members.CheckIn(ctx, "ghost")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")

	f.clock.Set(time.Date(2024, 1, 20, 7, 30, 0, 0, time.UTC))
	updated, checkIn, err := f.members.CheckIn(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.TotalVisits)
	require.NotNil(t, updated.LastVisit)
	assert.Equal(t, f.clock.Now(), *updated.LastVisit)
	assert.Equal(t, "2024-01-20", checkIn.Date)
	assert.Equal(t, "Asha", checkIn.MemberName)

	items, page, err := f.checkIns.List(ctx, repository.ListQuery{Filters: map[string]string{"date": "2024-01-20"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalCount)
	assert.Equal(t, m.ID, items[0].MemberID)
}

func TestCheckInRequiresActiveMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending, err := f.members.Create(ctx, domain.Member{
		Name: "Pending", Email: "p@example.com", Phone: "9876543211",
		MembershipType: domain.MembershipMonthly, Status: domain.MemberPending,
	})
	require.NoError(t, err)

	_, _, err = f.members.CheckIn(ctx, pending.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))

	stored, err := f.repos.Members.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.TotalVisits)
	assert.Nil(t, stored.LastVisit)
}

func TestRenew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")
	_, err := f.members.Update(ctx, m.ID, domain.MemberPatch{Status: ptr(domain.MemberExpired)})
	require.NoError(t, err)

	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	res, err := f.members.Renew(ctx, m.ID, RenewRequest{MembershipType: domain.MembershipMonthly, StartDate: &start, CreateInvoice: true})
	require.NoError(t, err)
	assert.Equal(t, domain.MemberActive, res.Member.Status)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), res.Member.ExpiryDate)

	require.NotNil(t, res.Invoice)
	assert.Equal(t, "#MP0001", res.Invoice.ID)
	assert.Equal(t, domain.Rupees(1999), res.Invoice.Subtotal)
	assert.Equal(t, res.Invoice.Subtotal+res.Invoice.Tax, res.Invoice.Total)

	_, err = f.members.Renew(ctx, m.ID, RenewRequest{MembershipType: "weekly"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestExpiringSoon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soon := f.addMember(t, "Soon", "soon@example.com", "9000000010")
	f.clock.Set(f.clock.Now().AddDate(0, 0, 20))
	later := f.addMember(t, "Later", "later@example.com", "9000000011")

	members, err := f.members.ExpiringSoon(ctx, 0)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, soon.ID, members[0].ID)
	assert.Equal(t, later.ID, members[1].ID)

	members, err = f.members.ExpiringSoon(ctx, 15)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, soon.ID, members[0].ID)

	for _, days := range []int{-1, 91} {
		_, err = f.members.ExpiringSoon(ctx, days)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "days=%d", days)
	}
}

func TestExpireLapsedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lapsed := f.addMember(t, "Lapsed", "l@example.com", "9000000020")
	f.clock.Set(f.clock.Now().AddDate(0, 1, 1))
	fresh := f.addMember(t, "Fresh", "f@example.com", "9000000021")

	expired, err := f.members.ExpireLapsed(ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, lapsed.ID, expired[0].ID)

	again, err := f.members.ExpireLapsed(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)

	stored, err := f.repos.Members.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberActive, stored.Status)
	stored, err = f.repos.Members.GetByID(ctx, lapsed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberExpired, stored.Status)
}

func TestDeleteMemberCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")
	other := f.addMember(t, "Bala", "bala@example.com", "9876500000")

	for _, id := range []string{m.ID, other.ID} {
		_, err := f.invoices.Create(ctx, domain.Invoice{MemberID: id, Items: []domain.LineItem{{Description: "Fee", Quantity: 1, UnitPrice: domain.Rupees(100)}}})
		require.NoError(t, err)
	}
	_, err := f.followUps.Create(ctx, domain.FollowUp{MemberID: &m.ID, Type: domain.FollowUpPaymentReminder, DueDate: f.clock.Now()})
	require.NoError(t, err)

	require.NoError(t, f.members.Delete(ctx, m.ID))

	byMember := repository.ListQuery{Filters: map[string]string{"memberId": m.ID}}
	invoices, page, err := f.invoices.List(ctx, byMember)
	require.NoError(t, err)
	assert.Empty(t, invoices)
	assert.Zero(t, page.TotalCount)
	followUps, _, err := f.followUps.List(ctx, repository.ListQuery{Filters: map[string]string{"memberId": m.ID}})
	require.NoError(t, err)
	assert.Empty(t, followUps)

	remaining, _, err := f.invoices.List(ctx, repository.ListQuery{Filters: map[string]string{"memberId": other.ID}})
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestMemberDetailsAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")
	tr := f.addTrainer(t, "Ravi")

	_, err := f.sessions.Create(ctx, domain.Session{TrainerID: tr.ID, MemberID: m.ID})
	require.NoError(t, err)
	inv, err := f.invoices.Create(ctx, domain.Invoice{MemberID: m.ID, Items: []domain.LineItem{{Description: "Fee", Quantity: 1, UnitPrice: domain.Rupees(1000)}}})
	require.NoError(t, err)
	_, err = f.invoices.UpdateStatus(ctx, inv.ID, domain.InvoicePaid)
	require.NoError(t, err)
	_, _, err = f.members.CheckIn(ctx, m.ID)
	require.NoError(t, err)

	details, err := f.members.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, details.Sessions, 1)
	assert.Len(t, details.Invoices, 1)
	assert.NotEmpty(t, details.RecentActivities)

	f.clock.Set(f.clock.Now().AddDate(0, 0, 10))
	stats, err := f.members.Stats(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVisits)
	assert.Equal(t, 1, stats.Sessions.Total)
	assert.Equal(t, 1, stats.Sessions.ByStatus[domain.SessionScheduled])
	assert.Equal(t, 1, stats.Invoices.ByStatus[domain.InvoicePaid])
	assert.Equal(t, domain.Rupees(1180), stats.Invoices.TotalRevenue)
	assert.Equal(t, 10, stats.MembershipDays)
	assert.Equal(t, 21, stats.DaysUntilExpiry)
	assert.LessOrEqual(t, len(stats.RecentActivities), 5)
	for i := 1; i < len(stats.RecentActivities); i++ {
		assert.False(t, stats.RecentActivities[i].Timestamp.After(stats.RecentActivities[i-1].Timestamp))
	}
}

func TestMemberList(t *testing.T) {
	f := newFixture(t)
	f.addMember(t, "Charlie", "c@example.com", "9000000031")
	f.addMember(t, "Alice", "a@example.com", "9000000032")
	f.addMember(t, "Bob", "b@example.com", "9000000033")

	items, page, err := f.members.List(context.Background(), repository.ListQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, []string{items[0].Name, items[1].Name})
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrev)
	assert.Equal(t, 2, page.TotalPages)

	_, _, err = f.members.List(context.Background(), repository.ListQuery{SortBy: "password"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestMemberListEmailFilterIgnoresCase(t *testing.T) {
	f := newFixture(t)
	f.addMember(t, "Asha", "Asha@Example.com", "9000000041")

	items, _, err := f.members.List(context.Background(), repository.ListQuery{
		Filters: map[string]string{"email": "Asha@Example.com"},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "asha@example.com", items[0].Email)
}
