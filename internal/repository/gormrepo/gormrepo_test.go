package gormrepo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

func setupTestRepos(t *testing.T) repository.Repositories {
	t.Helper()
	db, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return NewRepositories(db)
}

var base = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func seedMember(t *testing.T, repos repository.Repositories, id, name string, status domain.MemberStatus, expiry time.Time) domain.Member {
	t.Helper()
	m := domain.Member{
		ID:             id,
		Name:           name,
		Email:          id + "@example.com",
		Phone:          "555-" + id,
		MembershipType: domain.MembershipMonthly,
		StartDate:      base,
		ExpiryDate:     expiry,
		Status:         status,
		CreatedAt:      base,
		UpdatedAt:      base,
	}
	require.NoError(t, repos.Members.Create(context.Background(), &m))
	return m
}

func TestMemberCRUD(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	m := seedMember(t, repos, "m1", "Asha", domain.MemberActive, base.AddDate(0, 1, 0))

	got, err := repos.Members.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
	assert.True(t, got.ExpiryDate.Equal(m.ExpiryDate))

	got.Name = "Asha Rao"
	got.AssignedTrainer = nil
	require.NoError(t, repos.Members.Update(ctx, got))
	again, err := repos.Members.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", again.Name)

	missing := domain.Member{ID: "nope"}
	assert.ErrorIs(t, repos.Members.Update(ctx, &missing), repository.ErrNotFound)

	_, err = repos.Members.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemberDuplicateEmail(t *testing.T) {
	repos := setupTestRepos(t)
	seedMember(t, repos, "m1", "Asha", domain.MemberActive, base.AddDate(0, 1, 0))

	dup := domain.Member{ID: "m2", Name: "Other", Email: "m1@example.com", Phone: "1112223334",
		MembershipType: domain.MembershipMonthly, Status: domain.MemberActive, StartDate: base, ExpiryDate: base.AddDate(0, 1, 0)}
	err := repos.Members.Create(context.Background(), &dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	found, err := repos.Members.FindByContact(context.Background(), "m1@example.com", "none", "")
	require.NoError(t, err)
	assert.Equal(t, "m1", found.ID)

	_, err = repos.Members.FindByContact(context.Background(), "m1@example.com", "none", "m1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemberListFilterSearchSort(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	seedMember(t, repos, "m1", "Charlie", domain.MemberActive, base.AddDate(0, 1, 0))
	seedMember(t, repos, "m2", "alice", domain.MemberActive, base.AddDate(0, 3, 0))
	seedMember(t, repos, "m3", "Bob", domain.MemberExpired, base.AddDate(0, -1, 0))

	q := repository.ListQuery{Filters: map[string]string{"status": "active"}}
	require.NoError(t, q.Normalize(repository.MemberSchema))
	items, total, err := repos.Members.List(ctx, q)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	q = repository.ListQuery{Search: "ALI"}
	require.NoError(t, q.Normalize(repository.MemberSchema))
	items, total, err = repos.Members.List(ctx, q)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "m2", items[0].ID)

	q = repository.ListQuery{SortBy: "expiryDate", Desc: true, Limit: 2}
	require.NoError(t, q.Normalize(repository.MemberSchema))
	items, total, err = repos.Members.List(ctx, q)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, []string{"m2", "m1"}, []string{items[0].ID, items[1].ID})

	q = repository.ListQuery{SortBy: "expiryDate", Desc: true, Limit: 2, Page: 2}
	require.NoError(t, q.Normalize(repository.MemberSchema))
	items, _, err = repos.Members.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "m3", items[0].ID)
}

func TestSearchEscapesWildcards(t *testing.T) {
	repos := setupTestRepos(t)
	seedMember(t, repos, "m1", "Asha", domain.MemberActive, base.AddDate(0, 1, 0))

	q := repository.ListQuery{Search: "%"}
	require.NoError(t, q.Normalize(repository.MemberSchema))
	_, total, err := repos.Members.List(context.Background(), q)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRecordCheckIn(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	seedMember(t, repos, "m1", "Asha", domain.MemberActive, base.AddDate(0, 1, 0))
	seedMember(t, repos, "m2", "Pending", domain.MemberPending, base.AddDate(0, 1, 0))

	at := base.Add(2 * time.Hour)
	checkIn := domain.CheckIn{ID: "c1", MemberID: "m1", Timestamp: at, Date: at.Format(domain.DateLayout)}
	member, err := repos.Members.RecordCheckIn(ctx, &checkIn)
	require.NoError(t, err)
	assert.Equal(t, 1, member.TotalVisits)
	require.NotNil(t, member.LastVisit)
	assert.True(t, member.LastVisit.Equal(at))
	assert.Equal(t, "Asha", checkIn.MemberName)

	blocked := domain.CheckIn{ID: "c2", MemberID: "m2", Timestamp: at}
	member, err = repos.Members.RecordCheckIn(ctx, &blocked)
	assert.ErrorIs(t, err, repository.ErrPrecondition)
	assert.Equal(t, domain.MemberPending, member.Status)
	assert.Zero(t, member.TotalVisits)

	ghost := domain.CheckIn{ID: "c3", MemberID: "ghost", Timestamp: at}
	_, err = repos.Members.RecordCheckIn(ctx, &ghost)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	all, err := repos.CheckIns.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestExpireLapsed(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	now := base.AddDate(0, 2, 0)
	seedMember(t, repos, "m1", "Lapsed", domain.MemberActive, base.AddDate(0, 1, 0))
	seedMember(t, repos, "m2", "Future", domain.MemberActive, base.AddDate(0, 6, 0))
	seedMember(t, repos, "m3", "Already", domain.MemberExpired, base)

	changed, err := repos.Members.ExpireLapsed(ctx, now)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, "m1", changed[0].ID)

	changed, err = repos.Members.ExpireLapsed(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, changed)

	m1, err := repos.Members.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.MemberExpired, m1.Status)
	m2, err := repos.Members.GetByID(ctx, "m2")
	require.NoError(t, err)
	assert.Equal(t, domain.MemberActive, m2.Status)
}

func TestExpiringBefore(t *testing.T) {
	repos := setupTestRepos(t)
	seedMember(t, repos, "m1", "Later", domain.MemberActive, base.AddDate(0, 0, 20))
	seedMember(t, repos, "m2", "Sooner", domain.MemberActive, base.AddDate(0, 0, 5))
	seedMember(t, repos, "m3", "Outside", domain.MemberActive, base.AddDate(0, 0, 60))
	seedMember(t, repos, "m4", "Inactive", domain.MemberInactive, base.AddDate(0, 0, 3))

	members, err := repos.Members.ExpiringBefore(context.Background(), base.AddDate(0, 0, 30))
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "m2", members[0].ID)
	assert.Equal(t, "m1", members[1].ID)
}

func TestDeleteMemberCascades(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	seedMember(t, repos, "m1", "Asha", domain.MemberActive, base.AddDate(0, 1, 0))
	seedMember(t, repos, "m2", "Bob", domain.MemberActive, base.AddDate(0, 1, 0))

	for i, memberID := range []string{"m1", "m1", "m2"} {
		inv := domain.Invoice{ID: fmt.Sprintf("#MP%04d", i+1), MemberID: memberID, Status: domain.InvoicePending,
			Items: []domain.LineItem{{Description: "fee", Quantity: 1, UnitPrice: 100}}, DueDate: base, CreatedAt: base}
		inv.Recompute()
		require.NoError(t, repos.Invoices.Create(ctx, &inv))
	}
	ref := "m1"
	follow := domain.FollowUp{ID: "f1", MemberID: &ref, Type: domain.FollowUpGeneral, Status: domain.FollowUpPending,
		Priority: domain.PriorityLow, DueDate: base}
	require.NoError(t, repos.FollowUps.Create(ctx, &follow))

	require.NoError(t, repos.Members.Delete(ctx, "m1"))

	invoices, err := repos.Invoices.FindBy(ctx, "memberId", "m1")
	require.NoError(t, err)
	assert.Empty(t, invoices)
	followUps, err := repos.FollowUps.FindBy(ctx, "memberId", "m1")
	require.NoError(t, err)
	assert.Empty(t, followUps)

	others, err := repos.Invoices.FindBy(ctx, "memberId", "m2")
	require.NoError(t, err)
	assert.Len(t, others, 1)

	assert.ErrorIs(t, repos.Members.Delete(ctx, "m1"), repository.ErrNotFound)
}

func TestInvoiceItemsRoundTrip(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	inv := domain.Invoice{ID: "#MP0001", MemberID: "m1", Status: domain.InvoicePending, DueDate: base, CreatedAt: base,
		Items: []domain.LineItem{{Description: "Monthly", Quantity: 2, UnitPrice: domain.Rupees(1999)}}}
	inv.Recompute()
	require.NoError(t, repos.Invoices.Create(ctx, &inv))

	got, err := repos.Invoices.GetByID(ctx, "#MP0001")
	require.NoError(t, err)
	assert.Equal(t, inv.Items, got.Items)
	assert.Equal(t, inv.Total, got.Total)

	ids, err := repos.Invoices.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"#MP0001"}, ids)
}

func TestTrainerAdjustSessions(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	tr := domain.Trainer{ID: "t1", Name: "Ravi", Phone: "9998887776", Status: domain.TrainerAvailable, JoinDate: base}
	require.NoError(t, repos.Trainers.Create(ctx, &tr))

	require.NoError(t, repos.Trainers.AdjustSessions(ctx, "t1", 1, 1))
	require.NoError(t, repos.Trainers.AdjustSessions(ctx, "t1", -1, 0))
	got, err := repos.Trainers.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentSessions)
	assert.Equal(t, 1, got.TotalSessions)

	assert.ErrorIs(t, repos.Trainers.AdjustSessions(ctx, "ghost", 1, 1), repository.ErrNotFound)
}

func TestActivityClear(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		a := domain.NewActivity(domain.ActivitySystem, "tick", "", "")
		a.ID = fmt.Sprintf("a%d", i)
		a.Timestamp = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repos.Activities.Append(ctx, &a))
	}

	q := repository.ListQuery{Limit: 2}
	require.NoError(t, q.Normalize(repository.ActivitySchema))
	items, total, err := repos.Activities.List(ctx, q)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "a2", items[0].ID)

	n, err := repos.Activities.Clear(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	all, err := repos.Activities.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUserByUsername(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	u := domain.User{ID: "u1", Username: "owner", Role: domain.RoleOwner, PasswordHash: "x"}
	require.NoError(t, repos.Users.Create(ctx, &u))

	got, err := repos.Users.GetByUsername(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	_, err = repos.Users.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
