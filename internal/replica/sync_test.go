package replica

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
)

type fakeRemote struct {
	available bool
	dataset   domain.Dataset
	err       error
	checks    int
	pulls     int
}

func (f *fakeRemote) Available(context.Context) bool {
	f.checks++
	return f.available
}

func (f *fakeRemote) FetchDataset(context.Context) (domain.Dataset, error) {
	f.pulls++
	if f.err != nil {
		return domain.Dataset{}, f.err
	}
	ds := f.dataset
	ds.Normalize()
	return ds, nil
}

func remoteDataset() domain.Dataset {
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return domain.Dataset{
		Members: []domain.Member{{ID: "m1", Name: "Asha", Email: "asha@example.com", Phone: "9876543210",
			MembershipType: domain.MembershipMonthly, Status: domain.MemberActive, StartDate: at,
			ExpiryDate: at.AddDate(0, 1, 0), CreatedAt: at, UpdatedAt: at}},
		Invoices: []domain.Invoice{{ID: "#MP0010", MemberID: "m1", MemberName: "Asha", Status: domain.InvoicePending}},
	}
}

func TestBootstrapUsesLocalData(t *testing.T) {
	f := newFixture(t)
	f.addMember(t, "Asha", "asha@example.com", "9876543210")
	remote := &fakeRemote{available: true, dataset: remoteDataset()}

	res, err := f.r.Bootstrap(context.Background(), remote)
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, 1, res.Counts.Members)
	assert.Zero(t, remote.checks, "remote must not be contacted when local data exists")
}

func TestBootstrapImportsRemote(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.r.SetTerms(context.Background(), "custom"))
	remote := &fakeRemote{available: true, dataset: remoteDataset()}

	res, err := f.r.Bootstrap(context.Background(), remote)
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	assert.Equal(t, Counts{Members: 1, Invoices: 1}, res.Counts)
	assert.Equal(t, remoteDataset().Members, f.r.Members())
	assert.Equal(t, "custom", f.r.Terms())

	id, err := f.r.NextInvoiceID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "#MP0011", id)

	reopened := f.open(t)
	assert.Len(t, reopened.Members(), 1)
}

func TestBootstrapBlankReplicaImportsCheckInsOnlyData(t *testing.T) {
	f := newFixture(t)
	remote := &fakeRemote{available: true, dataset: domain.Dataset{
		CheckIns: []domain.CheckIn{{ID: "c1", MemberID: "m1", Date: "2024-01-01"}},
	}}

	res, err := f.r.Bootstrap(context.Background(), remote)
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	assert.Len(t, f.r.CheckIns(), 1)
}

func TestBootstrapFallsBackToEmptyShell(t *testing.T) {
	cases := map[string]Remote{
		"no remote":          nil,
		"unreachable":        &fakeRemote{available: false},
		"pull fails":         &fakeRemote{available: true, err: errors.New("connection reset")},
		"remote has nothing": &fakeRemote{available: true},
	}
	for name, remote := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)

			res, err := f.r.Bootstrap(context.Background(), remote)
			require.NoError(t, err)
			assert.Equal(t, SourceSeeded, res.Source)
			assert.True(t, f.r.Snapshot().Empty())

			store, err := OpenSQLite(f.path)
			require.NoError(t, err)
			defer store.Close()
			_, found, err := store.Load(context.Background())
			require.NoError(t, err)
			assert.True(t, found, "seeded shell is persisted")
		})
	}
}

func TestSyncNowReplacesStaleReplica(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMember(t, "Local Only", "local@example.com", "9000000003")

	counts, err := f.r.SyncNow(ctx, &fakeRemote{available: true, dataset: remoteDataset()})
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Members)
	members := f.r.Members()
	require.Len(t, members, 1)
	assert.Equal(t, "m1", members[0].ID)
	assert.Empty(t, f.r.Activities(), "wholesale import replaces the log too")
}

func TestSyncNowUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMember(t, "Local Only", "local@example.com", "9000000003")
	before := f.r.Snapshot()

	_, err := f.r.SyncNow(ctx, &fakeRemote{available: false})
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))

	_, err = f.r.SyncNow(ctx, &fakeRemote{available: true, err: errors.New("boom")})
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))

	_, err = f.r.SyncNow(ctx, nil)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
	assert.Equal(t, before, f.r.Snapshot())
}

func TestExportImportRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tr, err := f.r.AddTrainer(ctx, domain.Trainer{Name: "Vikram", Phone: "9000000001",
		Certifications: []string{"ACE"}})
	require.NoError(t, err)
	m, err := f.r.AddMember(ctx, domain.Member{Name: "Asha", Email: "asha@example.com", Phone: "9876543210",
		MembershipType: domain.MembershipQuarterly, AssignedTrainer: ptr(tr.ID)})
	require.NoError(t, err)
	v, err := f.r.AddVisitor(ctx, domain.Visitor{Name: "Guest", Phone: "9000000002"})
	require.NoError(t, err)
	_, err = f.r.AddInvoice(ctx, domain.Invoice{MemberID: m.ID, Notes: "first", Items: []domain.LineItem{
		{Description: "Quarterly", Quantity: 1, UnitPrice: domain.Rupees(5500)},
	}})
	require.NoError(t, err)
	fu, err := f.r.AddFollowUp(ctx, domain.FollowUp{VisitorID: ptr(v.ID), Type: domain.FollowUpTrialRequest,
		DueDate: f.clock.Now()})
	require.NoError(t, err)
	_, err = f.r.CompleteFollowUp(ctx, fu.ID)
	require.NoError(t, err)
	_, _, err = f.r.AddCheckIn(ctx, m.ID)
	require.NoError(t, err)

	before := f.r.Snapshot()
	for _, n := range []int{len(before.Members), len(before.Trainers), len(before.Visitors), len(before.Invoices),
		len(before.FollowUps), len(before.Activities), len(before.CheckIns)} {
		require.NotZero(t, n)
	}

	data, err := f.r.Export()
	require.NoError(t, err)
	require.NoError(t, f.r.ClearAllData(ctx))
	require.NoError(t, f.r.Import(ctx, data))

	assert.Equal(t, before, f.r.Snapshot())
	again, err := f.r.Export()
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestImportDefaultsMissingCollections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMember(t, "Asha", "asha@example.com", "9876543210")

	require.NoError(t, f.r.Import(ctx, []byte(`{"trainers":[{"id":"t1","name":"Vikram"}]}`)))
	snap := f.r.Snapshot()
	assert.Len(t, snap.Trainers, 1)
	assert.NotNil(t, snap.Members)
	assert.Empty(t, snap.Members)
	assert.NotNil(t, snap.CheckIns)

	err := f.r.Import(ctx, []byte(`{"members":`))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Len(t, f.r.Trainers(), 1)
}

func TestBootstrapOrdersRemoteLogOldestFirst(t *testing.T) {
	f := newFixture(t)
	ds := remoteDataset()
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	ds.Activities = []domain.Activity{
		{ID: "a2", Type: domain.ActivityMember, Action: "newer", Timestamp: at.Add(time.Hour)},
		{ID: "a1", Type: domain.ActivityMember, Action: "older", Timestamp: at},
	}
	ds.CheckIns = []domain.CheckIn{
		{ID: "c2", MemberID: "m1", Timestamp: at.Add(2 * time.Hour)},
		{ID: "c1", MemberID: "m1", Timestamp: at},
	}

	_, err := f.r.Bootstrap(context.Background(), &fakeRemote{available: true, dataset: ds})
	require.NoError(t, err)
	f.addMember(t, "Ravi", "ravi@example.com", "9123456780")

	var ids []string
	for _, a := range f.r.Activities() {
		ids = append(ids, a.ID)
	}
	require.Len(t, ids, 3)
	assert.Equal(t, []string{"a1", "a2"}, ids[:2])
	assert.Equal(t, "Member added", f.r.Activities()[2].Action)

	checkIns := f.r.CheckIns()
	require.Len(t, checkIns, 2)
	assert.Equal(t, "c1", checkIns[0].ID)
}

func TestImportOrdersLogOldestFirst(t *testing.T) {
	f := newFixture(t)
	payload := `{"activities":[
		{"id":"b","type":"system","action":"second","timestamp":"2024-01-02T00:00:00Z"},
		{"id":"a","type":"system","action":"first","timestamp":"2024-01-01T00:00:00Z"}]}`
	require.NoError(t, f.r.Import(context.Background(), []byte(payload)))

	activities := f.r.Activities()
	require.Len(t, activities, 2)
	assert.Equal(t, "a", activities[0].ID)
	assert.Equal(t, "b", activities[1].ID)
}
