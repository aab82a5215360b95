package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/metrics"
	"tristar/fitness-hub/internal/repository"
	"tristar/fitness-hub/internal/repository/gormrepo"
)

// testClock is a settable clock shared by every service in a fixture.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	repos     repository.Repositories
	clock     *testClock
	env       Env
	members   MemberService
	invoices  InvoiceService
	trainers  TrainerService
	visitors  VisitorService
	followUps FollowUpService
	sessions  SessionService
	activity  ActivityService
	checkIns  CheckInService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gormrepo.Open(gormrepo.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, gormrepo.Migrate(db))
	t.Cleanup(func() { _ = gormrepo.Close(db) })

	repos := gormrepo.NewRepositories(db)
	clock := &testClock{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	var seq int
	var mu sync.Mutex
	env := Env{
		Logger:  zaptest.NewLogger(t),
		Metrics: metrics.New(),
		Now:     clock.Now,
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("id-%04d", seq)
		},
	}

	invoices := NewInvoiceService(repos, env)
	return &fixture{
		repos:     repos,
		clock:     clock,
		env:       env,
		members:   NewMemberService(repos, invoices, domain.DefaultPricing(), env),
		invoices:  invoices,
		trainers:  NewTrainerService(repos, env),
		visitors:  NewVisitorService(repos, env),
		followUps: NewFollowUpService(repos, env),
		sessions:  NewSessionService(repos, env),
		activity:  NewActivityService(repos, env),
		checkIns:  NewCheckInService(repos),
	}
}

func (f *fixture) addMember(t *testing.T, name, email, phone string) *domain.Member {
	t.Helper()
	m, err := f.members.Create(context.Background(), domain.Member{
		Name:           name,
		Email:          email,
		Phone:          phone,
		MembershipType: domain.MembershipMonthly,
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) addTrainer(t *testing.T, name string) *domain.Trainer {
	t.Helper()
	tr, err := f.trainers.Create(context.Background(), domain.Trainer{Name: name, Phone: "9000000001", Specialization: "strength"})
	require.NoError(t, err)
	return tr
}

func (f *fixture) activities(t *testing.T) []domain.Activity {
	t.Helper()
	all, err := f.repos.Activities.All(context.Background())
	require.NoError(t, err)
	return all
}

func ptr[T any](v T) *T { return &v }
