package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

func TestFollowUpSubjectResolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")
	v, err := f.visitors.Create(ctx, domain.Visitor{Name: "Walk-in", Phone: "9000000100", Purpose: "trial"})
	require.NoError(t, err)

	forMember, err := f.followUps.Create(ctx, domain.FollowUp{MemberID: &m.ID, Type: domain.FollowUpPaymentReminder, DueDate: f.clock.Now()})
	require.NoError(t, err)
	assert.Equal(t, "Asha", forMember.SubjectName)
	assert.Equal(t, domain.FollowUpPending, forMember.Status)
	assert.Equal(t, domain.PriorityMedium, forMember.Priority)

	forVisitor, err := f.followUps.Create(ctx, domain.FollowUp{VisitorID: &v.ID, Type: domain.FollowUpTrialRequest, DueDate: f.clock.Now()})
	require.NoError(t, err)
	assert.Equal(t, "Walk-in", forVisitor.SubjectName)

	_, err = f.followUps.Create(ctx, domain.FollowUp{MemberID: &m.ID, VisitorID: &v.ID, Type: domain.FollowUpGeneral, DueDate: f.clock.Now()})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.followUps.Create(ctx, domain.FollowUp{Type: domain.FollowUpGeneral, DueDate: f.clock.Now()})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	ghost := "ghost"
	_, err = f.followUps.Create(ctx, domain.FollowUp{MemberID: &ghost, Type: domain.FollowUpGeneral, DueDate: f.clock.Now()})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestFollowUpCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")
	fu, err := f.followUps.Create(ctx, domain.FollowUp{MemberID: &m.ID, Type: domain.FollowUpMembershipRenewal, DueDate: f.clock.Now()})
	require.NoError(t, err)
	assert.Nil(t, fu.CompletedAt)

	done, err := f.followUps.Update(ctx, fu.ID, domain.FollowUpPatch{Status: ptr(domain.FollowUpCompleted)})
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	reopened, err := f.followUps.Update(ctx, fu.ID, domain.FollowUpPatch{Status: ptr(domain.FollowUpInProgress)})
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)

	pending, _, err := f.followUps.List(ctx, repository.ListQuery{Filters: map[string]string{"status": "in_progress"}})
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSessionTrainerCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")
	tr := f.addTrainer(t, "Ravi")

	sess, err := f.sessions.Create(ctx, domain.Session{TrainerID: tr.ID, MemberID: m.ID})
	require.NoError(t, err)
	assert.Equal(t, "Ravi", sess.TrainerName)
	assert.Equal(t, "Asha", sess.MemberName)
	assert.Equal(t, domain.SessionScheduled, sess.Status)

	trainer := func() *domain.Trainer {
		got, err := f.trainers.Get(ctx, tr.ID)
		require.NoError(t, err)
		return got
	}
	assert.Equal(t, 0, trainer().CurrentSessions)
	assert.Equal(t, 1, trainer().TotalSessions)

	_, err = f.sessions.Update(ctx, sess.ID, domain.SessionPatch{Status: ptr(domain.SessionInProgress)})
	require.NoError(t, err)
	assert.Equal(t, 1, trainer().CurrentSessions)

	done, err := f.sessions.Update(ctx, sess.ID, domain.SessionPatch{Status: ptr(domain.SessionCompleted)})
	require.NoError(t, err)
	assert.NotNil(t, done.EndTime)
	assert.Equal(t, 0, trainer().CurrentSessions)
	assert.Equal(t, 1, trainer().TotalSessions)

	_, err = f.sessions.Create(ctx, domain.Session{TrainerID: "ghost", MemberID: m.ID})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = f.sessions.Create(ctx, domain.Session{MemberID: m.ID})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDeleteActiveSessionReleasesTrainer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")
	tr := f.addTrainer(t, "Ravi")
	sess, err := f.sessions.Create(ctx, domain.Session{TrainerID: tr.ID, MemberID: m.ID, Status: domain.SessionInProgress})
	require.NoError(t, err)

	got, err := f.trainers.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentSessions)

	require.NoError(t, f.sessions.Delete(ctx, sess.ID))
	got, err = f.trainers.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentSessions)
	assert.Equal(t, 1, got.TotalSessions)
}

func TestTrainerAndVisitorCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.addTrainer(t, "Ravi")
	assert.Equal(t, domain.TrainerAvailable, tr.Status)

	updated, err := f.trainers.Update(ctx, tr.ID, domain.TrainerPatch{Status: ptr(domain.TrainerBusy)})
	require.NoError(t, err)
	assert.Equal(t, domain.TrainerBusy, updated.Status)
	require.NoError(t, f.trainers.Delete(ctx, tr.ID))
	_, err = f.trainers.Get(ctx, tr.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	v, err := f.visitors.Create(ctx, domain.Visitor{Name: "Guest", Phone: "9000000200"})
	require.NoError(t, err)
	assert.Equal(t, domain.VisitorCheckedIn, v.Status)
	_, err = f.visitors.Update(ctx, v.ID, domain.VisitorPatch{Status: ptr(domain.VisitorCheckedOut)})
	require.NoError(t, err)
	require.NoError(t, f.visitors.Delete(ctx, v.ID))

	_, err = f.visitors.Create(ctx, domain.Visitor{Name: "", Phone: "1"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestActivityLogListAndClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMember(t, "Asha", "asha@example.com", "9876543210")
	f.addTrainer(t, "Ravi")

	items, page, err := f.activity.List(ctx, repository.ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)
	assert.Len(t, items, 2)

	members, _, err := f.activity.List(ctx, repository.ListQuery{Filters: map[string]string{"type": "member"}})
	require.NoError(t, err)
	assert.Len(t, members, 1)

	n, err := f.activity.Clear(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Empty(t, f.activities(t))
}

func TestRunExpirySweep(t *testing.T) {
	f := newFixture(t)
	m := f.addMember(t, "Lapsed", "l@example.com", "9000000300")
	f.clock.Set(f.clock.Now().AddDate(0, 2, 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunExpirySweep(ctx, f.members, time.Hour, zaptest.NewLogger(t))
		close(done)
	}()

	assert.Eventually(t, func() bool {
		got, err := f.repos.Members.GetByID(context.Background(), m.ID)
		return err == nil && got.Status == domain.MemberExpired
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep did not stop after cancellation")
	}
}
