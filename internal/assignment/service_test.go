package assignment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/authz"
	"github.com/worklink-dev/worklink/internal/payment"
	"github.com/worklink-dev/worklink/internal/posting"
)

type fakeThreads struct{ removed []string }

func (f *fakeThreads) DeleteByContext(_ context.Context, kind, contextID string) error {
	f.removed = append(f.removed, kind+":"+contextID)
	return nil
}

type fakeMedia struct{ cleaned []string }

func (f *fakeMedia) DeleteForEntity(_ context.Context, _ string, ownerID string) int {
	f.cleaned = append(f.cleaned, ownerID)
	return 1
}

type fixture struct {
	svc          *Service
	store        *MemoryStore
	payments     *payment.MemoryStore
	threads      *fakeThreads
	media        *fakeMedia
	assignmentID string
}

var (
	owner  = authz.Actor{UserID: "owner"}
	worker = authz.Actor{UserID: "worker"}
	admin  = authz.Actor{UserID: "admin", IsAdmin: true}
)

func newFixture(t *testing.T, paymentAmount int64) *fixture {
	t.Helper()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	postings := posting.NewMemoryStore()
	_, err := postings.Create(context.Background(), posting.Posting{
		ID:              "posting-1",
		OwnerID:         "owner",
		Title:           "Trim the hedge",
		Status:          posting.StatusPublished,
		PaymentAmount:   paymentAmount,
		PaymentCurrency: "EUR",
		MaxApplicants:   1,
		MaxAssignees:    1,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	require.NoError(t, err)

	store := NewMemoryStore()
	payments := payment.NewMemoryStore()
	store.Payments = payments
	threads := &fakeThreads{}
	mediaCleaner := &fakeMedia{}

	svc := NewService(store, postings, payments, threads, mediaCleaner)
	svc.now = func() time.Time { return now }

	assignmentID, err := svc.Open(context.Background(), "posting-1", "application-1", "owner", "worker", now)
	require.NoError(t, err)

	return &fixture{svc: svc, store: store, payments: payments, threads: threads, media: mediaCleaner, assignmentID: assignmentID}
}

func TestTransitionStatus(t *testing.T) {
	t.Run("worker starts the work and started_at is stamped once", func(t *testing.T) {
		f := newFixture(t, 0)
		a, err := f.svc.TransitionStatus(context.Background(), worker, f.assignmentID, StatusInProgress)
		require.NoError(t, err)
		require.NotNil(t, a.StartedAt)
		first := *a.StartedAt

		// Repeating the transition is a no-op success.
		again, err := f.svc.TransitionStatus(context.Background(), worker, f.assignmentID, StatusInProgress)
		require.NoError(t, err)
		assert.Equal(t, first, *again.StartedAt)
	})

	t.Run("worker cannot complete", func(t *testing.T) {
		f := newFixture(t, 0)
		_, err := f.svc.TransitionStatus(context.Background(), worker, f.assignmentID, StatusInProgress)
		require.NoError(t, err)
		_, err = f.svc.TransitionStatus(context.Background(), worker, f.assignmentID, StatusCompleted)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("active cannot jump to completed", func(t *testing.T) {
		f := newFixture(t, 0)
		_, err := f.svc.TransitionStatus(context.Background(), owner, f.assignmentID, StatusCompleted)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("either side may dispute", func(t *testing.T) {
		f := newFixture(t, 0)
		a, err := f.svc.TransitionStatus(context.Background(), worker, f.assignmentID, StatusDisputed)
		require.NoError(t, err)
		assert.Equal(t, StatusDisputed, a.Status)
	})

	t.Run("only admin reverts a dispute", func(t *testing.T) {
		f := newFixture(t, 0)
		_, err := f.svc.TransitionStatus(context.Background(), worker, f.assignmentID, StatusDisputed)
		require.NoError(t, err)
		_, err = f.svc.TransitionStatus(context.Background(), owner, f.assignmentID, StatusActive)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
		a, err := f.svc.TransitionStatus(context.Background(), admin, f.assignmentID, StatusActive)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, a.Status)
	})

	t.Run("outsider cannot touch the assignment", func(t *testing.T) {
		f := newFixture(t, 0)
		_, err := f.svc.TransitionStatus(context.Background(), authz.Actor{UserID: "nosy"}, f.assignmentID, StatusInProgress)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("outsider cannot read the record via a no-op transition", func(t *testing.T) {
		f := newFixture(t, 0)
		_, err := f.svc.TransitionStatus(context.Background(), authz.Actor{UserID: "nosy"}, f.assignmentID, StatusActive)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})
}

func TestCompletion(t *testing.T) {
	t.Run("stamps timestamps and creates the payment", func(t *testing.T) {
		f := newFixture(t, 7500)
		_, err := f.svc.TransitionStatus(context.Background(), worker, f.assignmentID, StatusInProgress)
		require.NoError(t, err)
		a, err := f.svc.TransitionStatus(context.Background(), owner, f.assignmentID, StatusCompleted)
		require.NoError(t, err)

		require.NotNil(t, a.CompletedAt)
		require.NotNil(t, a.ExpiresAt)
		assert.Equal(t, a.CompletedAt.Add(ExpiryWindow), *a.ExpiresAt)

		pays, err := f.payments.ListByAssignment(context.Background(), f.assignmentID)
		require.NoError(t, err)
		require.Len(t, pays, 1)
		assert.Equal(t, int64(7500), pays[0].Amount)
		assert.Equal(t, "EUR", pays[0].Currency)
		assert.Equal(t, "owner", pays[0].PayerID)
		assert.Equal(t, "worker", pays[0].PayeeID)
		assert.Equal(t, payment.StatusPending, pays[0].Status)
	})

	t.Run("no payment for a free posting", func(t *testing.T) {
		f := newFixture(t, 0)
		_, err := f.svc.TransitionStatus(context.Background(), worker, f.assignmentID, StatusInProgress)
		require.NoError(t, err)
		_, err = f.svc.TransitionStatus(context.Background(), owner, f.assignmentID, StatusCompleted)
		require.NoError(t, err)

		pays, err := f.payments.ListByAssignment(context.Background(), f.assignmentID)
		require.NoError(t, err)
		assert.Empty(t, pays)
	})

	t.Run("completed is immutable to the owner", func(t *testing.T) {
		f := newFixture(t, 0)
		_, err := f.svc.TransitionStatus(context.Background(), worker, f.assignmentID, StatusInProgress)
		require.NoError(t, err)
		_, err = f.svc.TransitionStatus(context.Background(), owner, f.assignmentID, StatusCompleted)
		require.NoError(t, err)

		_, err = f.svc.TransitionStatus(context.Background(), owner, f.assignmentID, StatusActive)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
		title := "late edit"
		_, err = f.svc.Update(context.Background(), owner, f.assignmentID, Patch{Title: &title})
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))

		// Admin revert and edit still work.
		_, err = f.svc.TransitionStatus(context.Background(), admin, f.assignmentID, StatusActive)
		assert.NoError(t, err)
	})
}

func TestDeleteAssignment(t *testing.T) {
	t.Run("cascades media, payments and chat", func(t *testing.T) {
		f := newFixture(t, 5000)
		require.NoError(t, f.svc.Delete(context.Background(), owner, f.assignmentID))
		assert.Equal(t, []string{f.assignmentID}, f.media.cleaned)
		assert.Equal(t, []string{"assignment:" + f.assignmentID}, f.threads.removed)
		_, err := f.svc.Get(context.Background(), owner, f.assignmentID)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("completed assignments cannot be deleted", func(t *testing.T) {
		f := newFixture(t, 0)
		_, err := f.svc.TransitionStatus(context.Background(), worker, f.assignmentID, StatusInProgress)
		require.NoError(t, err)
		_, err = f.svc.TransitionStatus(context.Background(), owner, f.assignmentID, StatusCompleted)
		require.NoError(t, err)
		err = f.svc.Delete(context.Background(), owner, f.assignmentID)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("worker cannot delete", func(t *testing.T) {
		f := newFixture(t, 0)
		err := f.svc.Delete(context.Background(), worker, f.assignmentID)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})
}

func TestGetAssignment(t *testing.T) {
	f := newFixture(t, 0)

	t.Run("participants and admin can read", func(t *testing.T) {
		for _, actor := range []authz.Actor{owner, worker, admin} {
			_, err := f.svc.Get(context.Background(), actor, f.assignmentID)
			assert.NoError(t, err)
		}
	})

	t.Run("stranger cannot", func(t *testing.T) {
		_, err := f.svc.Get(context.Background(), authz.Actor{UserID: "nosy"}, f.assignmentID)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})
}
