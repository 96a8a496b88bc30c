package rating

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/assignment"
	"github.com/worklink-dev/worklink/internal/authz"
)

var (
	owner  = authz.Actor{UserID: "owner"}
	worker = authz.Actor{UserID: "worker"}
)

func newService(t *testing.T, status assignment.Status) (*Service, *MemoryStore) {
	t.Helper()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	assignments := assignment.NewMemoryStore()
	require.NoError(t, assignments.Create(context.Background(), assignment.Assignment{
		ID:        "assignment-1",
		PostingID: "posting-1",
		OwnerID:   "owner",
		WorkerID:  "worker",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	store := NewMemoryStore()
	svc := NewService(store, assignments)
	svc.now = func() time.Time { return now }
	return svc, store
}

func TestCanRate(t *testing.T) {
	t.Run("owner rates the worker and vice versa", func(t *testing.T) {
		svc, _ := newService(t, assignment.StatusCompleted)
		ratee, err := svc.CanRate(context.Background(), owner, "assignment-1")
		require.NoError(t, err)
		assert.Equal(t, "worker", ratee)

		ratee, err = svc.CanRate(context.Background(), worker, "assignment-1")
		require.NoError(t, err)
		assert.Equal(t, "owner", ratee)
	})

	t.Run("missing assignment is not found", func(t *testing.T) {
		svc, _ := newService(t, assignment.StatusCompleted)
		_, err := svc.CanRate(context.Background(), owner, "nope")
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("unfinished assignment conflicts", func(t *testing.T) {
		svc, _ := newService(t, assignment.StatusInProgress)
		_, err := svc.CanRate(context.Background(), owner, "assignment-1")
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		svc, _ := newService(t, assignment.StatusCompleted)
		_, err := svc.CanRate(context.Background(), authz.Actor{UserID: "nosy"}, "assignment-1")
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})
}

func TestSubmit(t *testing.T) {
	t.Run("folds the score into the moving average", func(t *testing.T) {
		svc, store := newService(t, assignment.StatusCompleted)
		store.Seed("worker", 4.0, 2)

		agg, err := svc.Submit(context.Background(), owner, "assignment-1", 5)
		require.NoError(t, err)
		assert.InDelta(t, 4.333, agg.Average, 0.001)
		assert.Equal(t, 3, agg.Count)
	})

	t.Run("first rating starts the aggregate", func(t *testing.T) {
		svc, _ := newService(t, assignment.StatusCompleted)
		agg, err := svc.Submit(context.Background(), worker, "assignment-1", 4)
		require.NoError(t, err)
		assert.Equal(t, 4.0, agg.Average)
		assert.Equal(t, 1, agg.Count)
	})

	t.Run("both sides rate independently, each once", func(t *testing.T) {
		svc, _ := newService(t, assignment.StatusCompleted)
		_, err := svc.Submit(context.Background(), owner, "assignment-1", 5)
		require.NoError(t, err)
		_, err = svc.Submit(context.Background(), worker, "assignment-1", 3)
		require.NoError(t, err)

		_, err = svc.Submit(context.Background(), owner, "assignment-1", 1)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("score bounds", func(t *testing.T) {
		svc, _ := newService(t, assignment.StatusCompleted)
		for _, score := range []int{0, 6, -1} {
			_, err := svc.Submit(context.Background(), owner, "assignment-1", score)
			assert.True(t, apperr.IsKind(err, apperr.KindInvalid), "score %d", score)
		}
	})
}

func TestAggregateOf(t *testing.T) {
	t.Run("never-rated user reads as the zero aggregate", func(t *testing.T) {
		svc, store := newService(t, assignment.StatusCompleted)
		store.AddUser("worker")
		agg, err := svc.AggregateOf(context.Background(), "worker")
		require.NoError(t, err)
		assert.Equal(t, Aggregate{UserID: "worker"}, agg)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		svc, _ := newService(t, assignment.StatusCompleted)
		_, err := svc.AggregateOf(context.Background(), "ghost")
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}
