package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/authz"
)

type fakeMedia struct{ cleaned []string }

func (f *fakeMedia) DeleteForEntity(_ context.Context, _ string, ownerID string) int {
	f.cleaned = append(f.cleaned, ownerID)
	return 1
}

var (
	alice = authz.Actor{UserID: "alice"}
	bob   = authz.Actor{UserID: "bob"}
	admin = authz.Actor{UserID: "admin", IsAdmin: true}
)

func newThread(t *testing.T) (*Service, *fakeMedia, string) {
	t.Helper()
	cleaner := &fakeMedia{}
	svc := NewService(NewMemoryStore(), cleaner)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	id, err := svc.OpenContext(context.Background(), KindAssignment, "assignment-1", []string{"alice", "bob"})
	require.NoError(t, err)
	return svc, cleaner, id
}

func TestOpenContext(t *testing.T) {
	t.Run("reopening returns the existing thread", func(t *testing.T) {
		svc, _, id := newThread(t)
		again, err := svc.OpenContext(context.Background(), KindAssignment, "assignment-1", []string{"alice", "bob"})
		require.NoError(t, err)
		assert.Equal(t, id, again)
	})

	t.Run("unknown kind is invalid", func(t *testing.T) {
		svc, _, _ := newThread(t)
		_, err := svc.OpenContext(context.Background(), "posting", "posting-1", nil)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
	})
}

func TestSend(t *testing.T) {
	t.Run("participants exchange messages", func(t *testing.T) {
		svc, _, id := newThread(t)
		_, err := svc.Send(context.Background(), alice, id, TypeText, "hi")
		require.NoError(t, err)
		_, err = svc.Send(context.Background(), bob, id, "", "hello")
		require.NoError(t, err)

		msgs, err := svc.Messages(context.Background(), alice, id)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, TypeText, msgs[1].Type)
	})

	t.Run("outsider cannot write", func(t *testing.T) {
		svc, _, id := newThread(t)
		_, err := svc.Send(context.Background(), authz.Actor{UserID: "nosy"}, id, TypeText, "hi")
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("system messages are admin-only", func(t *testing.T) {
		svc, _, id := newThread(t)
		_, err := svc.Send(context.Background(), alice, id, TypeSystem, "notice")
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
		_, err = svc.Send(context.Background(), admin, id, TypeSystem, "notice")
		assert.NoError(t, err)
	})

	t.Run("missing thread is not found", func(t *testing.T) {
		svc, _, _ := newThread(t)
		_, err := svc.Send(context.Background(), alice, "nope", TypeText, "hi")
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestLeave(t *testing.T) {
	t.Run("a left participant can neither read nor write", func(t *testing.T) {
		svc, _, id := newThread(t)
		require.NoError(t, svc.Leave(context.Background(), bob, id))

		_, err := svc.Send(context.Background(), bob, id, TypeText, "wait")
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
		_, err = svc.Messages(context.Background(), bob, id)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

		// The other side keeps going.
		_, err = svc.Send(context.Background(), alice, id, TypeText, "still here")
		assert.NoError(t, err)
	})

	t.Run("left threads drop out of the listing", func(t *testing.T) {
		svc, _, id := newThread(t)
		require.NoError(t, svc.Leave(context.Background(), bob, id))
		threads, err := svc.Threads(context.Background(), bob)
		require.NoError(t, err)
		assert.Empty(t, threads)
	})
}

func TestDeleteByContext(t *testing.T) {
	svc, cleaner, id := newThread(t)
	require.NoError(t, svc.DeleteByContext(context.Background(), KindAssignment, "assignment-1"))
	assert.Equal(t, []string{id}, cleaner.cleaned)
	_, err := svc.Messages(context.Background(), alice, id)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	// Deleting a context with no thread is a quiet no-op.
	assert.NoError(t, svc.DeleteByContext(context.Background(), KindAssignment, "assignment-2"))
}
