package comment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/authz"
)

type fakePostings struct{ owners map[string]string }

func (f fakePostings) OwnerOf(_ context.Context, id string) (string, bool, error) {
	owner, ok := f.owners[id]
	return owner, ok, nil
}

func newService() *Service {
	svc := NewService(NewMemoryStore(), fakePostings{owners: map[string]string{"posting-1": "owner"}})
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

var author = authz.Actor{UserID: "author"}

func TestCreateComment(t *testing.T) {
	t.Run("top-level comment", func(t *testing.T) {
		svc := newService()
		c, err := svc.Create(context.Background(), author, "posting-1", "nice posting", nil)
		require.NoError(t, err)
		assert.Nil(t, c.ParentID)
	})

	t.Run("one level of replies only", func(t *testing.T) {
		svc := newService()
		top, err := svc.Create(context.Background(), author, "posting-1", "top", nil)
		require.NoError(t, err)
		reply, err := svc.Create(context.Background(), authz.Actor{UserID: "u2"}, "posting-1", "reply", &top.ID)
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), author, "posting-1", "too deep", &reply.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
	})

	t.Run("reply must stay on the same posting", func(t *testing.T) {
		svc := NewService(NewMemoryStore(), fakePostings{owners: map[string]string{"posting-1": "o1", "posting-2": "o2"}})
		top, err := svc.Create(context.Background(), author, "posting-1", "top", nil)
		require.NoError(t, err)
		_, err = svc.Create(context.Background(), author, "posting-2", "stray", &top.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
	})

	t.Run("missing posting is not found", func(t *testing.T) {
		svc := newService()
		_, err := svc.Create(context.Background(), author, "nope", "hello", nil)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("empty content is invalid", func(t *testing.T) {
		svc := newService()
		_, err := svc.Create(context.Background(), author, "posting-1", "", nil)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
	})
}

func TestUpdateComment(t *testing.T) {
	svc := newService()
	c, err := svc.Create(context.Background(), author, "posting-1", "original", nil)
	require.NoError(t, err)

	t.Run("author edits", func(t *testing.T) {
		got, err := svc.Update(context.Background(), author, c.ID, "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", got.Content)
	})

	t.Run("posting owner cannot edit", func(t *testing.T) {
		_, err := svc.Update(context.Background(), authz.Actor{UserID: "owner"}, c.ID, "hijack")
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})
}

func TestDeleteComment(t *testing.T) {
	mk := func(t *testing.T, svc *Service) Comment {
		t.Helper()
		c, err := svc.Create(context.Background(), author, "posting-1", "hello", nil)
		require.NoError(t, err)
		return c
	}

	t.Run("author deletes", func(t *testing.T) {
		svc := newService()
		c := mk(t, svc)
		require.NoError(t, svc.Delete(context.Background(), author, c.ID))
		list, err := svc.ListByPosting(context.Background(), "posting-1")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("posting owner deletes", func(t *testing.T) {
		svc := newService()
		c := mk(t, svc)
		assert.NoError(t, svc.Delete(context.Background(), authz.Actor{UserID: "owner"}, c.ID))
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		svc := newService()
		c := mk(t, svc)
		err := svc.Delete(context.Background(), authz.Actor{UserID: "nosy"}, c.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("deleted comment reads as gone", func(t *testing.T) {
		svc := newService()
		c := mk(t, svc)
		require.NoError(t, svc.Delete(context.Background(), author, c.ID))
		err := svc.Delete(context.Background(), author, c.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}
