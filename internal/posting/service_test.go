package posting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/authz"
	"github.com/worklink-dev/worklink/internal/match"
)

type fakeApps struct {
	pending []string
	all     []string
}

func (f *fakeApps) DeletePending(context.Context, string) ([]string, error) { return f.pending, nil }
func (f *fakeApps) DeleteAll(context.Context, string) ([]string, error)    { return f.all, nil }

type fakeAssignments struct{ all []string }

func (f *fakeAssignments) DeleteAll(context.Context, string) ([]string, error) { return f.all, nil }

type fakeComments struct{ swept []string }

func (f *fakeComments) SoftDeleteByPosting(_ context.Context, id string, _ time.Time) error {
	f.swept = append(f.swept, id)
	return nil
}

type fakeSchedules struct{ deleted []string }

func (f *fakeSchedules) DeleteByPosting(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeMedia struct {
	entities []string
	trees    []string
}

func (f *fakeMedia) DeleteForEntity(_ context.Context, _ string, ownerID string) int {
	f.entities = append(f.entities, ownerID)
	return 1
}

func (f *fakeMedia) DeletePostingTree(_ context.Context, postingID string, _, _ []string) int {
	f.trees = append(f.trees, postingID)
	return 1
}

type fakeInterests struct{ byUser map[string][]match.Interest }

func (f *fakeInterests) InterestsOf(_ context.Context, userID string) ([]match.Interest, error) {
	return f.byUser[userID], nil
}

type postingFixture struct {
	svc       *Service
	store     *MemoryStore
	apps      *fakeApps
	media     *fakeMedia
	comments  *fakeComments
	schedules *fakeSchedules
}

func newFixture() *postingFixture {
	store := NewMemoryStore()
	apps := &fakeApps{}
	media := &fakeMedia{}
	comments := &fakeComments{}
	schedules := &fakeSchedules{}
	svc := NewService(store, apps, &fakeAssignments{}, comments, schedules, media,
		&fakeInterests{byUser: map[string][]match.Interest{}})
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return &postingFixture{svc: svc, store: store, apps: apps, media: media, comments: comments, schedules: schedules}
}

func validInput() CreateInput {
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	return CreateInput{
		Title:         "Fix the garden fence",
		PaymentAmount: 5000,
		PaymentType:   PaymentFixed,
		MaxApplicants: 3,
		MaxAssignees:  1,
		StartAt:       &start,
		Categories:    []string{"carpentry"},
	}
}

func TestCreatePosting(t *testing.T) {
	f := newFixture()
	owner := authz.Actor{UserID: "u1"}

	t.Run("starts as draft", func(t *testing.T) {
		p, err := f.svc.Create(context.Background(), owner, validInput())
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, p.Status)
		assert.Equal(t, "u1", p.OwnerID)
		assert.True(t, p.IsPublic)
		assert.NotEmpty(t, p.ID)
	})

	t.Run("rejects missing title", func(t *testing.T) {
		in := validInput()
		in.Title = ""
		_, err := f.svc.Create(context.Background(), owner, in)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
	})

	t.Run("rejects assignees above applicants", func(t *testing.T) {
		in := validInput()
		in.MaxApplicants = 2
		in.MaxAssignees = 5
		_, err := f.svc.Create(context.Background(), owner, in)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
	})

	t.Run("requires authentication", func(t *testing.T) {
		_, err := f.svc.Create(context.Background(), authz.Actor{}, validInput())
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})
}

func TestGetPosting(t *testing.T) {
	f := newFixture()
	owner := authz.Actor{UserID: "u1"}
	p, err := f.svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	t.Run("owner sees draft", func(t *testing.T) {
		got, err := f.svc.Get(context.Background(), owner, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
	})

	t.Run("stranger cannot see draft", func(t *testing.T) {
		_, err := f.svc.Get(context.Background(), authz.Actor{UserID: "u2"}, p.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("anyone sees published", func(t *testing.T) {
		_, err := f.svc.TransitionStatus(context.Background(), owner, p.ID, StatusPublished)
		require.NoError(t, err)
		got, err := f.svc.Get(context.Background(), authz.Actor{UserID: "u2"}, p.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPublished, got.Status)
	})

	t.Run("missing posting is not found, even for admin", func(t *testing.T) {
		_, err := f.svc.Get(context.Background(), authz.Actor{UserID: "a", IsAdmin: true}, "nope")
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestTransitionStatus(t *testing.T) {
	owner := authz.Actor{UserID: "u1"}

	t.Run("publish stamps publish_at", func(t *testing.T) {
		f := newFixture()
		p, _ := f.svc.Create(context.Background(), owner, validInput())
		got, err := f.svc.TransitionStatus(context.Background(), owner, p.ID, StatusPublished)
		require.NoError(t, err)
		require.NotNil(t, got.PublishAt)
		assert.Equal(t, f.svc.now(), *got.PublishAt)
	})

	t.Run("publish without start date fails", func(t *testing.T) {
		f := newFixture()
		in := validInput()
		in.StartAt = nil
		p, err := f.svc.Create(context.Background(), owner, in)
		require.NoError(t, err)
		_, err = f.svc.TransitionStatus(context.Background(), owner, p.ID, StatusPublished)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
	})

	t.Run("draft cannot close", func(t *testing.T) {
		f := newFixture()
		p, _ := f.svc.Create(context.Background(), owner, validInput())
		_, err := f.svc.TransitionStatus(context.Background(), owner, p.ID, StatusClosed)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		f := newFixture()
		p, _ := f.svc.Create(context.Background(), owner, validInput())
		_, err := f.svc.TransitionStatus(context.Background(), owner, p.ID, StatusPublished)
		require.NoError(t, err)
		_, err = f.svc.TransitionStatus(context.Background(), owner, p.ID, StatusCancelled)
		require.NoError(t, err)
		_, err = f.svc.TransitionStatus(context.Background(), owner, p.ID, StatusPublished)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("closing sweeps pending applications and their media", func(t *testing.T) {
		f := newFixture()
		f.apps.pending = []string{"app1", "app2"}
		p, _ := f.svc.Create(context.Background(), owner, validInput())
		_, err := f.svc.TransitionStatus(context.Background(), owner, p.ID, StatusPublished)
		require.NoError(t, err)
		_, err = f.svc.TransitionStatus(context.Background(), owner, p.ID, StatusClosed)
		require.NoError(t, err)
		assert.Equal(t, []string{"app1", "app2"}, f.media.entities)
	})

	t.Run("reopen blocked at assignee capacity", func(t *testing.T) {
		f := newFixture()
		p, _ := f.svc.Create(context.Background(), owner, validInput())
		_, err := f.svc.TransitionStatus(context.Background(), owner, p.ID, StatusPublished)
		require.NoError(t, err)
		_, err = f.svc.TransitionStatus(context.Background(), owner, p.ID, StatusClosed)
		require.NoError(t, err)

		f.store.ActiveAssignments[p.ID] = 1 // MaxAssignees is 1
		_, err = f.svc.TransitionStatus(context.Background(), owner, p.ID, StatusPublished)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))

		f.store.ActiveAssignments[p.ID] = 0
		got, err := f.svc.TransitionStatus(context.Background(), owner, p.ID, StatusPublished)
		require.NoError(t, err)
		assert.Equal(t, StatusPublished, got.Status)
	})

	t.Run("non-owner cannot change status", func(t *testing.T) {
		f := newFixture()
		p, _ := f.svc.Create(context.Background(), owner, validInput())
		_, err := f.svc.TransitionStatus(context.Background(), authz.Actor{UserID: "u2"}, p.ID, StatusPublished)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("admin can change status", func(t *testing.T) {
		f := newFixture()
		p, _ := f.svc.Create(context.Background(), owner, validInput())
		_, err := f.svc.TransitionStatus(context.Background(), authz.Actor{UserID: "a", IsAdmin: true}, p.ID, StatusPublished)
		assert.NoError(t, err)
	})
}

func TestUpdatePosting(t *testing.T) {
	f := newFixture()
	owner := authz.Actor{UserID: "u1"}
	p, err := f.svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	t.Run("applies patch fields", func(t *testing.T) {
		title := "Rebuild the garden fence"
		amount := int64(7500)
		got, err := f.svc.Update(context.Background(), owner, p.ID, Patch{Title: &title, PaymentAmount: &amount})
		require.NoError(t, err)
		assert.Equal(t, title, got.Title)
		assert.Equal(t, amount, got.PaymentAmount)
	})

	t.Run("patch cannot break validation", func(t *testing.T) {
		empty := ""
		_, err := f.svc.Update(context.Background(), owner, p.ID, Patch{Title: &empty})
		assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		title := "hijack"
		_, err := f.svc.Update(context.Background(), authz.Actor{UserID: "u2"}, p.ID, Patch{Title: &title})
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})
}

func TestDeletePosting(t *testing.T) {
	owner := authz.Actor{UserID: "u1"}

	t.Run("cascades the whole subtree", func(t *testing.T) {
		f := newFixture()
		f.apps.all = []string{"app1"}
		p, _ := f.svc.Create(context.Background(), owner, validInput())
		require.NoError(t, f.svc.Delete(context.Background(), owner, p.ID))

		_, _, err := f.store.Get(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{p.ID}, f.media.trees)
		assert.Equal(t, []string{p.ID}, f.comments.swept)
		assert.Equal(t, []string{p.ID}, f.schedules.deleted)

		_, svcErr := f.svc.Get(context.Background(), owner, p.ID)
		assert.True(t, apperr.IsKind(svcErr, apperr.KindNotFound))
	})

	t.Run("blocked while assignments run", func(t *testing.T) {
		f := newFixture()
		p, _ := f.svc.Create(context.Background(), owner, validInput())
		f.store.ActiveAssignments[p.ID] = 1
		err := f.svc.Delete(context.Background(), owner, p.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("only owner or admin may delete", func(t *testing.T) {
		f := newFixture()
		p, _ := f.svc.Create(context.Background(), owner, validInput())
		err := f.svc.Delete(context.Background(), authz.Actor{UserID: "u2"}, p.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
		assert.NoError(t, f.svc.Delete(context.Background(), authz.Actor{UserID: "a", IsAdmin: true}, p.ID))
	})
}

func TestListPostings(t *testing.T) {
	f := newFixture()
	owner := authz.Actor{UserID: "owner"}
	interests := &fakeInterests{byUser: map[string][]match.Interest{
		"viewer": {{CategoryID: "plumbing", Proficiency: 5}},
	}}
	f.svc.interests = interests

	mk := func(title, category string, publish bool) Posting {
		in := validInput()
		in.Title = title
		in.Categories = []string{category}
		p, err := f.svc.Create(context.Background(), owner, in)
		require.NoError(t, err)
		if publish {
			p, err = f.svc.TransitionStatus(context.Background(), owner, p.ID, StatusPublished)
			require.NoError(t, err)
		}
		return p
	}

	lowMatch := mk("fence", "carpentry", true)
	highMatch := mk("leaky tap", "plumbing", true)
	mk("hidden draft", "plumbing", false)

	t.Run("viewer gets match-ranked published postings", func(t *testing.T) {
		got, err := f.svc.List(context.Background(), authz.Actor{UserID: "viewer"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, highMatch.ID, got[0].ID)
		assert.Equal(t, lowMatch.ID, got[1].ID)
	})

	t.Run("admin sees drafts too", func(t *testing.T) {
		got, err := f.svc.List(context.Background(), authz.Actor{UserID: "a", IsAdmin: true})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("owner listing includes every status", func(t *testing.T) {
		got, err := f.svc.ListByOwner(context.Background(), owner)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}
