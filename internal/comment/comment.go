// Package comment handles posting comments with single-level replies.
package comment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/authz"
)

type Comment struct {
	ID        string     `json:"id"`
	PostingID string     `json:"posting_id"`
	AuthorID  string     `json:"author_id"`
	Content   string     `json:"content"`
	ParentID  *string    `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

const maxContentLen = 4000

type Store interface {
	Create(ctx context.Context, c Comment) error
	Get(ctx context.Context, id string) (Comment, bool, error)
	Update(ctx context.Context, id, content string, at time.Time) (bool, error)
	SoftDelete(ctx context.Context, id string, at time.Time) (bool, error)
	ListByPosting(ctx context.Context, postingID string) ([]Comment, error)
	SoftDeleteByPosting(ctx context.Context, postingID string, at time.Time) error
}

// Postings resolves a posting's owner for authorization.
type Postings interface {
	OwnerOf(ctx context.Context, id string) (string, bool, error)
}

type Service struct {
	store    Store
	postings Postings
	now      func() time.Time
}

func NewService(store Store, postings Postings) *Service {
	return &Service{
		store:    store,
		postings: postings,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create posts a comment or a reply. Replies may only target top-level
// comments: one level of nesting, never deeper.
func (s *Service) Create(ctx context.Context, actor authz.Actor, postingID, content string, parentID *string) (Comment, error) {
	if actor.UserID == "" {
		return Comment{}, apperr.Forbidden("authentication required")
	}
	if content == "" {
		return Comment{}, apperr.Invalid("comment content is required")
	}
	if len(content) > maxContentLen {
		return Comment{}, apperr.Invalidf("comment exceeds %d characters", maxContentLen)
	}

	_, ok, err := s.postings.OwnerOf(ctx, postingID)
	if err != nil {
		return Comment{}, apperr.Dependency("load posting", err)
	}
	if !ok {
		return Comment{}, apperr.NotFound("posting not found")
	}

	if parentID != nil {
		parent, ok, err := s.store.Get(ctx, *parentID)
		if err != nil {
			return Comment{}, apperr.Dependency("load parent comment", err)
		}
		if !ok || parent.DeletedAt != nil {
			return Comment{}, apperr.NotFound("parent comment not found")
		}
		if parent.PostingID != postingID {
			return Comment{}, apperr.Invalid("parent comment belongs to another posting")
		}
		if parent.ParentID != nil {
			return Comment{}, apperr.Invalid("replies to replies are not allowed")
		}
	}

	now := s.now()
	c := Comment{
		ID:        uuid.NewString(),
		PostingID: postingID,
		AuthorID:  actor.UserID,
		Content:   content,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return Comment{}, apperr.Dependency("create comment", err)
	}
	return c, nil
}

// Update edits a comment's content. Author or admin only.
func (s *Service) Update(ctx context.Context, actor authz.Actor, id, content string) (Comment, error) {
	if content == "" {
		return Comment{}, apperr.Invalid("comment content is required")
	}
	c, snap, err := s.load(ctx, id)
	if err != nil {
		return Comment{}, err
	}
	if !authz.CanComment(actor, authz.ActionWrite, snap) {
		return Comment{}, apperr.Forbidden("only the author can edit this comment")
	}
	now := s.now()
	updated, err := s.store.Update(ctx, id, content, now)
	if err != nil {
		return Comment{}, apperr.Dependency("update comment", err)
	}
	if !updated {
		return Comment{}, apperr.Conflict("comment changed concurrently")
	}
	c.Content = content
	c.UpdatedAt = now
	return c, nil
}

// Delete soft-deletes a comment. Author, posting owner or admin.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) error {
	_, snap, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanComment(actor, authz.ActionDelete, snap) {
		return apperr.Forbidden("not allowed to delete this comment")
	}
	deleted, err := s.store.SoftDelete(ctx, id, s.now())
	if err != nil {
		return apperr.Dependency("delete comment", err)
	}
	if !deleted {
		return apperr.Conflict("comment changed concurrently")
	}
	return nil
}

// ListByPosting returns a posting's live comments, oldest first.
func (s *Service) ListByPosting(ctx context.Context, postingID string) ([]Comment, error) {
	_, ok, err := s.postings.OwnerOf(ctx, postingID)
	if err != nil {
		return nil, apperr.Dependency("load posting", err)
	}
	if !ok {
		return nil, apperr.NotFound("posting not found")
	}
	out, err := s.store.ListByPosting(ctx, postingID)
	if err != nil {
		return nil, apperr.Dependency("list comments", err)
	}
	return out, nil
}

// SoftDeleteByPosting backs the posting deletion cascade.
func (s *Service) SoftDeleteByPosting(ctx context.Context, postingID string, at time.Time) error {
	return s.store.SoftDeleteByPosting(ctx, postingID, at)
}

func (s *Service) load(ctx context.Context, id string) (Comment, authz.CommentSnapshot, error) {
	c, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Comment{}, authz.CommentSnapshot{}, apperr.Dependency("load comment", err)
	}
	if !ok || c.DeletedAt != nil {
		return Comment{}, authz.CommentSnapshot{}, apperr.NotFound("comment not found")
	}
	owner, _, err := s.postings.OwnerOf(ctx, c.PostingID)
	if err != nil {
		return Comment{}, authz.CommentSnapshot{}, apperr.Dependency("load posting", err)
	}
	return c, authz.CommentSnapshot{AuthorID: c.AuthorID, PostingOwnerID: owner}, nil
}
