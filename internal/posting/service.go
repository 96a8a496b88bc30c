package posting

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/authz"
	"github.com/worklink-dev/worklink/internal/match"
	"github.com/worklink-dev/worklink/internal/media"
)

// ApplicationCascader removes applications when their posting closes or goes
// away. Implemented by the application store.
type ApplicationCascader interface {
	// DeletePending removes pending applications and returns their ids.
	DeletePending(ctx context.Context, postingID string) ([]string, error)
	// DeleteAll removes every application of the posting and returns the ids.
	DeleteAll(ctx context.Context, postingID string) ([]string, error)
}

// AssignmentCascader removes assignments on posting deletion.
type AssignmentCascader interface {
	DeleteAll(ctx context.Context, postingID string) ([]string, error)
}

// CommentCascader soft-deletes a posting's comments.
type CommentCascader interface {
	SoftDeleteByPosting(ctx context.Context, postingID string, at time.Time) error
}

// ScheduleCascader removes a posting's schedule.
type ScheduleCascader interface {
	DeleteByPosting(ctx context.Context, postingID string) error
}

// MediaCleaner is the slice of the media coordinator the cascade needs.
type MediaCleaner interface {
	DeleteForEntity(ctx context.Context, category, ownerID string) int
	DeletePostingTree(ctx context.Context, postingID string, applicationIDs, assignmentIDs []string) int
}

// InterestSource provides a viewer's declared interests for ranking.
type InterestSource interface {
	InterestsOf(ctx context.Context, userID string) ([]match.Interest, error)
}

// Service owns the posting lifecycle.
type Service struct {
	store       Store
	apps        ApplicationCascader
	assignments AssignmentCascader
	comments    CommentCascader
	schedules   ScheduleCascader
	media       MediaCleaner
	interests   InterestSource
	maxResults  int
	now         func() time.Time
}

func NewService(store Store, apps ApplicationCascader, assignments AssignmentCascader,
	comments CommentCascader, schedules ScheduleCascader, mediaCleaner MediaCleaner,
	interests InterestSource) *Service {
	return &Service{
		store:       store,
		apps:        apps,
		assignments: assignments,
		comments:    comments,
		schedules:   schedules,
		media:       mediaCleaner,
		interests:   interests,
		maxResults:  match.DefaultMaxResults,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput carries the fields a caller may set at creation.
type CreateInput struct {
	Title            string
	Description      string
	PaymentAmount    int64
	PaymentCurrency  string
	PaymentType      PaymentType
	MaxApplicants    int
	MaxAssignees     int
	Location         *Location
	StartAt          *time.Time
	EndAt            *time.Time
	EstimatedMinutes int
	IsPublic         *bool
	ExpiresAt        *time.Time
	Categories       []string
}

// Create makes a draft posting owned by the actor.
func (s *Service) Create(ctx context.Context, actor authz.Actor, in CreateInput) (Posting, error) {
	if actor.UserID == "" {
		return Posting{}, apperr.Forbidden("authentication required")
	}
	now := s.now()
	p := Posting{
		ID:               uuid.NewString(),
		OwnerID:          actor.UserID,
		Title:            in.Title,
		Description:      in.Description,
		Status:           StatusDraft,
		PaymentAmount:    in.PaymentAmount,
		PaymentCurrency:  in.PaymentCurrency,
		PaymentType:      in.PaymentType,
		MaxApplicants:    in.MaxApplicants,
		MaxAssignees:     in.MaxAssignees,
		Location:         in.Location,
		StartAt:          in.StartAt,
		EndAt:            in.EndAt,
		EstimatedMinutes: in.EstimatedMinutes,
		IsPublic:         true,
		ExpiresAt:        in.ExpiresAt,
		Categories:       in.Categories,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if p.PaymentType == "" {
		p.PaymentType = PaymentFixed
	}
	if p.MaxApplicants == 0 {
		p.MaxApplicants = 1
	}
	if p.MaxAssignees == 0 {
		p.MaxAssignees = 1
	}
	if in.IsPublic != nil {
		p.IsPublic = *in.IsPublic
	}
	if err := validate(p); err != nil {
		return Posting{}, err
	}
	created, err := s.store.Create(ctx, p)
	if err != nil {
		return Posting{}, apperr.Dependency("create posting", err)
	}
	return created, nil
}

// Get loads one posting. Existence is checked before authorization so a
// missing posting is always 404, never 403.
func (s *Service) Get(ctx context.Context, actor authz.Actor, id string) (Posting, error) {
	p, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Posting{}, apperr.Dependency("load posting", err)
	}
	if !ok {
		return Posting{}, apperr.NotFound("posting not found")
	}
	if !authz.CanPosting(actor, authz.ActionRead, snapshot(p)) {
		return Posting{}, apperr.Forbidden("not allowed to view this posting")
	}
	return p, nil
}

// Update applies a patch. Owner or admin only.
func (s *Service) Update(ctx context.Context, actor authz.Actor, id string, patch Patch) (Posting, error) {
	p, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Posting{}, apperr.Dependency("load posting", err)
	}
	if !ok {
		return Posting{}, apperr.NotFound("posting not found")
	}
	if !authz.CanPosting(actor, authz.ActionWrite, snapshot(p)) {
		return Posting{}, apperr.Forbidden("only the owner can update this posting")
	}

	p.apply(patch)
	p.UpdatedAt = s.now()
	if err := validate(p); err != nil {
		return Posting{}, err
	}
	if err := s.store.Update(ctx, p); err != nil {
		return Posting{}, apperr.Dependency("update posting", err)
	}
	return p, nil
}

// TransitionStatus drives the posting state machine.
func (s *Service) TransitionStatus(ctx context.Context, actor authz.Actor, id string, to Status) (Posting, error) {
	p, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Posting{}, apperr.Dependency("load posting", err)
	}
	if !ok {
		return Posting{}, apperr.NotFound("posting not found")
	}
	if !authz.CanPosting(actor, authz.ActionStatus, snapshot(p)) {
		return Posting{}, apperr.Forbidden("only the owner can change posting status")
	}
	if !canTransition(p.Status, to) {
		return Posting{}, apperr.Conflictf("cannot transition posting from %s to %s", p.Status, to)
	}

	now := s.now()
	var publishAt *time.Time
	if to == StatusPublished {
		if p.StartAt == nil {
			return Posting{}, apperr.Invalid("a posting needs start_at before publishing")
		}
		if p.Status == StatusClosed {
			// Reopening is gated by assignee capacity.
			active, err := s.store.CountActiveAssignments(ctx, id)
			if err != nil {
				return Posting{}, apperr.Dependency("count assignments", err)
			}
			if !CanReopen(p, active) {
				return Posting{}, apperr.Conflict("assignee capacity exceeded, cannot reopen")
			}
		}
		if p.PublishAt == nil {
			publishAt = &now
		}
	}

	updated, err := s.store.UpdateStatus(ctx, id, p.Status, to, publishAt, now)
	if err != nil {
		return Posting{}, apperr.Dependency("update posting status", err)
	}
	if !updated {
		return Posting{}, apperr.Conflict("posting status changed concurrently")
	}
	p.Status = to
	p.UpdatedAt = now
	if publishAt != nil {
		p.PublishAt = publishAt
	}

	// Closing or cancelling sweeps pending applications and their media.
	// Accepted and rejected applications stay untouched. Best-effort: the
	// transition itself has already committed.
	if to == StatusClosed || to == StatusCancelled {
		ids, err := s.apps.DeletePending(ctx, id)
		if err != nil {
			log.Printf("posting: failed to sweep pending applications of %s: %v", id, err)
		}
		for _, appID := range ids {
			s.media.DeleteForEntity(ctx, media.CategoryApplication, appID)
		}
	}
	return p, nil
}

// Delete soft-deletes a posting and cascades: media for the whole subtree,
// assignments and applications hard-deleted, comments soft-deleted. Blocked
// while any assignment is still running.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) error {
	p, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return apperr.Dependency("load posting", err)
	}
	if !ok {
		return apperr.NotFound("posting not found")
	}
	if !authz.CanPosting(actor, authz.ActionDelete, snapshot(p)) {
		return apperr.Forbidden("only the owner can delete this posting")
	}

	active, err := s.store.CountActiveAssignments(ctx, id)
	if err != nil {
		return apperr.Dependency("count assignments", err)
	}
	if active > 0 {
		return apperr.Conflict("posting has active assignments")
	}

	now := s.now()
	deleted, err := s.store.SoftDelete(ctx, id, now)
	if err != nil {
		return apperr.Dependency("delete posting", err)
	}
	if !deleted {
		return apperr.Conflict("posting changed concurrently")
	}

	// Cleanup below is best-effort; the soft delete has already committed.
	assignmentIDs, err := s.assignments.DeleteAll(ctx, id)
	if err != nil {
		log.Printf("posting: failed to delete assignments of %s: %v", id, err)
	}
	appIDs, err := s.apps.DeleteAll(ctx, id)
	if err != nil {
		log.Printf("posting: failed to delete applications of %s: %v", id, err)
	}
	s.media.DeletePostingTree(ctx, id, appIDs, assignmentIDs)
	if err := s.comments.SoftDeleteByPosting(ctx, id, now); err != nil {
		log.Printf("posting: failed to soft-delete comments of %s: %v", id, err)
	}
	if err := s.schedules.DeleteByPosting(ctx, id); err != nil {
		log.Printf("posting: failed to delete schedule of %s: %v", id, err)
	}
	return nil
}

// List returns postings for the viewer. Admins see everything unranked and
// uncapped; everyone else sees public published postings ranked by interest
// match and capped.
func (s *Service) List(ctx context.Context, actor authz.Actor) ([]Posting, error) {
	if actor.IsAdmin {
		all, err := s.store.List(ctx, Filter{})
		if err != nil {
			return nil, apperr.Dependency("list postings", err)
		}
		return all, nil
	}

	visible, err := s.store.List(ctx, Filter{PublicOnly: true})
	if err != nil {
		return nil, apperr.Dependency("list postings", err)
	}

	var interests []match.Interest
	if actor.UserID != "" {
		interests, err = s.interests.InterestsOf(ctx, actor.UserID)
		if err != nil {
			return nil, apperr.Dependency("load interests", err)
		}
	}

	cands := make([]match.Candidate, len(visible))
	byID := make(map[string]Posting, len(visible))
	for i, p := range visible {
		cands[i] = match.Candidate{ID: p.ID, Categories: p.Categories}
		byID[p.ID] = p
	}
	ranked := match.Rank(interests, cands, s.maxResults)

	out := make([]Posting, len(ranked))
	for i, id := range ranked {
		out[i] = byID[id]
	}
	return out, nil
}

// ListByOwner returns the actor's own postings in every status.
func (s *Service) ListByOwner(ctx context.Context, actor authz.Actor) ([]Posting, error) {
	if actor.UserID == "" {
		return nil, apperr.Forbidden("authentication required")
	}
	out, err := s.store.List(ctx, Filter{OwnerID: actor.UserID})
	if err != nil {
		return nil, apperr.Dependency("list postings", err)
	}
	return out, nil
}

func snapshot(p Posting) authz.PostingSnapshot {
	return authz.PostingSnapshot{
		OwnerID:  p.OwnerID,
		IsPublic: p.IsPublic && p.Status == StatusPublished,
		Deleted:  p.DeletedAt != nil,
	}
}
