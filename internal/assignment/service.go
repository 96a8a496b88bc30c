package assignment

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/authz"
	"github.com/worklink-dev/worklink/internal/media"
	"github.com/worklink-dev/worklink/internal/payment"
	"github.com/worklink-dev/worklink/internal/posting"
)

// Postings supplies the payment terms needed at completion time.
type Postings interface {
	Get(ctx context.Context, id string) (posting.Posting, bool, error)
}

// Payments removes an assignment's payment records on deletion.
type Payments interface {
	DeleteByAssignment(ctx context.Context, assignmentID string) error
}

// ThreadRemover tears down the assignment's chat thread.
type ThreadRemover interface {
	DeleteByContext(ctx context.Context, kind, contextID string) error
}

// MediaCleaner removes an assignment's attachments.
type MediaCleaner interface {
	DeleteForEntity(ctx context.Context, category, ownerID string) int
}

type Service struct {
	store    Store
	postings Postings
	payments Payments
	threads  ThreadRemover
	media    MediaCleaner
	now      func() time.Time
}

func NewService(store Store, postings Postings, payments Payments,
	threads ThreadRemover, mediaCleaner MediaCleaner) *Service {
	return &Service{
		store:    store,
		postings: postings,
		payments: payments,
		threads:  threads,
		media:    mediaCleaner,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Open creates an active assignment from an accepted application. Called by
// the application service; authorization happened there.
func (s *Service) Open(ctx context.Context, postingID, applicationID, ownerID, workerID string, at time.Time) (string, error) {
	a := Assignment{
		ID:            uuid.NewString(),
		PostingID:     postingID,
		ApplicationID: applicationID,
		OwnerID:       ownerID,
		WorkerID:      workerID,
		Status:        StatusActive,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return "", err
	}
	return a.ID, nil
}

// Get returns an assignment to its participants or an admin.
func (s *Service) Get(ctx context.Context, actor authz.Actor, id string) (Assignment, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if !authz.CanAssignment(actor, authz.ActionRead, snapshot(a)) {
		return Assignment{}, apperr.Forbidden("not allowed to view this assignment")
	}
	return a, nil
}

// TransitionStatus drives the assignment state machine. Repeating the
// current status is a no-op success, so started_at is stamped exactly once.
func (s *Service) TransitionStatus(ctx context.Context, actor authz.Actor, id string, to Status) (Assignment, error) {
	if !validStatus(to) {
		return Assignment{}, apperr.Invalidf("unknown assignment status %q", to)
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if a.Status == to {
		// The no-op still reveals the record, so it stays participant-only.
		if !authz.CanAssignment(actor, authz.ActionRead, snapshot(a)) {
			return Assignment{}, apperr.Forbidden("not allowed to view this assignment")
		}
		return a, nil
	}
	if !canDrive(actor, a, to) {
		return Assignment{}, apperr.Forbidden("not allowed to move this assignment to " + string(to))
	}
	if !canTransition(a.Status, to) {
		return Assignment{}, apperr.Conflictf("cannot transition assignment from %s to %s", a.Status, to)
	}

	now := s.now()
	if to == StatusCompleted {
		return s.complete(ctx, a, now)
	}

	var startedAt *time.Time
	if to == StatusInProgress && a.StartedAt == nil {
		startedAt = &now
	}
	updated, err := s.store.UpdateStatus(ctx, id, a.Status, to, startedAt, now)
	if err != nil {
		return Assignment{}, apperr.Dependency("update assignment status", err)
	}
	if !updated {
		return Assignment{}, apperr.Conflict("assignment status changed concurrently")
	}
	a.Status = to
	a.UpdatedAt = now
	if startedAt != nil {
		a.StartedAt = startedAt
	}
	return a, nil
}

// complete stamps completed_at and expires_at and creates the payment for
// the posting's amount in the same transaction as the status flip.
func (s *Service) complete(ctx context.Context, a Assignment, now time.Time) (Assignment, error) {
	expires := now.Add(ExpiryWindow)

	var pay *payment.Payment
	p, ok, err := s.postings.Get(ctx, a.PostingID)
	if err != nil {
		return Assignment{}, apperr.Dependency("load posting", err)
	}
	if ok && p.PaymentAmount > 0 {
		currency := p.PaymentCurrency
		if currency == "" {
			currency = payment.DefaultCurrency
		}
		pay = &payment.Payment{
			ID:           uuid.NewString(),
			AssignmentID: a.ID,
			PayerID:      a.OwnerID,
			PayeeID:      a.WorkerID,
			Amount:       p.PaymentAmount,
			Currency:     currency,
			Status:       payment.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	updated, err := s.store.Complete(ctx, a.ID, a.Status, now, expires, pay)
	if err != nil {
		return Assignment{}, apperr.Dependency("complete assignment", err)
	}
	if !updated {
		return Assignment{}, apperr.Conflict("assignment status changed concurrently")
	}
	a.Status = StatusCompleted
	a.CompletedAt = &now
	a.ExpiresAt = &expires
	a.UpdatedAt = now
	return a, nil
}

// Update edits the override fields. Completed assignments are immutable
// except to admins.
func (s *Service) Update(ctx context.Context, actor authz.Actor, id string, patch Patch) (Assignment, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if !authz.CanAssignment(actor, authz.ActionWrite, snapshot(a)) {
		return Assignment{}, apperr.Forbidden("only the owner can update this assignment")
	}
	if a.Status == StatusCompleted && !actor.IsAdmin {
		return Assignment{}, apperr.Conflict("completed assignments are immutable")
	}
	a.apply(patch)
	a.UpdatedAt = s.now()
	if err := s.store.Update(ctx, a); err != nil {
		return Assignment{}, apperr.Dependency("update assignment", err)
	}
	return a, nil
}

// Delete removes an assignment and cascades to its media, payments and chat
// thread. Completed assignments cannot be deleted.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) error {
	a, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanAssignment(actor, authz.ActionDelete, snapshot(a)) {
		return apperr.Forbidden("only the owner can delete this assignment")
	}
	if a.Status == StatusCompleted {
		return apperr.Conflict("completed assignments cannot be deleted")
	}
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return apperr.Dependency("delete assignment", err)
	}
	if !deleted {
		return apperr.Conflict("assignment changed concurrently")
	}

	// Cleanup is best-effort once the row is gone.
	s.media.DeleteForEntity(ctx, media.CategoryAssignment, id)
	if err := s.payments.DeleteByAssignment(ctx, id); err != nil {
		log.Printf("assignment: failed to delete payments of %s: %v", id, err)
	}
	if err := s.threads.DeleteByContext(ctx, "assignment", id); err != nil {
		log.Printf("assignment: failed to delete chat thread of %s: %v", id, err)
	}
	return nil
}

// ListByPosting returns a posting's assignments to its owner or an admin.
func (s *Service) ListByPosting(ctx context.Context, actor authz.Actor, postingID string) ([]Assignment, error) {
	p, ok, err := s.postings.Get(ctx, postingID)
	if err != nil {
		return nil, apperr.Dependency("load posting", err)
	}
	if !ok {
		return nil, apperr.NotFound("posting not found")
	}
	if p.OwnerID != actor.UserID && !actor.IsAdmin {
		return nil, apperr.Forbidden("only the posting owner can list assignments")
	}
	out, err := s.store.ListByPosting(ctx, postingID)
	if err != nil {
		return nil, apperr.Dependency("list assignments", err)
	}
	return out, nil
}

// ListMine returns assignments where the actor works or owns.
func (s *Service) ListMine(ctx context.Context, actor authz.Actor) ([]Assignment, error) {
	if actor.UserID == "" {
		return nil, apperr.Forbidden("authentication required")
	}
	working, err := s.store.ListByWorker(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.Dependency("list assignments", err)
	}
	owning, err := s.store.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.Dependency("list assignments", err)
	}
	return append(working, owning...), nil
}

// Participants exposes (owner, worker) to the payment service.
func (s *Service) Participants(ctx context.Context, id string) (string, string, bool, error) {
	a, ok, err := s.store.Get(ctx, id)
	if err != nil || !ok {
		return "", "", false, err
	}
	return a.OwnerID, a.WorkerID, true, nil
}

// DeleteAll backs the posting deletion cascade.
func (s *Service) DeleteAll(ctx context.Context, postingID string) ([]string, error) {
	ids, err := s.store.DeleteByPosting(ctx, postingID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := s.payments.DeleteByAssignment(ctx, id); err != nil {
			log.Printf("assignment: failed to delete payments of %s: %v", id, err)
		}
		if err := s.threads.DeleteByContext(ctx, "assignment", id); err != nil {
			log.Printf("assignment: failed to delete chat thread of %s: %v", id, err)
		}
	}
	return ids, nil
}

func (s *Service) load(ctx context.Context, id string) (Assignment, error) {
	a, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Assignment{}, apperr.Dependency("load assignment", err)
	}
	if !ok {
		return Assignment{}, apperr.NotFound("assignment not found")
	}
	return a, nil
}

func snapshot(a Assignment) authz.AssignmentSnapshot {
	return authz.AssignmentSnapshot{OwnerID: a.OwnerID, AcceptedUserID: a.WorkerID}
}
