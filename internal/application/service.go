package application

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/authz"
	"github.com/worklink-dev/worklink/internal/media"
	"github.com/worklink-dev/worklink/internal/posting"
)

// Postings is the slice of the posting store the service needs.
type Postings interface {
	Get(ctx context.Context, id string) (posting.Posting, bool, error)
	CountApplications(ctx context.Context, postingID string) (int, error)
	CountActiveAssignments(ctx context.Context, postingID string) (int, error)
}

// AssignmentOpener creates the assignment that an accepted application
// turns into. Returns the new assignment id.
type AssignmentOpener interface {
	Open(ctx context.Context, postingID, applicationID, ownerID, userID string, at time.Time) (string, error)
}

// ThreadOpener opens the chat thread between owner and accepted applicant.
type ThreadOpener interface {
	OpenContext(ctx context.Context, kind, contextID string, participants []string) (string, error)
}

// MediaCleaner removes an application's attachments on withdrawal.
type MediaCleaner interface {
	DeleteForEntity(ctx context.Context, category, ownerID string) int
}

type Service struct {
	store       Store
	postings    Postings
	assignments AssignmentOpener
	threads     ThreadOpener
	media       MediaCleaner
	now         func() time.Time
}

func NewService(store Store, postings Postings, assignments AssignmentOpener,
	threads ThreadOpener, mediaCleaner MediaCleaner) *Service {
	return &Service{
		store:       store,
		postings:    postings,
		assignments: assignments,
		threads:     threads,
		media:       mediaCleaner,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Apply submits an application to a published posting.
func (s *Service) Apply(ctx context.Context, actor authz.Actor, postingID, message string) (Application, error) {
	if actor.UserID == "" {
		return Application{}, apperr.Forbidden("authentication required")
	}
	if len(message) > maxMessageLen {
		return Application{}, apperr.Invalidf("message exceeds %d characters", maxMessageLen)
	}

	p, ok, err := s.postings.Get(ctx, postingID)
	if err != nil {
		return Application{}, apperr.Dependency("load posting", err)
	}
	if !ok {
		return Application{}, apperr.NotFound("posting not found")
	}
	if p.OwnerID == actor.UserID {
		return Application{}, apperr.Invalid("cannot apply to your own posting")
	}
	if p.Status != posting.StatusPublished {
		return Application{}, apperr.Conflict("posting is not accepting applications")
	}

	count, err := s.postings.CountApplications(ctx, postingID)
	if err != nil {
		return Application{}, apperr.Dependency("count applications", err)
	}
	if !posting.CanAcceptApplication(p, count) {
		return Application{}, apperr.Conflict("posting reached its applicant limit")
	}

	now := s.now()
	a := Application{
		ID:          uuid.NewString(),
		PostingID:   postingID,
		ApplicantID: actor.UserID,
		Message:     message,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, a); err != nil {
		if err == ErrDuplicate {
			return Application{}, apperr.Conflict("you already applied to this posting")
		}
		return Application{}, apperr.Dependency("create application", err)
	}
	return a, nil
}

// Get returns one application to its applicant, the posting owner, or an
// admin.
func (s *Service) Get(ctx context.Context, actor authz.Actor, id string) (Application, error) {
	a, snap, err := s.load(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if !authz.CanApplication(actor, authz.ActionRead, snap) {
		return Application{}, apperr.Forbidden("not allowed to view this application")
	}
	return a, nil
}

// Withdraw hard-deletes a pending application along with its attachments.
func (s *Service) Withdraw(ctx context.Context, actor authz.Actor, id string) error {
	a, snap, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanApplication(actor, authz.ActionWithdraw, snap) {
		return apperr.Forbidden("only the applicant can withdraw")
	}
	if a.Status != StatusPending {
		return apperr.Conflict("only pending applications can be withdrawn")
	}
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return apperr.Dependency("delete application", err)
	}
	if !deleted {
		return apperr.Conflict("application changed concurrently")
	}
	s.media.DeleteForEntity(ctx, media.CategoryApplication, id)
	return nil
}

// Accept approves a pending application, converts it into an assignment and
// opens the chat thread. Capacity is re-checked at acceptance time.
func (s *Service) Accept(ctx context.Context, actor authz.Actor, id string) (Application, string, error) {
	a, snap, err := s.load(ctx, id)
	if err != nil {
		return Application{}, "", err
	}
	if !authz.CanApplication(actor, authz.ActionStatus, snap) {
		return Application{}, "", apperr.Forbidden("only the posting owner can decide applications")
	}
	if a.Status != StatusPending {
		return Application{}, "", apperr.Conflict("application is already decided")
	}

	p, ok, err := s.postings.Get(ctx, a.PostingID)
	if err != nil {
		return Application{}, "", apperr.Dependency("load posting", err)
	}
	if !ok {
		return Application{}, "", apperr.NotFound("posting not found")
	}
	active, err := s.postings.CountActiveAssignments(ctx, a.PostingID)
	if err != nil {
		return Application{}, "", apperr.Dependency("count assignments", err)
	}
	if !posting.CanAssign(p, active) {
		return Application{}, "", apperr.Conflict("posting reached its assignee limit")
	}

	now := s.now()
	decided, err := s.store.Decide(ctx, id, StatusAccepted, now)
	if err != nil {
		return Application{}, "", apperr.Dependency("accept application", err)
	}
	if !decided {
		return Application{}, "", apperr.Conflict("application changed concurrently")
	}
	a.stamp(StatusAccepted, now)

	assignmentID, err := s.assignments.Open(ctx, a.PostingID, a.ID, p.OwnerID, a.ApplicantID, now)
	if err != nil {
		return Application{}, "", apperr.Dependency("open assignment", err)
	}
	// Chat is a convenience, not part of the contract; log and move on.
	if _, err := s.threads.OpenContext(ctx, "assignment", assignmentID, []string{p.OwnerID, a.ApplicantID}); err != nil {
		log.Printf("application: failed to open chat thread for assignment %s: %v", assignmentID, err)
	}
	return a, assignmentID, nil
}

// Reject declines a pending application.
func (s *Service) Reject(ctx context.Context, actor authz.Actor, id string) (Application, error) {
	a, snap, err := s.load(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if !authz.CanApplication(actor, authz.ActionStatus, snap) {
		return Application{}, apperr.Forbidden("only the posting owner can decide applications")
	}
	if a.Status != StatusPending {
		return Application{}, apperr.Conflict("application is already decided")
	}
	now := s.now()
	decided, err := s.store.Decide(ctx, id, StatusRejected, now)
	if err != nil {
		return Application{}, apperr.Dependency("reject application", err)
	}
	if !decided {
		return Application{}, apperr.Conflict("application changed concurrently")
	}
	a.stamp(StatusRejected, now)
	return a, nil
}

// ListByPosting returns a posting's applications to its owner or an admin.
func (s *Service) ListByPosting(ctx context.Context, actor authz.Actor, postingID string) ([]Application, error) {
	p, ok, err := s.postings.Get(ctx, postingID)
	if err != nil {
		return nil, apperr.Dependency("load posting", err)
	}
	if !ok {
		return nil, apperr.NotFound("posting not found")
	}
	if p.OwnerID != actor.UserID && !actor.IsAdmin {
		return nil, apperr.Forbidden("only the posting owner can list applications")
	}
	out, err := s.store.ListByPosting(ctx, postingID)
	if err != nil {
		return nil, apperr.Dependency("list applications", err)
	}
	return out, nil
}

// ListMine returns the actor's own applications.
func (s *Service) ListMine(ctx context.Context, actor authz.Actor) ([]Application, error) {
	if actor.UserID == "" {
		return nil, apperr.Forbidden("authentication required")
	}
	out, err := s.store.ListByApplicant(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.Dependency("list applications", err)
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, id string) (Application, authz.ApplicationSnapshot, error) {
	a, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Application{}, authz.ApplicationSnapshot{}, apperr.Dependency("load application", err)
	}
	if !ok {
		return Application{}, authz.ApplicationSnapshot{}, apperr.NotFound("application not found")
	}
	owner, _, err := s.ownerOf(ctx, a.PostingID)
	if err != nil {
		return Application{}, authz.ApplicationSnapshot{}, err
	}
	return a, authz.ApplicationSnapshot{ApplicantID: a.ApplicantID, PostingOwnerID: owner}, nil
}

func (s *Service) ownerOf(ctx context.Context, postingID string) (string, bool, error) {
	p, ok, err := s.postings.Get(ctx, postingID)
	if err != nil {
		return "", false, apperr.Dependency("load posting", err)
	}
	if !ok {
		// The posting vanished under the application; treat the owner as
		// unknown rather than failing the read.
		return "", false, nil
	}
	return p.OwnerID, true, nil
}
