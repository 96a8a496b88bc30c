package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/authz"
)

// Store persists schedules. One schedule per posting.
type Store interface {
	Upsert(ctx context.Context, s Schedule) (Schedule, error)
	GetByPosting(ctx context.Context, postingID string) (Schedule, bool, error)
	DeleteByPosting(ctx context.Context, postingID string) error
}

// Postings is the slice of the posting store this service needs.
type Postings interface {
	OwnerOf(ctx context.Context, postingID string) (ownerID string, found bool, err error)
}

// Input is the caller-supplied schedule definition.
type Input struct {
	Rule           Rule
	CronExpression string
	StartDate      *time.Time // defaults to today
	EndDate        *time.Time
	IsActive       *bool // defaults to true
}

type Service struct {
	store    Store
	postings Postings
	now      func() time.Time
}

func NewService(store Store, postings Postings) *Service {
	return &Service{store: store, postings: postings, now: func() time.Time { return time.Now().UTC() }}
}

// Upsert creates or replaces the schedule of a posting. Owner or admin only.
func (s *Service) Upsert(ctx context.Context, actor authz.Actor, postingID string, in Input) (Schedule, error) {
	ownerID, found, err := s.postings.OwnerOf(ctx, postingID)
	if err != nil {
		return Schedule{}, apperr.Dependency("load posting", err)
	}
	if !found {
		return Schedule{}, apperr.NotFound("posting not found")
	}
	if !authz.CanPosting(actor, authz.ActionWrite, authz.PostingSnapshot{OwnerID: ownerID}) {
		return Schedule{}, apperr.Forbidden("only the posting owner can manage its schedule")
	}

	now := s.now()
	start := now.Truncate(24 * time.Hour)
	if in.StartDate != nil {
		start = *in.StartDate
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	sched := Schedule{
		ID:             uuid.NewString(),
		PostingID:      postingID,
		Rule:           in.Rule,
		CronExpression: in.CronExpression,
		StartDate:      start,
		EndDate:        in.EndDate,
		IsActive:       active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := Validate(sched); err != nil {
		return Schedule{}, err
	}

	if next, ok, err := NextRun(sched, now); err != nil {
		return Schedule{}, err
	} else if ok {
		sched.NextRunAt = &next
	}

	saved, err := s.store.Upsert(ctx, sched)
	if err != nil {
		return Schedule{}, apperr.Dependency("save schedule", err)
	}
	return saved, nil
}

// Get returns the schedule of a posting.
func (s *Service) Get(ctx context.Context, actor authz.Actor, postingID string) (Schedule, error) {
	ownerID, found, err := s.postings.OwnerOf(ctx, postingID)
	if err != nil {
		return Schedule{}, apperr.Dependency("load posting", err)
	}
	if !found {
		return Schedule{}, apperr.NotFound("posting not found")
	}
	if !authz.CanPosting(actor, authz.ActionWrite, authz.PostingSnapshot{OwnerID: ownerID}) {
		return Schedule{}, apperr.Forbidden("only the posting owner can view its schedule")
	}
	sched, ok, err := s.store.GetByPosting(ctx, postingID)
	if err != nil {
		return Schedule{}, apperr.Dependency("load schedule", err)
	}
	if !ok {
		return Schedule{}, apperr.NotFound("posting has no schedule")
	}
	return sched, nil
}

// DeleteByPosting is the cascade hook used when a posting goes away.
func (s *Service) DeleteByPosting(ctx context.Context, postingID string) error {
	return s.store.DeleteByPosting(ctx, postingID)
}
