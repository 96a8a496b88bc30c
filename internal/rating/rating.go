// Package rating maintains per-user moving-average ratings. Individual
// scores are not retained; a marks table only enforces that each side of a
// completed assignment rates the other at most once.
package rating

import (
	"context"
	"errors"
	"time"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/assignment"
	"github.com/worklink-dev/worklink/internal/authz"
)

const (
	MinScore = 1
	MaxScore = 5
)

// Aggregate is a user's running rating.
type Aggregate struct {
	UserID  string  `json:"user_id"`
	Average float64 `json:"rating_average"`
	Count   int     `json:"rating_count"`
}

// ErrAlreadyRated signals a second rating by the same rater on the same
// assignment.
var ErrAlreadyRated = errors.New("assignment already rated by this user")

type Store interface {
	// ApplyRating records the mark and folds score into the ratee's moving
	// average in one atomic step. Returns ErrAlreadyRated on a duplicate
	// (assignment, rater) pair.
	ApplyRating(ctx context.Context, assignmentID, raterID, rateeID string, score int, at time.Time) (Aggregate, error)

	AggregateOf(ctx context.Context, userID string) (Aggregate, bool, error)
}

// Assignments is the slice of the assignment store the service needs.
type Assignments interface {
	Get(ctx context.Context, id string) (assignment.Assignment, bool, error)
}

type Service struct {
	store       Store
	assignments Assignments
	now         func() time.Time
}

func NewService(store Store, assignments Assignments) *Service {
	return &Service{
		store:       store,
		assignments: assignments,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CanRate returns the counterpart the actor would be rating. The failure
// reasons are distinguishable: missing assignment, not yet completed, and
// not a participant.
func (s *Service) CanRate(ctx context.Context, actor authz.Actor, assignmentID string) (string, error) {
	a, ok, err := s.assignments.Get(ctx, assignmentID)
	if err != nil {
		return "", apperr.Dependency("load assignment", err)
	}
	if !ok {
		return "", apperr.NotFound("assignment not found")
	}
	if a.Status != assignment.StatusCompleted {
		return "", apperr.Conflict("assignment is not completed")
	}
	switch actor.UserID {
	case a.OwnerID:
		return a.WorkerID, nil
	case a.WorkerID:
		return a.OwnerID, nil
	}
	return "", apperr.Forbidden("only assignment participants can rate")
}

// Submit rates the counterpart of a completed assignment.
func (s *Service) Submit(ctx context.Context, actor authz.Actor, assignmentID string, score int) (Aggregate, error) {
	if score < MinScore || score > MaxScore {
		return Aggregate{}, apperr.Invalidf("score must be between %d and %d", MinScore, MaxScore)
	}
	ratee, err := s.CanRate(ctx, actor, assignmentID)
	if err != nil {
		return Aggregate{}, err
	}
	agg, err := s.store.ApplyRating(ctx, assignmentID, actor.UserID, ratee, score, s.now())
	if err != nil {
		if err == ErrAlreadyRated {
			return Aggregate{}, apperr.Conflict("you already rated this assignment")
		}
		return Aggregate{}, apperr.Dependency("apply rating", err)
	}
	return agg, nil
}

// AggregateOf returns a user's running rating. Unrated users read as an
// empty aggregate rather than an error.
func (s *Service) AggregateOf(ctx context.Context, userID string) (Aggregate, error) {
	agg, ok, err := s.store.AggregateOf(ctx, userID)
	if err != nil {
		return Aggregate{}, apperr.Dependency("load rating", err)
	}
	if !ok {
		return Aggregate{}, apperr.NotFound("user not found")
	}
	return agg, nil
}

// fold is the moving-average update both stores share.
func fold(avg float64, count, score int) (float64, int) {
	return (avg*float64(count) + float64(score)) / float64(count+1), count + 1
}
