// Package assignment tracks the work that follows an accepted application.
package assignment

import (
	"time"

	"github.com/worklink-dev/worklink/internal/authz"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusDisputed   Status = "disputed"
)

// ExpiryWindow is how long a completed assignment stays visible before it
// expires.
const ExpiryWindow = 30 * 24 * time.Hour

type Assignment struct {
	ID            string     `json:"id"`
	PostingID     string     `json:"posting_id"`
	ApplicationID string     `json:"application_id,omitempty"`
	OwnerID       string     `json:"owner_id"`
	WorkerID      string     `json:"accepted_user_id"`
	Status        Status     `json:"status"`
	Title         string     `json:"title,omitempty"`
	Subtitle      string     `json:"subtitle,omitempty"`
	Address       string     `json:"address,omitempty"`
	DueAt         *time.Time `json:"due_at,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Patch updates the override fields. Nil means leave unchanged.
type Patch struct {
	Title    *string    `json:"title,omitempty"`
	Subtitle *string    `json:"subtitle,omitempty"`
	Address  *string    `json:"address,omitempty"`
	DueAt    *time.Time `json:"due_at,omitempty"`
}

func (a *Assignment) apply(p Patch) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Subtitle != nil {
		a.Subtitle = *p.Subtitle
	}
	if p.Address != nil {
		a.Address = *p.Address
	}
	if p.DueAt != nil {
		a.DueAt = p.DueAt
	}
}

var transitions = map[Status][]Status{
	StatusActive:     {StatusInProgress, StatusCancelled, StatusDisputed},
	StatusInProgress: {StatusCompleted, StatusCancelled, StatusDisputed},
	StatusCompleted:  {StatusActive},
	StatusCancelled:  {StatusActive},
	StatusDisputed:   {StatusActive},
}

func canTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transitionActors maps each target status to who may drive it. Reverting
// to active (from completed, cancelled or disputed) is admin-only.
var transitionActors = map[Status]func(actor authz.Actor, a Assignment) bool{
	StatusInProgress: participant,
	StatusDisputed:   participant,
	StatusCompleted:  ownerOnly,
	StatusCancelled:  ownerOnly,
	StatusActive:     func(actor authz.Actor, _ Assignment) bool { return actor.IsAdmin },
}

func participant(actor authz.Actor, a Assignment) bool {
	return actor.IsAdmin || actor.UserID == a.OwnerID || actor.UserID == a.WorkerID
}

func ownerOnly(actor authz.Actor, a Assignment) bool {
	return actor.IsAdmin || actor.UserID == a.OwnerID
}

func canDrive(actor authz.Actor, a Assignment, to Status) bool {
	rule, ok := transitionActors[to]
	return ok && rule(actor, a)
}

func validStatus(s Status) bool {
	_, ok := transitionActors[s]
	return ok
}
