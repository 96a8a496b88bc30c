// Package application covers applying to a posting and the owner's
// accept/reject decision.
package application

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Application is one user's bid on a posting. A user can hold at most one
// application per posting.
type Application struct {
	ID          string     `json:"id"`
	PostingID   string     `json:"posting_id"`
	ApplicantID string     `json:"applicant_id"`
	Message     string     `json:"message"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
}

// stamp records the owner's decision timestamps on the local copy.
func (a *Application) stamp(to Status, at time.Time) {
	a.Status = to
	a.UpdatedAt = at
	a.ReviewedAt = &at
	switch to {
	case StatusAccepted:
		a.AcceptedAt = &at
	case StatusRejected:
		a.RejectedAt = &at
	}
}

const maxMessageLen = 2000
