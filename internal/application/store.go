package application

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate signals a second application by the same user on the same
// posting.
var ErrDuplicate = errors.New("application already exists for this posting")

type Store interface {
	// Create inserts the application. Returns ErrDuplicate when the
	// (posting, applicant) pair already exists.
	Create(ctx context.Context, a Application) error
	Get(ctx context.Context, id string) (Application, bool, error)

	// Decide flips a pending application to the given status and stamps
	// reviewed_at plus the matching accepted_at/rejected_at. Returns false
	// when the application was not pending.
	Decide(ctx context.Context, id string, to Status, at time.Time) (bool, error)

	// Delete removes the application row outright.
	Delete(ctx context.Context, id string) (bool, error)

	ListByPosting(ctx context.Context, postingID string) ([]Application, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]Application, error)

	// DeletePending and DeleteAll back the posting close/delete cascades.
	// Both return the ids of the removed rows.
	DeletePending(ctx context.Context, postingID string) ([]string, error)
	DeleteAll(ctx context.Context, postingID string) ([]string, error)
}
