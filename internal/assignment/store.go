package assignment

import (
	"context"
	"time"

	"github.com/worklink-dev/worklink/internal/payment"
)

type Store interface {
	Create(ctx context.Context, a Assignment) error
	Get(ctx context.Context, id string) (Assignment, bool, error)

	// UpdateStatus flips status conditionally on the current one. started_at
	// is stamped only when startedAt is non-nil. Returns false on a
	// concurrent change.
	UpdateStatus(ctx context.Context, id string, from, to Status, startedAt *time.Time, at time.Time) (bool, error)

	// Complete flips to completed, stamps completed_at and expires_at, and
	// inserts the completion payment when pay is non-nil. All in one
	// transaction: the flip never commits without its payment.
	Complete(ctx context.Context, id string, from Status, completedAt, expiresAt time.Time, pay *payment.Payment) (bool, error)

	Update(ctx context.Context, a Assignment) error
	Delete(ctx context.Context, id string) (bool, error)

	ListByPosting(ctx context.Context, postingID string) ([]Assignment, error)
	ListByWorker(ctx context.Context, workerID string) ([]Assignment, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Assignment, error)

	// DeleteByPosting backs the posting deletion cascade and returns the
	// removed ids.
	DeleteByPosting(ctx context.Context, postingID string) ([]string, error)
}
