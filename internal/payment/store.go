package payment

import (
	"context"
	"time"
)

type Store interface {
	Create(ctx context.Context, p Payment) error
	Get(ctx context.Context, id string) (Payment, bool, error)

	// UpdateStatus flips status conditionally on the current one and stamps
	// paid_at when given. Returns false on a concurrent change.
	UpdateStatus(ctx context.Context, id string, from, to Status, paidAt *time.Time, at time.Time) (bool, error)

	Delete(ctx context.Context, id string) (bool, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]Payment, error)
	ListByPayer(ctx context.Context, payerID string) ([]Payment, error)

	// DeleteByAssignment backs the assignment deletion cascade.
	DeleteByAssignment(ctx context.Context, assignmentID string) error
}
