package posting

import (
	"context"
	"time"
)

// Filter narrows List results.
type Filter struct {
	// OwnerID restricts to one owner's postings (any status).
	OwnerID string
	// PublicOnly restricts to published, public, non-deleted postings.
	PublicOnly bool
	// IncludeDeleted is honored for admin listings only.
	IncludeDeleted bool
}

// Store persists postings. Soft-deleted rows are invisible to every method
// except List with IncludeDeleted.
type Store interface {
	Create(ctx context.Context, p Posting) (Posting, error)
	Get(ctx context.Context, id string) (Posting, bool, error)
	Update(ctx context.Context, p Posting) error
	// UpdateStatus flips status only when the row still holds from; the
	// boolean reports whether the row was updated. publishAt is stamped when
	// non-nil.
	UpdateStatus(ctx context.Context, id string, from, to Status, publishAt *time.Time, at time.Time) (bool, error)
	SoftDelete(ctx context.Context, id string, at time.Time) (bool, error)
	List(ctx context.Context, f Filter) ([]Posting, error)
	OwnerOf(ctx context.Context, id string) (string, bool, error)

	// CountApplications counts non-rejected applications for capacity checks
	// (withdrawn applications are hard-deleted and never counted).
	CountApplications(ctx context.Context, postingID string) (int, error)
	// CountActiveAssignments counts assignments in a non-terminal status
	// (active, in_progress, disputed).
	CountActiveAssignments(ctx context.Context, postingID string) (int, error)
}
