package match

import (
	"context"

	"github.com/worklink-dev/worklink/internal/apperr"
)

// InterestStore persists a user's declared interests.
type InterestStore interface {
	InterestsOf(ctx context.Context, userID string) ([]Interest, error)
	// SetInterests replaces the user's interest set wholesale.
	SetInterests(ctx context.Context, userID string, interests []Interest) error
}

// ValidateInterests checks proficiency bounds and duplicate categories.
func ValidateInterests(interests []Interest) error {
	seen := make(map[string]bool, len(interests))
	for _, in := range interests {
		if in.CategoryID == "" {
			return apperr.Invalid("interest category is required")
		}
		if in.Proficiency < 1 || in.Proficiency > 5 {
			return apperr.Invalidf("proficiency for %s must be between 1 and 5", in.CategoryID)
		}
		if seen[in.CategoryID] {
			return apperr.Invalidf("duplicate interest category %s", in.CategoryID)
		}
		seen[in.CategoryID] = true
	}
	return nil
}
