package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ConflictFinder answers whether a listing has an active booking touching a range.
type ConflictFinder interface {
	HasConflict(ctx context.Context, listingID uuid.UUID, stay DateRange) (bool, error)
}

// AvailabilityChecker decides whether a listing can take a new booking. It
// always reads fresh from the store.
type AvailabilityChecker struct {
	finder ConflictFinder
}

// NewAvailabilityChecker creates a new AvailabilityChecker.
func NewAvailabilityChecker(finder ConflictFinder) *AvailabilityChecker {
	return &AvailabilityChecker{finder: finder}
}

// HasConflict reports whether any pending or confirmed booking touches stay.
func (c *AvailabilityChecker) HasConflict(ctx context.Context, listingID uuid.UUID, stay DateRange) (bool, error) {
	conflict, err := c.finder.HasConflict(ctx, listingID, stay)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return conflict, nil
}

// EnsureAvailable returns ErrDatesUnavailable when stay conflicts.
func (c *AvailabilityChecker) EnsureAvailable(ctx context.Context, listingID uuid.UUID, stay DateRange) error {
	conflict, err := c.HasConflict(ctx, listingID, stay)
	if err != nil {
		return err
	}
	if conflict {
		return ErrDatesUnavailable
	}
	return nil
}
