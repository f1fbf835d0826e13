package review

import (
	"context"

	"github.com/google/uuid"
)

// Summary aggregates the ratings of one listing.
type Summary struct {
	Count         int64
	AverageRating float64
}

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error)

	// Save inserts a review, returning ErrAlreadyReviewed if one exists for the booking.
	Save(ctx context.Context, review *Review) error

	FindByListingID(ctx context.Context, listingID uuid.UUID, page, limit int) ([]*Review, int64, error)
	SummaryForListing(ctx context.Context, listingID uuid.UUID) (Summary, error)
}
