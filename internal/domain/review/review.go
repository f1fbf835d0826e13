package review

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 1000
)

var (
	ErrTooEarly        = domain.NewValidationError("reviews can only be left after check-out").WithCode("review_too_early")
	ErrAlreadyReviewed = domain.NewConflictError("this booking has already been reviewed").WithCode("already_reviewed")
	ErrNotReviewable   = domain.NewValidationError("only confirmed bookings can be reviewed").WithCode("booking_not_confirmed")
	ErrNotGuest        = domain.NewForbiddenError("only the guest of this booking can review it")
)

// Eligibility is the booking state a review depends on.
type Eligibility struct {
	BookingID uuid.UUID
	ListingID uuid.UUID
	GuestID   uuid.UUID
	Confirmed bool
	CheckOut  time.Time
}

// CheckEligibility applies the review rules for reviewerID at now.
func CheckEligibility(e Eligibility, reviewerID uuid.UUID, now time.Time) error {
	if e.GuestID != reviewerID {
		return ErrNotGuest
	}
	if !e.Confirmed {
		return ErrNotReviewable
	}
	if !now.After(e.CheckOut) {
		return ErrTooEarly
	}
	return nil
}

// Review is a guest's evaluation of one completed stay.
type Review struct {
	id        uuid.UUID
	bookingID uuid.UUID
	listingID uuid.UUID
	guestID   uuid.UUID
	rating    int
	comment   string
	createdAt time.Time
}

// NewReview validates eligibility and content and creates a review.
func NewReview(e Eligibility, reviewerID uuid.UUID, rating int, comment string, now time.Time) (*Review, error) {
	if err := CheckEligibility(e, reviewerID, now); err != nil {
		return nil, err
	}
	if rating < MinRating || rating > MaxRating {
		return nil, domain.NewValidationError(fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return nil, domain.NewValidationError(fmt.Sprintf("comment must be at most %d characters", MaxCommentLength))
	}
	return &Review{
		id:        uuid.New(),
		bookingID: e.BookingID,
		listingID: e.ListingID,
		guestID:   reviewerID,
		rating:    rating,
		comment:   comment,
		createdAt: now.UTC(),
	}, nil
}

// Reconstruct rebuilds a Review from persistence data.
func Reconstruct(id, bookingID, listingID, guestID uuid.UUID, rating int, comment string, createdAt time.Time) *Review {
	return &Review{
		id:        id,
		bookingID: bookingID,
		listingID: listingID,
		guestID:   guestID,
		rating:    rating,
		comment:   comment,
		createdAt: createdAt,
	}
}

func (r *Review) ID() uuid.UUID        { return r.id }
func (r *Review) BookingID() uuid.UUID { return r.bookingID }
func (r *Review) ListingID() uuid.UUID { return r.listingID }
func (r *Review) GuestID() uuid.UUID   { return r.guestID }
func (r *Review) Rating() int          { return r.rating }
func (r *Review) Comment() string      { return r.comment }
func (r *Review) CreatedAt() time.Time { return r.createdAt }
