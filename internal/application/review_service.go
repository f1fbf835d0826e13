package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/teranga-stays/service-rental/internal/domain/booking"
	reviewDomain "github.com/teranga-stays/service-rental/internal/domain/review"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

// CreateReviewRequest is the request DTO for reviewing a stay.
type CreateReviewRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required"`
	Comment   string    `json:"comment"`
}

// ReviewDTO is the API response representation of a review.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	ListingID uuid.UUID `json:"listing_id"`
	GuestID   uuid.UUID `json:"guest_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListingReviewsDTO is a page of reviews with the listing's rating summary.
type ListingReviewsDTO struct {
	ListingID     uuid.UUID                         `json:"listing_id"`
	Count         int64                             `json:"count"`
	AverageRating float64                           `json:"average_rating"`
	Reviews       domain.PaginatedResult[ReviewDTO] `json:"reviews"`
}

// ReviewService implements review use cases.
type ReviewService struct {
	reviews  reviewDomain.ReviewRepository
	bookings bookingDomain.BookingRepository
	now      func() time.Time
	logger   *zap.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews reviewDomain.ReviewRepository, bookings bookingDomain.BookingRepository, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		bookings: bookings,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

// CreateReview records the guest's review of a finished, confirmed stay.
func (s *ReviewService) CreateReview(ctx context.Context, guestID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error) {
	bk, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	eligibility := reviewDomain.Eligibility{
		BookingID: bk.ID(),
		ListingID: bk.ListingID(),
		GuestID:   bk.GuestID(),
		Confirmed: bk.Status() == bookingDomain.StatusConfirmed,
		CheckOut:  bk.CheckOut(),
	}
	if err := reviewDomain.CheckEligibility(eligibility, guestID, s.now()); err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsForBooking(ctx, bk.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists {
		return nil, reviewDomain.ErrAlreadyReviewed
	}

	r, err := reviewDomain.NewReview(eligibility, guestID, req.Rating, req.Comment, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.reviews.Save(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("review created",
		zap.String("review_id", r.ID().String()),
		zap.String("booking_id", bk.ID().String()),
		zap.Int("rating", r.Rating()),
	)
	dto := toReviewDTO(r)
	return &dto, nil
}

// ListListingReviews returns a page of reviews and the rating summary.
func (s *ReviewService) ListListingReviews(ctx context.Context, listingID uuid.UUID, page, limit int) (*ListingReviewsDTO, error) {
	reviews, total, err := s.reviews.FindByListingID(ctx, listingID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	summary, err := s.reviews.SummaryForListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize reviews: %w", err)
	}

	dtos := make([]ReviewDTO, len(reviews))
	for i, r := range reviews {
		dtos[i] = toReviewDTO(r)
	}
	return &ListingReviewsDTO{
		ListingID:     listingID,
		Count:         summary.Count,
		AverageRating: summary.AverageRating,
		Reviews:       domain.NewPaginatedResult(dtos, total, page, limit),
	}, nil
}

func toReviewDTO(r *reviewDomain.Review) ReviewDTO {
	return ReviewDTO{
		ID:        r.ID(),
		BookingID: r.BookingID(),
		ListingID: r.ListingID(),
		GuestID:   r.GuestID(),
		Rating:    r.Rating(),
		Comment:   r.Comment(),
		CreatedAt: r.CreatedAt(),
	}
}
