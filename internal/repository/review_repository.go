package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	reviewDomain "github.com/teranga-stays/service-rental/internal/domain/review"
)

// ReviewModel is the GORM model for the reviews table.
type ReviewModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	ListingID uuid.UUID `gorm:"type:uuid;index;not null"`
	GuestID   uuid.UUID `gorm:"type:uuid;not null"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ReviewModel) TableName() string { return "reviews" }

// GormReviewRepository implements ReviewRepository using GORM.
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository.
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ReviewModel{}).Where("booking_id = ?", bookingID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check review: %w", err)
	}
	return count > 0, nil
}

// Save inserts the review. The unique index on booking_id backs the
// one-review-per-booking rule when two requests race.
func (r *GormReviewRepository) Save(ctx context.Context, rv *reviewDomain.Review) error {
	model := ReviewModel{
		ID:        rv.ID(),
		BookingID: rv.BookingID(),
		ListingID: rv.ListingID(),
		GuestID:   rv.GuestID(),
		Rating:    rv.Rating(),
		Comment:   rv.Comment(),
		CreatedAt: rv.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return reviewDomain.ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

func (r *GormReviewRepository) FindByListingID(ctx context.Context, listingID uuid.UUID, page, limit int) ([]*reviewDomain.Review, int64, error) {
	query := r.db.WithContext(ctx).Model(&ReviewModel{}).Where("listing_id = ?", listingID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var models []ReviewModel
	if err := query.Session(&gorm.Session{}).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	out := make([]*reviewDomain.Review, len(models))
	for i, m := range models {
		out[i] = reviewDomain.Reconstruct(m.ID, m.BookingID, m.ListingID, m.GuestID, m.Rating, m.Comment, m.CreatedAt)
	}
	return out, total, nil
}

func (r *GormReviewRepository) SummaryForListing(ctx context.Context, listingID uuid.UUID) (reviewDomain.Summary, error) {
	var row struct {
		Count   int64
		Average float64
	}
	if err := r.db.WithContext(ctx).Model(&ReviewModel{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("listing_id = ?", listingID).
		Scan(&row).Error; err != nil {
		return reviewDomain.Summary{}, fmt.Errorf("failed to summarize reviews: %w", err)
	}
	return reviewDomain.Summary{Count: row.Count, AverageRating: row.Average}, nil
}
