package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/teranga-stays/service-rental/internal/domain/booking"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingNumber    string     `gorm:"uniqueIndex;not null;size:20"`
	ListingID        uuid.UUID  `gorm:"type:uuid;index:idx_bookings_listing_dates;not null"`
	GuestID          uuid.UUID  `gorm:"type:uuid;index;not null"`
	CheckIn          time.Time  `gorm:"type:date;index:idx_bookings_listing_dates;not null"`
	CheckOut         time.Time  `gorm:"type:date;index:idx_bookings_listing_dates;not null"`
	GuestCount       int        `gorm:"not null"`
	Nights           int        `gorm:"not null"`
	PricePerNight    int64      `gorm:"not null"`
	Subtotal         int64      `gorm:"not null"`
	ServiceFee       int64      `gorm:"not null"`
	TotalPrice       int64      `gorm:"not null"`
	Currency         string     `gorm:"not null;size:3;default:'XOF'"`
	Status           string     `gorm:"not null;size:20;index"`
	PaymentStatus    string     `gorm:"not null;size:20;default:'unpaid'"`
	PaymentReference string     `gorm:"size:255"`
	ConfirmedAt      *time.Time `gorm:""`
	CancelledAt      *time.Time `gorm:""`
	CancelledBy      *uuid.UUID `gorm:"type:uuid"`
	Version          int64      `gorm:"not null;default:1"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByGuestID retrieves bookings made by a guest with pagination.
func (r *GormBookingRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, r.db.Where("guest_id = ?", guestID), page, limit)
}

// FindByHostID retrieves bookings on listings owned by hostID with pagination.
// Ownership is resolved against listings at query time.
func (r *GormBookingRepository) FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, r.db.Where("listing_id IN (?)", ownedListingIDs(r.db, hostID)), page, limit)
}

// FindConfirmedByHostID retrieves all confirmed bookings on the host's listings.
func (r *GormBookingRepository) FindConfirmedByHostID(ctx context.Context, hostID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("listing_id IN (?) AND status = ?", ownedListingIDs(r.db, hostID), string(bookingDomain.StatusConfirmed)).
		Order("check_in DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find confirmed host bookings: %w", err)
	}
	return toDomainBookings(models)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, r.db, page, limit)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// HasConflict reports whether a pending or confirmed booking touches stay.
// The comparison is inclusive on both ends.
func (r *GormBookingRepository) HasConflict(ctx context.Context, listingID uuid.UUID, stay bookingDomain.DateRange) (bool, error) {
	return hasConflict(r.db.WithContext(ctx), listingID, stay)
}

// SaveIfAvailable locks the listing row, re-runs the conflict query and
// inserts the booking in one transaction.
func (r *GormBookingRepository) SaveIfAvailable(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked ListingModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", bk.ListingID()).
			First(&locked).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bookingDomain.ErrListingUnavailable
			}
			return fmt.Errorf("failed to lock listing: %w", err)
		}

		conflict, err := hasConflict(tx, bk.ListingID(), bk.Stay())
		if err != nil {
			return err
		}
		if conflict {
			return bookingDomain.ErrDatesUnavailable
		}

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return nil
	})
}

// Update persists a status change with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion was called before Update, so match the previous version.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"payment_status":    model.PaymentStatus,
			"payment_reference": model.PaymentReference,
			"confirmed_at":      model.ConfirmedAt,
			"cancelled_at":      model.CancelledAt,
			"cancelled_by":      model.CancelledBy,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// MarkPaid confirms and marks a pending or confirmed booking paid. Re-applying
// it writes the same values. A cancelled booking keeps its status and only
// records the payment, so it can be refunded.
func (r *GormBookingRepository) MarkPaid(ctx context.Context, id uuid.UUID, paymentReference string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&BookingModel{}).
			Where("id = ? AND status IN ?", id, []string{
				string(bookingDomain.StatusPending),
				string(bookingDomain.StatusConfirmed),
			}).
			Updates(map[string]interface{}{
				"status":            string(bookingDomain.StatusConfirmed),
				"payment_status":    string(bookingDomain.PaymentPaid),
				"payment_reference": paymentReference,
				"confirmed_at":      gorm.Expr("COALESCE(confirmed_at, ?)", now),
				"version":           gorm.Expr("version + 1"),
				"updated_at":        now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to mark booking paid: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			return nil
		}

		result = tx.Model(&BookingModel{}).
			Where("id = ? AND status = ?", id, string(bookingDomain.StatusCancelled)).
			Updates(map[string]interface{}{
				"payment_status":    string(bookingDomain.PaymentPaid),
				"payment_reference": paymentReference,
				"version":           gorm.Expr("version + 1"),
				"updated_at":        now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to record payment on cancelled booking: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			return bookingDomain.ErrPaidAfterCancellation
		}
		return domain.NewNotFoundError("Booking", id.String())
	})
}

// MarkPaymentFailed records a failed payment without touching the booking status.
func (r *GormBookingRepository) MarkPaymentFailed(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_status": string(bookingDomain.PaymentFailed),
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark booking payment failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", id.String())
	}
	return nil
}

func (r *GormBookingRepository) paginate(ctx context.Context, scope *gorm.DB, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := scope.Session(&gorm.Session{}).WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := scope.Session(&gorm.Session{}).WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func hasConflict(db *gorm.DB, listingID uuid.UUID, stay bookingDomain.DateRange) (bool, error) {
	var count int64
	err := db.Model(&BookingModel{}).
		Where("listing_id = ?", listingID).
		Where("status IN ?", []string{string(bookingDomain.StatusPending), string(bookingDomain.StatusConfirmed)}).
		Where("check_out >= ? AND check_in <= ?", stay.CheckIn, stay.CheckOut).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query conflicting bookings: %w", err)
	}
	return count > 0, nil
}

func ownedListingIDs(db *gorm.DB, ownerID uuid.UUID) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).Model(&ListingModel{}).Select("id").Where("owner_id = ?", ownerID)
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	price := bk.Price()
	return &BookingModel{
		ID:               bk.ID(),
		BookingNumber:    bk.BookingNumber(),
		ListingID:        bk.ListingID(),
		GuestID:          bk.GuestID(),
		CheckIn:          bk.CheckIn(),
		CheckOut:         bk.CheckOut(),
		GuestCount:       bk.GuestCount(),
		Nights:           price.Nights,
		PricePerNight:    price.PricePerNight,
		Subtotal:         price.Subtotal,
		ServiceFee:       price.ServiceFee,
		TotalPrice:       price.Total,
		Currency:         bk.Currency(),
		Status:           string(bk.Status()),
		PaymentStatus:    string(bk.PaymentStatus()),
		PaymentReference: bk.PaymentReference(),
		ConfirmedAt:      bk.ConfirmedAt(),
		CancelledAt:      bk.CancelledAt(),
		CancelledBy:      bk.CancelledBy(),
		Version:          bk.Version(),
		CreatedAt:        bk.CreatedAt(),
		UpdatedAt:        bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	stay := bookingDomain.DateRange{CheckIn: m.CheckIn.UTC(), CheckOut: m.CheckOut.UTC()}
	price := bookingDomain.PriceQuote{
		Nights:         m.Nights,
		PricePerNight:  m.PricePerNight,
		Subtotal:       m.Subtotal,
		ServiceFeeRate: bookingDomain.ServiceFeeRate,
		ServiceFee:     m.ServiceFee,
		Total:          m.TotalPrice,
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.ListingID,
		m.GuestID,
		stay,
		m.GuestCount,
		price,
		m.Currency,
		status,
		bookingDomain.PaymentStatus(m.PaymentStatus),
		m.PaymentReference,
		m.ConfirmedAt,
		m.CancelledAt,
		m.CancelledBy,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
