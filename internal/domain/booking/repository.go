package booking

import (
	"context"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	ConflictFinder

	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByGuestID retrieves a guest's bookings with pagination.
	FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByHostID retrieves bookings on listings owned by hostID with pagination.
	FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindConfirmedByHostID retrieves every confirmed booking on the host's listings.
	FindConfirmedByHostID(ctx context.Context, hostID uuid.UUID) ([]*Booking, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// SaveIfAvailable re-checks availability and inserts the booking atomically,
	// returning ErrDatesUnavailable on conflict.
	SaveIfAvailable(ctx context.Context, booking *Booking) error

	// Update persists a status change with optimistic locking.
	Update(ctx context.Context, booking *Booking) error

	// MarkPaid sets status=confirmed, payment_status=paid and the payment
	// reference on a pending or confirmed booking. Applying it twice is harmless.
	// A cancelled booking only records the payment and ErrPaidAfterCancellation
	// is returned.
	MarkPaid(ctx context.Context, id uuid.UUID, paymentReference string) error

	// MarkPaymentFailed sets payment_status=failed without touching status.
	MarkPaymentFailed(ctx context.Context, id uuid.UUID) error
}
