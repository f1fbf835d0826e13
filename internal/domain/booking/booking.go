package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for a guest's reservation of one listing.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	listingID     uuid.UUID
	guestID       uuid.UUID
	stay          DateRange
	guestCount    int
	price         PriceQuote
	currency      string

	status           BookingStatus
	paymentStatus    PaymentStatus
	paymentReference string

	confirmedAt *time.Time
	cancelledAt *time.Time
	cancelledBy *uuid.UUID

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "BK-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking creates a pending, unpaid booking.
func NewBooking(
	listingID uuid.UUID,
	guestID uuid.UUID,
	stay DateRange,
	guestCount int,
	price PriceQuote,
	currency string,
) (*Booking, error) {
	if listingID == uuid.Nil {
		return nil, domain.NewValidationError("listing ID is required")
	}
	if guestID == uuid.Nil {
		return nil, domain.NewValidationError("guest ID is required")
	}
	if !stay.CheckOut.After(stay.CheckIn) {
		return nil, ErrInvalidDates
	}
	if guestCount < 1 {
		return nil, ErrInvalidGuestCount
	}
	if price.Nights <= 0 || price.Total <= 0 {
		return nil, domain.NewValidationError("booking total must be positive")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		bookingNumber: bookingNumber,
		listingID:     listingID,
		guestID:       guestID,
		stay:          stay,
		guestCount:    guestCount,
		price:         price,
		currency:      currency,
		status:        StatusPending,
		paymentStatus: PaymentUnpaid,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	listingID uuid.UUID,
	guestID uuid.UUID,
	stay DateRange,
	guestCount int,
	price PriceQuote,
	currency string,
	status BookingStatus,
	paymentStatus PaymentStatus,
	paymentReference string,
	confirmedAt *time.Time,
	cancelledAt *time.Time,
	cancelledBy *uuid.UUID,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:               id,
		bookingNumber:    bookingNumber,
		listingID:        listingID,
		guestID:          guestID,
		stay:             stay,
		guestCount:       guestCount,
		price:            price,
		currency:         currency,
		status:           status,
		paymentStatus:    paymentStatus,
		paymentReference: paymentReference,
		confirmedAt:      confirmedAt,
		cancelledAt:      cancelledAt,
		cancelledBy:      cancelledBy,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// ListingID returns the booked listing.
func (b *Booking) ListingID() uuid.UUID { return b.listingID }

// GuestID returns the guest who made the booking.
func (b *Booking) GuestID() uuid.UUID { return b.guestID }

// Stay returns the booked date range.
func (b *Booking) Stay() DateRange { return b.stay }

// CheckIn returns the check-in date.
func (b *Booking) CheckIn() time.Time { return b.stay.CheckIn }

// CheckOut returns the check-out date.
func (b *Booking) CheckOut() time.Time { return b.stay.CheckOut }

// GuestCount returns the number of guests.
func (b *Booking) GuestCount() int { return b.guestCount }

// Price returns the price breakdown captured at booking time.
func (b *Booking) Price() PriceQuote { return b.price }

// Nights returns the number of nights booked.
func (b *Booking) Nights() int { return b.price.Nights }

// TotalPrice returns the amount charged to the guest.
func (b *Booking) TotalPrice() int64 { return b.price.Total }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PaymentStatus returns the payment status.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// PaymentReference returns the processor's payment reference, if paid.
func (b *Booking) PaymentReference() string { return b.paymentReference }

// ConfirmedAt returns when the booking was confirmed.
func (b *Booking) ConfirmedAt() *time.Time { return b.confirmedAt }

// CancelledAt returns when the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// CancelledBy returns who cancelled the booking.
func (b *Booking) CancelledBy() *uuid.UUID { return b.cancelledBy }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsGuest reports whether userID made this booking.
func (b *Booking) IsGuest(userID uuid.UUID) bool { return b.guestID == userID }

// HasEnded reports whether the check-out date is in the past relative to now.
func (b *Booking) HasEnded(now time.Time) bool { return now.After(b.stay.CheckOut) }

// TransitionTo moves the booking to target on behalf of actor.
func (b *Booking) TransitionTo(target BookingStatus, actor Actor, actorID uuid.UUID) error {
	if err := CheckTransition(b.status, target, actor); err != nil {
		return err
	}
	now := time.Now().UTC()
	switch target {
	case StatusConfirmed:
		b.confirmedAt = &now
	case StatusCancelled:
		b.cancelledAt = &now
		if actorID != uuid.Nil {
			id := actorID
			b.cancelledBy = &id
		}
	}
	b.status = target
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

func newInvalidTransition(from, to BookingStatus) error {
	return domain.NewInvalidStateError(string(from), string(to))
}
