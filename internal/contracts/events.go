// Package contracts holds the event types exchanged over Kafka.
package contracts

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicListingEvents = "listing.events"
	TopicPaymentEvents = "payment.events"
)

// Event types.
const (
	BookingRequested     = "booking.requested"
	BookingConfirmed     = "booking.confirmed"
	BookingCancelled     = "booking.cancelled"
	BookingPaymentFailed = "booking.payment_failed"
	ListingModerated     = "listing.moderated"
	PaymentCompleted     = "payment.completed"
	PaymentFailed        = "payment.failed"
)

// BookingRequestedEvent is published when a booking is persisted as pending.
type BookingRequestedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	ListingID     uuid.UUID `json:"listing_id"`
	GuestID       uuid.UUID `json:"guest_id"`
	HostID        uuid.UUID `json:"host_id"`
	CheckIn       string    `json:"check_in"`
	CheckOut      string    `json:"check_out"`
	Nights        int       `json:"nights"`
	TotalPrice    int64     `json:"total_price"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingConfirmedEvent is published when a booking becomes confirmed.
type BookingConfirmedEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	BookingNumber    string    `json:"booking_number"`
	ListingID        uuid.UUID `json:"listing_id"`
	GuestID          uuid.UUID `json:"guest_id"`
	ConfirmedBy      string    `json:"confirmed_by"`
	PaymentReference string    `json:"payment_reference,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	ListingID     uuid.UUID `json:"listing_id"`
	CancelledBy   uuid.UUID `json:"cancelled_by"`
	ActorRole     string    `json:"actor_role"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingPaymentFailedEvent is published when the processor reports a failed payment.
type BookingPaymentFailedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ListingModeratedEvent is published when a moderator approves or rejects a listing.
type ListingModeratedEvent struct {
	ListingID  uuid.UUID `json:"listing_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentCompletedEvent is relayed from the payment processor over payment.events.
type PaymentCompletedEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	PaymentReference string    `json:"payment_reference"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// PaymentFailedEvent is relayed from the payment processor over payment.events.
// BookingID is nil when the processor event carried no booking linkage.
type PaymentFailedEvent struct {
	BookingID        *uuid.UUID `json:"booking_id,omitempty"`
	PaymentReference string     `json:"payment_reference"`
	Reason           string     `json:"reason,omitempty"`
	OccurredAt       time.Time  `json:"occurred_at"`
}
