package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// ActiveStatuses are the statuses that hold a listing's dates.
var ActiveStatuses = []BookingStatus{StatusPending, StatusConfirmed}

// Actor is the role a caller plays relative to one specific booking.
type Actor string

const (
	ActorGuest            Actor = "guest"
	ActorHost             Actor = "host"
	ActorPaymentProcessor Actor = "payment_processor"
)

// validTransitions maps from -> to -> actors allowed to trigger it.
var validTransitions = map[BookingStatus]map[BookingStatus][]Actor{
	StatusPending: {
		StatusConfirmed: {ActorHost, ActorPaymentProcessor},
		StatusCancelled: {ActorGuest, ActorHost},
	},
	StatusConfirmed: {
		StatusCancelled: {ActorHost},
	},
	StatusCancelled: {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if some actor may move a booking from s to target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	_, ok := validTransitions[s][target]
	return ok
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// HoldsDates reports whether a booking in this status blocks its dates.
func (s BookingStatus) HoldsDates() bool {
	return s == StatusPending || s == StatusConfirmed
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// CheckTransition validates that actor may move a booking from one status to another.
func CheckTransition(from, to BookingStatus, actor Actor) error {
	if from == StatusConfirmed && to == StatusCancelled && actor == ActorGuest {
		return ErrContactSupport
	}
	allowed, ok := validTransitions[from][to]
	if !ok {
		return newInvalidTransition(from, to)
	}
	for _, a := range allowed {
		if a == actor {
			return nil
		}
	}
	return ErrTransitionActor
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// PaymentStatus tracks the external payment for a booking.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
	PaymentFailed PaymentStatus = "failed"
)

// IsValid returns true if the payment status is recognized.
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentUnpaid, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}
