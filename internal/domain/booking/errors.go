package booking

import (
	"fmt"

	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

var (
	ErrListingUnavailable = &domain.DomainError{Kind: domain.KindNotFound, Code: "listing_unavailable", Message: "listing not found or not open for booking"}
	ErrSelfBooking        = domain.NewForbiddenError("hosts cannot book their own listing").WithCode("self_booking")
	ErrTooManyGuests      = domain.NewValidationError("guest count exceeds the listing's maximum").WithCode("too_many_guests")
	ErrInvalidGuestCount  = domain.NewValidationError("guest count must be at least 1").WithCode("invalid_guest_count")
	ErrInvalidDates       = domain.NewValidationError("check-out must be after check-in").WithCode("invalid_dates")
	ErrStayTooLong        = domain.NewValidationError(fmt.Sprintf("a stay can last at most %d nights", MaxStayNights)).WithCode("stay_too_long")
	ErrPriceOutOfRange    = domain.NewValidationError("the stay price is out of range").WithCode("price_out_of_range")
	ErrDatesUnavailable   = domain.NewConflictError("the selected dates are not available").WithCode("dates_unavailable")
	ErrContactSupport     = domain.NewForbiddenError("confirmed bookings cannot be cancelled by the guest, please contact support").WithCode("contact_support")
	ErrTransitionActor    = domain.NewForbiddenError("you are not allowed to make this status change").WithCode("transition_forbidden")
	ErrNotParticipant     = domain.NewForbiddenError("you are not a participant of this booking")

	// ErrPaidAfterCancellation is returned by MarkPaid when the payment landed on
	// a cancelled booking. The payment is recorded; the status stays cancelled.
	ErrPaidAfterCancellation = domain.NewConflictError("payment received for a cancelled booking").WithCode("paid_after_cancellation")
)
