package listing

import (
	"fmt"

	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

var (
	ErrNotOwner        = domain.NewForbiddenError("only the listing owner can do this")
	ErrNotApproved     = domain.NewValidationError("only approved listings can be snoozed").WithCode("listing_not_approved")
	ErrNotSnoozed      = domain.NewValidationError("listing is not snoozed").WithCode("listing_not_snoozed")
	ErrUnknownDecision = domain.NewValidationError("decision must be approve or reject")
)

// ErrUnknownStatus reports an unrecognized listing status string.
func ErrUnknownStatus(s string) error {
	return domain.NewValidationError(fmt.Sprintf("invalid listing status: %s", s))
}
