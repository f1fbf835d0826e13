package listing

// ListingStatus is the moderation state controlling a listing's visibility.
type ListingStatus string

const (
	StatusPendingReview ListingStatus = "pending_review"
	StatusApproved      ListingStatus = "approved"
	StatusRejected      ListingStatus = "rejected"
	StatusSnoozed       ListingStatus = "snoozed"
)

// Actor distinguishes moderator actions from owner actions.
type Actor string

const (
	ActorModerator Actor = "moderator"
	ActorOwner     Actor = "owner"
)

var validTransitions = map[ListingStatus]map[ListingStatus]Actor{
	StatusPendingReview: {
		StatusApproved: ActorModerator,
		StatusRejected: ActorModerator,
	},
	StatusApproved: {
		StatusRejected: ActorModerator,
		StatusSnoozed:  ActorOwner,
	},
	StatusRejected: {
		StatusApproved: ActorModerator,
	},
	StatusSnoozed: {
		StatusApproved: ActorOwner,
	},
}

// IsValid returns true if the status is a recognized listing status.
func (s ListingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether actor may move a listing from s to target.
func (s ListingStatus) CanTransitionTo(target ListingStatus, actor Actor) bool {
	allowed, ok := validTransitions[s][target]
	return ok && allowed == actor
}

func (s ListingStatus) String() string { return string(s) }

// ParseListingStatus converts a string to a ListingStatus.
func ParseListingStatus(s string) (ListingStatus, error) {
	status := ListingStatus(s)
	if !status.IsValid() {
		return "", ErrUnknownStatus(s)
	}
	return status, nil
}
