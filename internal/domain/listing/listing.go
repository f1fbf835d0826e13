package listing

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

const (
	MinTitleLength       = 5
	MaxTitleLength       = 100
	MaxDescriptionLength = 5000
	MinPricePerNight     = 1000
	MaxPricePerNight     = 100_000_000
	MaxGuestsLimit       = 50
	MaxImages            = 20
)

// Details holds the host-editable fields of a listing.
type Details struct {
	Title         string
	Description   string
	City          string
	Address       string
	PricePerNight int64
	MaxGuests     int
	Amenities     []string
}

// Validate checks the details and normalizes amenities in place.
func (d *Details) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	d.City = strings.TrimSpace(d.City)

	titleLen := utf8.RuneCountInString(d.Title)
	if titleLen < MinTitleLength || titleLen > MaxTitleLength {
		return domain.NewValidationError(fmt.Sprintf("title must be between %d and %d characters", MinTitleLength, MaxTitleLength))
	}
	if utf8.RuneCountInString(d.Description) > MaxDescriptionLength {
		return domain.NewValidationError(fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength))
	}
	if d.City == "" {
		return domain.NewValidationError("city is required")
	}
	if d.PricePerNight < MinPricePerNight || d.PricePerNight > MaxPricePerNight {
		return domain.NewValidationError(fmt.Sprintf("price per night must be between %d and %d", MinPricePerNight, MaxPricePerNight))
	}
	if d.MaxGuests < 1 || d.MaxGuests > MaxGuestsLimit {
		return domain.NewValidationError(fmt.Sprintf("max guests must be between 1 and %d", MaxGuestsLimit))
	}
	d.Amenities = NormalizeAmenities(d.Amenities)
	return nil
}

// NormalizeAmenities lowercases, trims, deduplicates and sorts amenity keys.
func NormalizeAmenities(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, a := range in {
		key := strings.ToLower(strings.TrimSpace(a))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Listing is the aggregate root for a rentable unit.
type Listing struct {
	id              uuid.UUID
	ownerID         uuid.UUID
	details         Details
	images          []string
	status          ListingStatus
	rejectionReason string
	version         int64
	createdAt       time.Time
	updatedAt       time.Time
}

// NewListing creates a listing awaiting moderation.
func NewListing(ownerID uuid.UUID, details Details) (*Listing, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Listing{
		id:        uuid.New(),
		ownerID:   ownerID,
		details:   details,
		images:    []string{},
		status:    StatusPendingReview,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Listing from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	details Details,
	images []string,
	status ListingStatus,
	rejectionReason string,
	version int64,
	createdAt, updatedAt time.Time,
) *Listing {
	if images == nil {
		images = []string{}
	}
	if details.Amenities == nil {
		details.Amenities = []string{}
	}
	return &Listing{
		id:              id,
		ownerID:         ownerID,
		details:         details,
		images:          images,
		status:          status,
		rejectionReason: rejectionReason,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

func (l *Listing) ID() uuid.UUID           { return l.id }
func (l *Listing) OwnerID() uuid.UUID      { return l.ownerID }
func (l *Listing) Title() string           { return l.details.Title }
func (l *Listing) Description() string     { return l.details.Description }
func (l *Listing) City() string            { return l.details.City }
func (l *Listing) Address() string         { return l.details.Address }
func (l *Listing) PricePerNight() int64    { return l.details.PricePerNight }
func (l *Listing) MaxGuests() int          { return l.details.MaxGuests }
func (l *Listing) Amenities() []string     { return l.details.Amenities }
func (l *Listing) Images() []string        { return l.images }
func (l *Listing) Status() ListingStatus   { return l.status }
func (l *Listing) RejectionReason() string { return l.rejectionReason }
func (l *Listing) Version() int64          { return l.version }
func (l *Listing) CreatedAt() time.Time    { return l.createdAt }
func (l *Listing) UpdatedAt() time.Time    { return l.updatedAt }

// Details returns a copy of the editable fields.
func (l *Listing) Details() Details {
	d := l.details
	d.Amenities = append([]string(nil), l.details.Amenities...)
	return d
}

// --- Behavior ---

// IsOwnedBy reports whether userID owns the listing.
func (l *Listing) IsOwnedBy(userID uuid.UUID) bool { return l.ownerID == userID }

// IsBookable reports whether guests may book the listing.
func (l *Listing) IsBookable() bool { return l.status == StatusApproved }

// IsVisibleTo reports whether viewerID may see the listing. Approved listings
// are public; anything else is visible to its owner only.
func (l *Listing) IsVisibleTo(viewerID uuid.UUID) bool {
	return l.status == StatusApproved || (viewerID != uuid.Nil && l.ownerID == viewerID)
}

// Update replaces the editable fields. The moderation status is unchanged.
func (l *Listing) Update(ownerID uuid.UUID, details Details) error {
	if !l.IsOwnedBy(ownerID) {
		return ErrNotOwner
	}
	if err := details.Validate(); err != nil {
		return err
	}
	l.details = details
	l.touch()
	return nil
}

// Approve publishes the listing.
func (l *Listing) Approve() error {
	if err := l.transition(StatusApproved, ActorModerator); err != nil {
		return err
	}
	l.rejectionReason = ""
	return nil
}

// Reject hides the listing and records why.
func (l *Listing) Reject(reason string) error {
	if err := l.transition(StatusRejected, ActorModerator); err != nil {
		return err
	}
	l.rejectionReason = strings.TrimSpace(reason)
	return nil
}

// Snooze temporarily hides an approved listing.
func (l *Listing) Snooze(ownerID uuid.UUID) error {
	if !l.IsOwnedBy(ownerID) {
		return ErrNotOwner
	}
	if l.status != StatusApproved {
		return ErrNotApproved
	}
	return l.transition(StatusSnoozed, ActorOwner)
}

// Unsnooze puts a snoozed listing back on the market.
func (l *Listing) Unsnooze(ownerID uuid.UUID) error {
	if !l.IsOwnedBy(ownerID) {
		return ErrNotOwner
	}
	if l.status != StatusSnoozed {
		return ErrNotSnoozed
	}
	return l.transition(StatusApproved, ActorOwner)
}

// AddImage appends an image URL.
func (l *Listing) AddImage(ownerID uuid.UUID, url string) error {
	if !l.IsOwnedBy(ownerID) {
		return ErrNotOwner
	}
	if len(l.images) >= MaxImages {
		return domain.NewValidationError(fmt.Sprintf("a listing can have at most %d images", MaxImages))
	}
	l.images = append(l.images, url)
	l.touch()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (l *Listing) IncrementVersion() {
	l.version++
	l.updatedAt = time.Now().UTC()
}

func (l *Listing) transition(target ListingStatus, actor Actor) error {
	if !l.status.CanTransitionTo(target, actor) {
		return domain.NewInvalidStateError(string(l.status), string(target))
	}
	l.status = target
	l.touch()
	return nil
}

func (l *Listing) touch() {
	l.updatedAt = time.Now().UTC()
}
