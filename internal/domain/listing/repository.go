package listing

import (
	"context"

	"github.com/google/uuid"
)

// SearchFilter narrows a public listing search. Zero values mean "any".
type SearchFilter struct {
	City     string
	Guests   int
	MinPrice int64
	MaxPrice int64
	Amenity  string
}

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Listing, error)
	FindByStatus(ctx context.Context, status ListingStatus, page, limit int) ([]*Listing, int64, error)

	// Search returns approved listings matching filter.
	Search(ctx context.Context, filter SearchFilter, page, limit int) ([]*Listing, int64, error)

	Save(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error

	// DeleteOwned deletes the listing only if ownerID still owns it at write time.
	DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error
}
