package favorite

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Favorite is a guest's bookmark on a listing. Its existence means "favorited".
type Favorite struct {
	UserID    uuid.UUID
	ListingID uuid.UUID
	CreatedAt time.Time
}

// FavoriteRepository defines persistence operations for favorites.
type FavoriteRepository interface {
	Exists(ctx context.Context, userID, listingID uuid.UUID) (bool, error)

	// Add is a no-op when the pair already exists.
	Add(ctx context.Context, userID, listingID uuid.UUID) error

	// Remove is a no-op when the pair does not exist.
	Remove(ctx context.Context, userID, listingID uuid.UUID) error

	FindByUserID(ctx context.Context, userID uuid.UUID) ([]Favorite, error)
}
