package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	favoriteDomain "github.com/teranga-stays/service-rental/internal/domain/favorite"
	listingDomain "github.com/teranga-stays/service-rental/internal/domain/listing"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

// ToggleFavoriteDTO reports the state after a toggle.
type ToggleFavoriteDTO struct {
	ListingID uuid.UUID `json:"listing_id"`
	Favorited bool      `json:"favorited"`
}

// FavoriteDTO is one saved listing.
type FavoriteDTO struct {
	ListingID uuid.UUID          `json:"listing_id"`
	Listing   *ListingSummaryDTO `json:"listing,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// FavoriteService implements the guest wishlist.
type FavoriteService struct {
	favorites favoriteDomain.FavoriteRepository
	listings  listingDomain.ListingRepository
	logger    *zap.Logger
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(favorites favoriteDomain.FavoriteRepository, listings listingDomain.ListingRepository, logger *zap.Logger) *FavoriteService {
	return &FavoriteService{favorites: favorites, listings: listings, logger: logger}
}

// Toggle flips the favorite state of a listing for the user.
func (s *FavoriteService) Toggle(ctx context.Context, userID, listingID uuid.UUID) (*ToggleFavoriteDTO, error) {
	exists, err := s.favorites.Exists(ctx, userID, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to check favorite: %w", err)
	}

	if exists {
		if err := s.favorites.Remove(ctx, userID, listingID); err != nil {
			return nil, fmt.Errorf("failed to remove favorite: %w", err)
		}
		return &ToggleFavoriteDTO{ListingID: listingID, Favorited: false}, nil
	}

	lst, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !lst.IsVisibleTo(userID) {
		return nil, domain.NewNotFoundError("Listing", listingID.String())
	}
	if err := s.favorites.Add(ctx, userID, listingID); err != nil {
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}
	return &ToggleFavoriteDTO{ListingID: listingID, Favorited: true}, nil
}

// ListFavorites returns the user's saved listings, newest first.
func (s *FavoriteService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]FavoriteDTO, error) {
	favs, err := s.favorites.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get favorites: %w", err)
	}

	dtos := make([]FavoriteDTO, 0, len(favs))
	for _, f := range favs {
		dto := FavoriteDTO{ListingID: f.ListingID, CreatedAt: f.CreatedAt}
		lst, err := s.listings.FindByID(ctx, f.ListingID)
		switch {
		case err == nil:
			if lst.IsVisibleTo(userID) {
				dto.Listing = toListingSummary(lst)
			}
		case !domain.IsKind(err, domain.KindNotFound):
			s.logger.Warn("failed to load favorite listing",
				zap.String("listing_id", f.ListingID.String()),
				zap.Error(err),
			)
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}
