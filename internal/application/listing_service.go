package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranga-stays/service-rental/internal/contracts"
	listingDomain "github.com/teranga-stays/service-rental/internal/domain/listing"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// ListingRequest is the request DTO for creating or updating a listing.
type ListingRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description"`
	City          string   `json:"city" binding:"required"`
	Address       string   `json:"address"`
	PricePerNight int64    `json:"price_per_night" binding:"required"`
	MaxGuests     int      `json:"max_guests" binding:"required"`
	Amenities     []string `json:"amenities"`
}

func (r ListingRequest) details() listingDomain.Details {
	return listingDomain.Details{
		Title:         r.Title,
		Description:   r.Description,
		City:          r.City,
		Address:       r.Address,
		PricePerNight: r.PricePerNight,
		MaxGuests:     r.MaxGuests,
		Amenities:     r.Amenities,
	}
}

// ModerateRequest is an admin's moderation decision.
type ModerateRequest struct {
	Decision string `json:"decision" binding:"required"`
	Reason   string `json:"reason"`
}

// ListingDTO is the API response representation of a listing.
type ListingDTO struct {
	ID              uuid.UUID `json:"id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	City            string    `json:"city"`
	Address         string    `json:"address,omitempty"`
	PricePerNight   int64     `json:"price_per_night"`
	Currency        string    `json:"currency"`
	MaxGuests       int       `json:"max_guests"`
	Amenities       []string  `json:"amenities"`
	Images          []string  `json:"images"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	Version         int64     `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ListingService implements listing lifecycle use cases.
type ListingService struct {
	repo       listingDomain.ListingRepository
	authorizer *Authorizer
	publisher  EventPublisher
	effects    *EffectRunner
	logger     *zap.Logger
}

// NewListingService creates a new ListingService.
func NewListingService(
	repo listingDomain.ListingRepository,
	authorizer *Authorizer,
	publisher EventPublisher,
	effects *EffectRunner,
	logger *zap.Logger,
) *ListingService {
	return &ListingService{
		repo:       repo,
		authorizer: authorizer,
		publisher:  publisher,
		effects:    effects,
		logger:     logger,
	}
}

// CreateListing creates a listing awaiting moderation.
func (s *ListingService) CreateListing(ctx context.Context, hostID uuid.UUID, req ListingRequest) (*ListingDTO, error) {
	if _, err := s.authorizer.Require(ctx, hostID, auth.RoleHost, auth.RoleAdmin); err != nil {
		return nil, err
	}

	lst, err := listingDomain.NewListing(hostID, req.details())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, lst); err != nil {
		s.logger.Error("failed to create listing", zap.Error(err))
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.logger.Info("listing created",
		zap.String("listing_id", lst.ID().String()),
		zap.String("owner_id", hostID.String()),
	)
	return toListingDTO(lst), nil
}

// UpdateListing replaces a listing's editable fields.
func (s *ListingService) UpdateListing(ctx context.Context, ownerID, listingID uuid.UUID, req ListingRequest) (*ListingDTO, error) {
	lst, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := lst.Update(ownerID, req.details()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, lst); err != nil {
		return nil, err
	}
	return toListingDTO(lst), nil
}

// ModerateListing approves or rejects a listing.
func (s *ListingService) ModerateListing(ctx context.Context, adminID, listingID uuid.UUID, req ModerateRequest) (*ListingDTO, error) {
	if _, err := s.authorizer.Require(ctx, adminID, auth.RoleAdmin); err != nil {
		return nil, err
	}

	lst, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	switch req.Decision {
	case DecisionApprove:
		err = lst.Approve()
	case DecisionReject:
		err = lst.Reject(req.Reason)
	default:
		return nil, listingDomain.ErrUnknownDecision
	}
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, lst); err != nil {
		return nil, err
	}

	s.logger.Info("listing moderated",
		zap.String("listing_id", listingID.String()),
		zap.String("status", string(lst.Status())),
		zap.String("moderator_id", adminID.String()),
	)

	s.effects.Run(ctx, publishEffect(s.publisher, contracts.TopicListingEvents, contracts.ListingModerated, listingID.String(),
		contracts.ListingModeratedEvent{
			ListingID:  lst.ID(),
			OwnerID:    lst.OwnerID(),
			Status:     string(lst.Status()),
			Reason:     lst.RejectionReason(),
			OccurredAt: time.Now().UTC(),
		}))

	return toListingDTO(lst), nil
}

// SnoozeListing hides an approved listing from search and booking.
func (s *ListingService) SnoozeListing(ctx context.Context, ownerID, listingID uuid.UUID) (*ListingDTO, error) {
	return s.mutate(ctx, listingID, func(l *listingDomain.Listing) error { return l.Snooze(ownerID) })
}

// UnsnoozeListing puts a snoozed listing back on the market.
func (s *ListingService) UnsnoozeListing(ctx context.Context, ownerID, listingID uuid.UUID) (*ListingDTO, error) {
	return s.mutate(ctx, listingID, func(l *listingDomain.Listing) error { return l.Unsnooze(ownerID) })
}

// DeleteListing removes the listing if the caller owns it. Bookings and
// conversations referencing it are kept.
func (s *ListingService) DeleteListing(ctx context.Context, ownerID, listingID uuid.UUID) error {
	if err := s.repo.DeleteOwned(ctx, listingID, ownerID); err != nil {
		return err
	}
	s.logger.Info("listing deleted",
		zap.String("listing_id", listingID.String()),
		zap.String("owner_id", ownerID.String()),
	)
	return nil
}

// GetListing returns a listing visible to viewerID. viewerID may be uuid.Nil.
func (s *ListingService) GetListing(ctx context.Context, viewerID, listingID uuid.UUID) (*ListingDTO, error) {
	lst, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !lst.IsVisibleTo(viewerID) {
		return nil, domain.NewNotFoundError("Listing", listingID.String())
	}
	return toListingDTO(lst), nil
}

// SearchListings returns approved listings matching filter.
func (s *ListingService) SearchListings(ctx context.Context, filter listingDomain.SearchFilter, page, limit int) (*domain.PaginatedResult[ListingDTO], error) {
	listings, total, err := s.repo.Search(ctx, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	result := domain.NewPaginatedResult(toListingDTOs(listings), total, page, limit)
	return &result, nil
}

// ListMyListings returns every listing owned by hostID, whatever its status.
func (s *ListingService) ListMyListings(ctx context.Context, hostID uuid.UUID) ([]ListingDTO, error) {
	listings, err := s.repo.FindByOwnerID(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to get listings: %w", err)
	}
	return toListingDTOs(listings), nil
}

// ListPendingReview returns the moderation queue.
func (s *ListingService) ListPendingReview(ctx context.Context, adminID uuid.UUID, page, limit int) (*domain.PaginatedResult[ListingDTO], error) {
	if _, err := s.authorizer.Require(ctx, adminID, auth.RoleAdmin); err != nil {
		return nil, err
	}
	listings, total, err := s.repo.FindByStatus(ctx, listingDomain.StatusPendingReview, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending listings: %w", err)
	}
	result := domain.NewPaginatedResult(toListingDTOs(listings), total, page, limit)
	return &result, nil
}

func (s *ListingService) mutate(ctx context.Context, listingID uuid.UUID, fn func(*listingDomain.Listing) error) (*ListingDTO, error) {
	lst, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := fn(lst); err != nil {
		return nil, err
	}
	if err := s.save(ctx, lst); err != nil {
		return nil, err
	}
	return toListingDTO(lst), nil
}

func (s *ListingService) save(ctx context.Context, lst *listingDomain.Listing) error {
	lst.IncrementVersion()
	if err := s.repo.Update(ctx, lst); err != nil {
		s.logger.Error("failed to update listing", zap.String("listing_id", lst.ID().String()), zap.Error(err))
		return fmt.Errorf("failed to update listing: %w", err)
	}
	return nil
}

func toListingDTOs(listings []*listingDomain.Listing) []ListingDTO {
	dtos := make([]ListingDTO, len(listings))
	for i, l := range listings {
		dtos[i] = *toListingDTO(l)
	}
	return dtos
}

func toListingDTO(l *listingDomain.Listing) *ListingDTO {
	amenities := l.Amenities()
	if amenities == nil {
		amenities = []string{}
	}
	images := l.Images()
	if images == nil {
		images = []string{}
	}
	return &ListingDTO{
		ID:              l.ID(),
		OwnerID:         l.OwnerID(),
		Title:           l.Title(),
		Description:     l.Description(),
		City:            l.City(),
		Address:         l.Address(),
		PricePerNight:   l.PricePerNight(),
		Currency:        domain.CurrencyXOF,
		MaxGuests:       l.MaxGuests(),
		Amenities:       amenities,
		Images:          images,
		Status:          string(l.Status()),
		RejectionReason: l.RejectionReason(),
		Version:         l.Version(),
		CreatedAt:       l.CreatedAt(),
		UpdatedAt:       l.UpdatedAt(),
	}
}
