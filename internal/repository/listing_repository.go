package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	listingDomain "github.com/teranga-stays/service-rental/internal/domain/listing"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

// ListingModel is the GORM model for the listings table.
type ListingModel struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OwnerID         uuid.UUID      `gorm:"type:uuid;index;not null"`
	Title           string         `gorm:"size:100;not null"`
	Description     string         `gorm:"type:text"`
	City            string         `gorm:"size:100;index;not null"`
	Address         string         `gorm:"size:255"`
	PricePerNight   int64          `gorm:"not null"`
	MaxGuests       int            `gorm:"not null"`
	Amenities       datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	Images          datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	Status          string         `gorm:"size:20;index;not null"`
	RejectionReason string         `gorm:"size:500"`
	Version         int64          `gorm:"not null;default:1"`
	CreatedAt       time.Time      `gorm:"not null"`
	UpdatedAt       time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ListingModel) TableName() string {
	return "listings"
}

// GormListingRepository is the GORM-based implementation of ListingRepository.
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository.
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindByID retrieves a listing by its unique identifier.
func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*listingDomain.Listing, error) {
	var model ListingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Listing", id.String())
		}
		return nil, fmt.Errorf("failed to find listing by ID: %w", err)
	}
	return toDomainListing(&model)
}

// FindByOwnerID retrieves every listing owned by a host, newest first.
func (r *GormListingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*listingDomain.Listing, error) {
	var models []ListingModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner listings: %w", err)
	}
	return toDomainListings(models)
}

// FindByStatus retrieves listings in one moderation status, oldest first.
func (r *GormListingRepository) FindByStatus(ctx context.Context, status listingDomain.ListingStatus, page, limit int) ([]*listingDomain.Listing, int64, error) {
	query := r.db.WithContext(ctx).Model(&ListingModel{}).Where("status = ?", string(status))

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	var models []ListingModel
	if err := query.Session(&gorm.Session{}).
		Order("created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find listings by status: %w", err)
	}

	listings, err := toDomainListings(models)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// Search returns approved listings matching filter.
func (r *GormListingRepository) Search(ctx context.Context, filter listingDomain.SearchFilter, page, limit int) ([]*listingDomain.Listing, int64, error) {
	query := r.db.WithContext(ctx).Model(&ListingModel{}).
		Where("status = ?", string(listingDomain.StatusApproved))

	if city := strings.TrimSpace(filter.City); city != "" {
		query = query.Where("LOWER(city) = LOWER(?)", city)
	}
	if filter.Guests > 0 {
		query = query.Where("max_guests >= ?", filter.Guests)
	}
	if filter.MinPrice > 0 {
		query = query.Where("price_per_night >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query = query.Where("price_per_night <= ?", filter.MaxPrice)
	}
	if amenity := strings.ToLower(strings.TrimSpace(filter.Amenity)); amenity != "" {
		needle, err := json.Marshal([]string{amenity})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal amenity filter: %w", err)
		}
		query = query.Where("amenities @> ?::jsonb", string(needle))
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	var models []ListingModel
	if err := query.Session(&gorm.Session{}).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search listings: %w", err)
	}

	listings, err := toDomainListings(models)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// Save persists a new listing.
func (r *GormListingRepository) Save(ctx context.Context, l *listingDomain.Listing) error {
	model, err := toListingModel(l)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

// Update persists changes to an existing listing with optimistic locking.
func (r *GormListingRepository) Update(ctx context.Context, l *listingDomain.Listing) error {
	model, err := toListingModel(l)
	if err != nil {
		return err
	}

	expectedVersion := l.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&ListingModel{}).
		Where("id = ? AND owner_id = ? AND version = ?", model.ID, model.OwnerID, expectedVersion).
		Updates(map[string]interface{}{
			"title":            model.Title,
			"description":      model.Description,
			"city":             model.City,
			"address":          model.Address,
			"price_per_night":  model.PricePerNight,
			"max_guests":       model.MaxGuests,
			"amenities":        model.Amenities,
			"images":           model.Images,
			"status":           model.Status,
			"rejection_reason": model.RejectionReason,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update listing: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("listing was modified by another transaction")
	}
	return nil
}

// DeleteOwned deletes the listing only if ownerID still owns it.
func (r *GormListingRepository) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&ListingModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete listing: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Listing", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toListingModel(l *listingDomain.Listing) (*ListingModel, error) {
	amenities, err := json.Marshal(l.Amenities())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal amenities: %w", err)
	}
	images, err := json.Marshal(l.Images())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images: %w", err)
	}
	return &ListingModel{
		ID:              l.ID(),
		OwnerID:         l.OwnerID(),
		Title:           l.Title(),
		Description:     l.Description(),
		City:            l.City(),
		Address:         l.Address(),
		PricePerNight:   l.PricePerNight(),
		MaxGuests:       l.MaxGuests(),
		Amenities:       amenities,
		Images:          images,
		Status:          string(l.Status()),
		RejectionReason: l.RejectionReason(),
		Version:         l.Version(),
		CreatedAt:       l.CreatedAt(),
		UpdatedAt:       l.UpdatedAt(),
	}, nil
}

func toDomainListing(m *ListingModel) (*listingDomain.Listing, error) {
	var amenities []string
	if len(m.Amenities) > 0 {
		if err := json.Unmarshal(m.Amenities, &amenities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal amenities: %w", err)
		}
	}
	var images []string
	if len(m.Images) > 0 {
		if err := json.Unmarshal(m.Images, &images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal images: %w", err)
		}
	}
	status, err := listingDomain.ParseListingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return listingDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		listingDomain.Details{
			Title:         m.Title,
			Description:   m.Description,
			City:          m.City,
			Address:       m.Address,
			PricePerNight: m.PricePerNight,
			MaxGuests:     m.MaxGuests,
			Amenities:     amenities,
		},
		images,
		status,
		m.RejectionReason,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainListings(models []ListingModel) ([]*listingDomain.Listing, error) {
	listings := make([]*listingDomain.Listing, len(models))
	for i := range models {
		l, err := toDomainListing(&models[i])
		if err != nil {
			return nil, err
		}
		listings[i] = l
	}
	return listings, nil
}
