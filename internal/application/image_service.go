package application

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	listingDomain "github.com/teranga-stays/service-rental/internal/domain/listing"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

// MaxImageSize bounds a single listing image upload.
const MaxImageSize = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UploadImageRequest describes one uploaded image file.
type UploadImageRequest struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageService handles listing image uploads.
type ImageService struct {
	listings listingDomain.ListingRepository
	storage  ImageStorage
	logger   *zap.Logger
}

// NewImageService creates a new ImageService.
func NewImageService(listings listingDomain.ListingRepository, storage ImageStorage, logger *zap.Logger) *ImageService {
	return &ImageService{listings: listings, storage: storage, logger: logger}
}

// UploadListingImage stores the file and appends its URL to the listing.
func (s *ImageService) UploadListingImage(ctx context.Context, ownerID, listingID uuid.UUID, req UploadImageRequest) (*ListingDTO, error) {
	if req.Size <= 0 || req.Size > MaxImageSize {
		return nil, domain.NewValidationError(fmt.Sprintf("image must be between 1 byte and %d bytes", MaxImageSize))
	}
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if !allowedImageTypes[contentType] {
		return nil, domain.NewValidationError("image must be jpeg, png or webp")
	}

	lst, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !lst.IsOwnedBy(ownerID) {
		return nil, listingDomain.ErrNotOwner
	}
	if len(lst.Images()) >= listingDomain.MaxImages {
		return nil, domain.NewValidationError(fmt.Sprintf("a listing can have at most %d images", listingDomain.MaxImages))
	}

	url, err := s.storage.Upload(ctx, listingID, req.FileName, contentType, req.Body, req.Size)
	if err != nil {
		s.logger.Error("failed to upload image", zap.String("listing_id", listingID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	if err := lst.AddImage(ownerID, url); err != nil {
		return nil, err
	}
	lst.IncrementVersion()
	if err := s.listings.Update(ctx, lst); err != nil {
		return nil, fmt.Errorf("failed to attach image: %w", err)
	}

	s.logger.Info("listing image uploaded",
		zap.String("listing_id", listingID.String()),
		zap.String("url", url),
	)
	return toListingDTO(lst), nil
}
