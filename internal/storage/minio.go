package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Config holds object storage settings.
type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// MinioImageStorage stores listing images in an S3-compatible bucket.
type MinioImageStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *zap.Logger
}

// NewMinioImageStorage connects to the endpoint and makes sure the bucket exists.
func NewMinioImageStorage(ctx context.Context, cfg Config, logger *zap.Logger) (*MinioImageStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to make bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("bucket created", zap.String("bucket", cfg.Bucket))
	}

	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = client.EndpointURL().String() + "/" + cfg.Bucket
	}

	return &MinioImageStorage{client: client, bucket: cfg.Bucket, baseURL: baseURL, logger: logger}, nil
}

// Upload stores one listing image and returns its public URL.
func (s *MinioImageStorage) Upload(ctx context.Context, listingID uuid.UUID, fileName, contentType string, r io.Reader, size int64) (string, error) {
	key := ObjectKey(listingID, fileName)

	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}

	s.logger.Info("listing image uploaded",
		zap.String("bucket", info.Bucket),
		zap.String("key", info.Key),
		zap.Int64("size", info.Size),
	)
	return s.baseURL + "/" + key, nil
}

// ObjectKey builds listings/<listing-id>/<uuid><ext>, keeping only the extension of the original name.
func ObjectKey(listingID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("listings/%s/%s%s", listingID, uuid.New(), ext)
}

// ErrStorageDisabled is returned when image uploads are not configured.
var ErrStorageDisabled = errors.New("image storage is not configured")

// DisabledImageStorage rejects every upload.
type DisabledImageStorage struct{}

// Upload always fails with ErrStorageDisabled.
func (DisabledImageStorage) Upload(context.Context, uuid.UUID, string, string, io.Reader, int64) (string, error) {
	return "", ErrStorageDisabled
}
