package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	listingDomain "github.com/teranga-stays/service-rental/internal/domain/listing"
)

const listingCachePrefix = "listing:"

// ListingCache stores approved listing snapshots keyed by ID.
// Get returns (nil, nil) on a miss.
type ListingCache interface {
	Get(ctx context.Context, id uuid.UUID) (*ListingModel, error)
	Set(ctx context.Context, model *ListingModel) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RedisListingCache is the go-redis implementation of ListingCache.
type RedisListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisListingCache creates a cache with the given entry TTL.
func NewRedisListingCache(client *redis.Client, ttl time.Duration) *RedisListingCache {
	return &RedisListingCache{client: client, ttl: ttl}
}

func (c *RedisListingCache) Get(ctx context.Context, id uuid.UUID) (*ListingModel, error) {
	data, err := c.client.Get(ctx, listingCachePrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var model ListingModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

func (c *RedisListingCache) Set(ctx context.Context, model *ListingModel) error {
	data, err := json.Marshal(model)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, listingCachePrefix+model.ID.String(), data, c.ttl).Err()
}

func (c *RedisListingCache) Delete(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, listingCachePrefix+id.String()).Err()
}

// NoopListingCache is used when Redis is disabled.
type NoopListingCache struct{}

func (NoopListingCache) Get(context.Context, uuid.UUID) (*ListingModel, error) { return nil, nil }
func (NoopListingCache) Set(context.Context, *ListingModel) error              { return nil }
func (NoopListingCache) Delete(context.Context, uuid.UUID) error               { return nil }

// CachedListingRepository serves approved listing reads from a cache and
// invalidates on every write. Cache failures degrade to the store.
type CachedListingRepository struct {
	listingDomain.ListingRepository
	cache  ListingCache
	logger *zap.Logger
}

// NewCachedListingRepository wraps inner with cache.
func NewCachedListingRepository(inner listingDomain.ListingRepository, cache ListingCache, logger *zap.Logger) *CachedListingRepository {
	return &CachedListingRepository{ListingRepository: inner, cache: cache, logger: logger}
}

// FindByID checks the cache first and only caches approved listings.
func (r *CachedListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*listingDomain.Listing, error) {
	cached, err := r.cache.Get(ctx, id)
	if err != nil {
		r.logger.Warn("listing cache read failed", zap.String("listing_id", id.String()), zap.Error(err))
	}
	if cached != nil {
		if l, convErr := toDomainListing(cached); convErr == nil {
			return l, nil
		}
	}

	l, err := r.ListingRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status() == listingDomain.StatusApproved {
		model, convErr := toListingModel(l)
		if convErr == nil {
			convErr = r.cache.Set(ctx, model)
		}
		if convErr != nil {
			r.logger.Warn("listing cache write failed", zap.String("listing_id", id.String()), zap.Error(convErr))
		}
	}
	return l, nil
}

func (r *CachedListingRepository) Update(ctx context.Context, l *listingDomain.Listing) error {
	if err := r.ListingRepository.Update(ctx, l); err != nil {
		return err
	}
	r.invalidate(ctx, l.ID())
	return nil
}

func (r *CachedListingRepository) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error {
	if err := r.ListingRepository.DeleteOwned(ctx, id, ownerID); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedListingRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Delete(ctx, id); err != nil {
		r.logger.Error("listing cache invalidation failed",
			zap.String("listing_id", id.String()),
			zap.Error(err),
		)
	}
}
