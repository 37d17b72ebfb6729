// Package cache keeps a read-through copy of listings in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

const listingKeyPrefix = "marketplace:listing:"

// ListingCache stores listings by id. A nil client disables it; every method is then a
// no-op and Get always misses. Redis failures are logged and treated as misses.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

type cachedListing struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	SellerID    int64     `json:"seller_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewListingCache builds a cache over client.
func NewListingCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ListingCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ListingCache{client: client, ttl: ttl, logger: logger}
}

// Enabled reports whether a Redis client backs the cache.
func (c *ListingCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached listing, if any.
func (c *ListingCache) Get(ctx context.Context, id int64) (*domain.Listing, bool) {
	if !c.Enabled() {
		return nil, false
	}
	raw, err := c.client.Get(ctx, listingKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("listing cache read failed", zap.Int64("listing_id", id), zap.Error(err))
		}
		return nil, false
	}

	var entry cachedListing
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("discarding corrupt listing cache entry", zap.Int64("listing_id", id), zap.Error(err))
		c.Invalidate(ctx, id)
		return nil, false
	}
	return &domain.Listing{
		ID:          entry.ID,
		Title:       entry.Title,
		Description: entry.Description,
		Price:       entry.Price,
		SellerID:    entry.SellerID,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}, true
}

// Set stores listing for the configured TTL.
func (c *ListingCache) Set(ctx context.Context, listing *domain.Listing) {
	if !c.Enabled() || listing == nil {
		return
	}
	raw, err := json.Marshal(cachedListing{
		ID:          listing.ID,
		Title:       listing.Title,
		Description: listing.Description,
		Price:       listing.Price,
		SellerID:    listing.SellerID,
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, listingKey(listing.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("listing cache write failed", zap.Int64("listing_id", listing.ID), zap.Error(err))
	}
}

// Invalidate drops the cached copy of a listing.
func (c *ListingCache) Invalidate(ctx context.Context, id int64) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, listingKey(id)).Err(); err != nil {
		c.logger.Warn("listing cache invalidation failed", zap.Int64("listing_id", id), zap.Error(err))
	}
}

func listingKey(id int64) string {
	return listingKeyPrefix + strconv.FormatInt(id, 10)
}
