// Package redis provides a Redis-backed cache for guest-facing shared
// wishlist views. The cache is an optimization only; callers fall back to
// PostgreSQL when it is unavailable.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
	apperrors "github.com/ckcelina/my-wishlist-sub005/pkg/errors"
)

const keyPrefix = "shared_view:"

// ShareCache caches rendered shared wishlist views by slug.
type ShareCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewShareCache creates a new Redis-backed share view cache.
func NewShareCache(client *redis.Client, ttl time.Duration) *ShareCache {
	return &ShareCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cached view by slug.
func (c *ShareCache) Get(ctx context.Context, slug string) (*domain.SharedView, error) {
	key := keyPrefix + slug

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("redis get shared view: %w", err)
	}

	var view domain.SharedView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("unmarshal shared view: %w", err)
	}

	return &view, nil
}

// Save caches a view under its slug with the configured TTL.
func (c *ShareCache) Save(ctx context.Context, view *domain.SharedView) error {
	key := keyPrefix + view.Slug

	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal shared view: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set shared view: %w", err)
	}

	return nil
}

// Delete evicts a cached view by slug.
func (c *ShareCache) Delete(ctx context.Context, slug string) error {
	key := keyPrefix + slug

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del shared view: %w", err)
	}

	return nil
}
