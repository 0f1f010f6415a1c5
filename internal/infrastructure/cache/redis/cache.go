// Package redis provides the image URL cache backed by Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
	"github.com/ersonp/feather/internal/infrastructure/config"
)

// DefaultKeyPrefix namespaces cache keys.
const DefaultKeyPrefix = "feather:image:"

// Cache implements ports.ImageCache. Keys are the normalized subject name,
// so spelling variants share an entry.
type Cache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

var _ ports.ImageCache = (*Cache)(nil)

// NewCache creates a cache from a redis:// URL.
func NewCache(cfg config.RedisConfig) (*Cache, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis url is required: %w", entities.ErrConfiguration)
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return NewCacheWithClient(goredis.NewClient(opts), cfg.KeyPrefix, cfg.TTL), nil
}

// NewCacheWithClient wraps an existing client. A zero ttl keeps entries
// until evicted.
func NewCacheWithClient(client *goredis.Client, prefix string, ttl time.Duration) *Cache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

// GetImage returns the cached URL, or "" on a miss.
func (c *Cache) GetImage(ctx context.Context, name string) (string, error) {
	url, err := c.client.Get(ctx, c.key(name)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading cached image: %w", err)
	}
	return url, nil
}

// SetImage caches the URL.
func (c *Cache) SetImage(ctx context.Context, name, url string) error {
	if err := c.client.Set(ctx, c.key(name), url, c.ttl).Err(); err != nil {
		return fmt.Errorf("caching image: %w", err)
	}
	return nil
}

// DeleteImage drops the cached URL.
func (c *Cache) DeleteImage(ctx context.Context, name string) error {
	if err := c.client.Del(ctx, c.key(name)).Err(); err != nil {
		return fmt.Errorf("evicting cached image: %w", err)
	}
	return nil
}

func (c *Cache) key(name string) string {
	return c.prefix + entities.NormalizeName(name)
}
