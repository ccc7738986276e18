package taxonomy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	CacheTTL    = 5 * time.Minute
	cachePrefix = "taxonomy:"
	treeKey     = cachePrefix + "tree"
)

// ErrCacheMiss means the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache holds read-mostly taxonomy views. Any write to the taxonomy drops
// every key under the taxonomy prefix.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

func categoryFiltersKey(categoryID int64) string {
	return fmt.Sprintf("%scategory:%d:filters", cachePrefix, categoryID)
}

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

func (c *redisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

type nopCache struct{}

// NewNopCache is used when no Redis is configured: every read misses.
func NewNopCache() Cache { return nopCache{} }

func (nopCache) Get(context.Context, string, interface{}) error { return ErrCacheMiss }
func (nopCache) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (nopCache) DeletePrefix(context.Context, string) error { return nil }
