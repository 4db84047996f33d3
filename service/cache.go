package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/kevinaaaquil/onestopbooks/metrics"
	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/rs/zerolog"
)

const (
	DefaultCatalogCacheTTL    = 5 * time.Minute
	DefaultCatalogCachePrefix = "onestopbooks:catalog:"
)

// CatalogCache stores rendered book listings by key. Every Get reports the
// cache generation it observed; Set only stores a listing under that
// generation, so a read that overlaps Invalidate never repopulates the cache
// with rows loaded before the change.
type CatalogCache interface {
	Get(ctx context.Context, key string) ([]models.Book, int64, bool)
	Set(ctx context.Context, gen int64, key string, books []models.Book) error
	// Invalidate drops every cached listing and starts a new generation.
	Invalidate(ctx context.Context) error
}

// RedisCatalogCache keeps listings in Redis so replicas share them.
type RedisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string

	hits   int64
	misses int64
}

type CatalogCacheOption func(*RedisCatalogCache)

func WithTTL(ttl time.Duration) CatalogCacheOption {
	return func(c *RedisCatalogCache) {
		c.ttl = ttl
	}
}

func WithPrefix(prefix string) CatalogCacheOption {
	return func(c *RedisCatalogCache) {
		c.prefix = prefix
	}
}

func NewRedisCatalogCache(client *redis.Client, opts ...CatalogCacheOption) *RedisCatalogCache {
	c := &RedisCatalogCache{
		client: client,
		ttl:    DefaultCatalogCacheTTL,
		prefix: DefaultCatalogCachePrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCatalogCache) generationKey() string {
	return c.prefix + "generation"
}

func (c *RedisCatalogCache) entryKey(gen int64, key string) string {
	return fmt.Sprintf("%sv%d:%s", c.prefix, gen, key)
}

func (c *RedisCatalogCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// Get returns a cached listing. Redis errors and corrupt entries count as
// misses. A negative generation means the lookup could not tell which
// generation is current and the caller must not Set.
func (c *RedisCatalogCache) Get(ctx context.Context, key string) ([]models.Book, int64, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("catalog cache generation")
		c.miss()
		return nil, -1, false
	}
	val, err := c.client.Get(ctx, c.entryKey(gen, key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("catalog cache get")
		}
		c.miss()
		return nil, gen, false
	}
	var books []models.Book
	if err := json.Unmarshal(val, &books); err != nil {
		c.miss()
		return nil, gen, false
	}
	atomic.AddInt64(&c.hits, 1)
	metrics.RecordCacheLookup(true)
	return books, gen, true
}

func (c *RedisCatalogCache) miss() {
	atomic.AddInt64(&c.misses, 1)
	metrics.RecordCacheLookup(false)
}

// Set stores a listing loaded during generation gen. It is a no-op when the
// generation has moved on since.
func (c *RedisCatalogCache) Set(ctx context.Context, gen int64, key string, books []models.Book) error {
	if gen < 0 {
		return nil
	}
	current, err := c.generation(ctx)
	if err != nil {
		return fmt.Errorf("read catalog generation: %w", err)
	}
	if current != gen {
		return nil
	}
	data, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}
	if err := c.client.Set(ctx, c.entryKey(gen, key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set listing in redis: %w", err)
	}
	return nil
}

// Invalidate bumps the generation, which hides every stored listing, then
// deletes the old entries.
func (c *RedisCatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("bump catalog generation: %w", err)
	}
	iter := c.client.Scan(ctx, 0, c.prefix+"v*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan catalog keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete catalog keys: %w", err)
	}
	return nil
}

// Stats returns hit/miss counters since startup.
func (c *RedisCatalogCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]models.Book, int64, bool) { return nil, -1, false }
func (NopCache) Set(context.Context, int64, string, []models.Book) error  { return nil }
func (NopCache) Invalidate(context.Context) error                         { return nil }

var (
	_ CatalogCache = (*RedisCatalogCache)(nil)
	_ CatalogCache = NopCache{}
)
