package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/thependalorian/salesflow/logging"
)

// Stats holds cache-level hit/miss counters.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// Cache is a write-through cache in front of a durable Store. It satisfies
// Store itself so callers can be wired against either.
//
// Ordering contract: Put delegates to the backing store first and only
// populates the cache after the write is acknowledged. The cache can
// therefore never be ahead of durable state; a failed store write leaves the
// cached view untouched.
type Cache struct {
	store  Store
	logger logging.Logger

	mu      sync.RWMutex
	entries map[string]Record
	stats   Stats
}

var _ Store = (*Cache)(nil)

// CacheOptions configures a Cache.
type CacheOptions struct {
	Logger logging.Logger
}

// NewCache wraps store with an empty cache.
func NewCache(store Store, optFns ...func(o *CacheOptions)) *Cache {
	opts := CacheOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Cache{
		store:   store,
		logger:  opts.Logger,
		entries: make(map[string]Record),
	}
}

func cacheKey(namespace, key string) string { return namespace + "\x00" + key }

// Get serves from cache on a hit. On a miss it delegates to the store and,
// when the store holds the record, populates the cache before returning; a
// store miss does not populate the cache.
func (c *Cache) Get(ctx context.Context, namespace, key string) (*Record, error) {
	ck := cacheKey(namespace, key)

	c.mu.Lock()
	if rec, ok := c.entries[ck]; ok {
		c.stats.Hits++
		c.mu.Unlock()
		out := rec.clone()
		return &out, nil
	}
	c.stats.Misses++
	c.mu.Unlock()

	rec, err := c.store.Get(ctx, namespace, key)
	if err != nil {
		return nil, fmt.Errorf("store get %s/%s: %w", namespace, key, err)
	}
	if rec == nil {
		return nil, nil
	}

	c.mu.Lock()
	c.entries[ck] = rec.clone()
	c.mu.Unlock()

	c.logger.Debug("cache.populated", "namespace", namespace, "key", key)
	return rec, nil
}

// Put writes through to the store; the cache is updated only after the store
// acknowledges the write.
func (c *Cache) Put(ctx context.Context, namespace, key string, value map[string]any) error {
	if err := c.store.Put(ctx, namespace, key, value); err != nil {
		return fmt.Errorf("store put %s/%s: %w", namespace, key, err)
	}

	rec := Record{
		Namespace: namespace,
		Key:       key,
		Value:     copyValue(value),
		Timestamp: time.Now().UTC(),
	}

	c.mu.Lock()
	c.entries[cacheKey(namespace, key)] = rec
	c.mu.Unlock()
	return nil
}

// Search always delegates to the store; query results are not cached.
func (c *Cache) Search(ctx context.Context, namespace, query string) ([]Record, error) {
	records, err := c.store.Search(ctx, namespace, query)
	if err != nil {
		return nil, fmt.Errorf("store search %s: %w", namespace, err)
	}
	return records, nil
}

// Stats returns a snapshot of the hit/miss counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}
