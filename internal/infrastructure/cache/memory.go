package cache

import (
	"context"
	"sync"
	"time"

	"github.com/compareit/backend/internal/domain"
)

// cacheItem represents a single stored result with its expiration
type cacheItem struct {
	Products   []domain.CanonicalProduct
	StoredAt   time.Time
	Expiration time.Time
}

// MemoryCache is a thread-safe in-memory TTL cache for aggregated search
// results. Entries expire by TTL only; callers cannot force eviction of a
// live entry except through Delete.
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
	stop  chan struct{}
}

// NewMemoryCache creates a new in-memory cache. A background sweep removes
// expired entries every sweepInterval; expired entries are also treated as
// misses on access, so the sweep is purely housekeeping.
func NewMemoryCache(sweepInterval time.Duration) *MemoryCache {
	if sweepInterval <= 0 {
		sweepInterval = 10 * time.Minute
	}

	c := &MemoryCache{
		data: make(map[string]cacheItem),
		stop: make(chan struct{}),
	}
	go c.sweepExpired(sweepInterval)
	return c
}

// Get retrieves a stored result, or ErrCacheMiss when absent or expired.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]domain.CanonicalProduct, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists || time.Now().After(item.Expiration) {
		return nil, domain.ErrCacheMiss
	}

	// Hand back a copy so callers cannot mutate the stored entry.
	products := make([]domain.CanonicalProduct, len(item.Products))
	copy(products, item.Products)
	return products, nil
}

// Set stores a result under key with the given TTL.
func (c *MemoryCache) Set(ctx context.Context, key string, products []domain.CanonicalProduct, ttl time.Duration) error {
	now := time.Now()

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data[key] = cacheItem{
		Products:   products,
		StoredAt:   now,
		Expiration: now.Add(ttl),
	}
	return nil
}

// Delete removes a stored result.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.data, key)
	return nil
}

// Size returns the current number of entries, expired ones included.
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Close stops the background sweep.
func (c *MemoryCache) Close() {
	close(c.stop)
}

// sweepExpired removes expired entries periodically until Close is called.
func (c *MemoryCache) sweepExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			now := time.Now()
			for key, item := range c.data {
				if now.After(item.Expiration) {
					delete(c.data, key)
				}
			}
			c.mutex.Unlock()
		case <-c.stop:
			return
		}
	}
}
