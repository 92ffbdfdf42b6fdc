// Package cache provides the TTL caches used for geocoding results: a
// process-local in-memory cache and a bbolt-backed one that survives
// restarts. Both satisfy domain.CacheRepository.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
)

const cleanupInterval = 10 * time.Minute

type memoryItem struct {
	value     interface{}
	expiresAt time.Time
}

// MemoryCache is a thread-safe in-memory cache with per-entry TTL.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	stop  chan struct{}
}

// NewMemoryCache creates an in-memory cache and starts its janitor.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		items: make(map[string]memoryItem),
		stop:  make(chan struct{}),
	}
	go c.janitor()
	return c
}

// Get retrieves a value; expired entries count as misses.
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok || time.Now().After(item.expiresAt) {
		return nil, domain.ErrCacheMiss
	}
	return item.value, nil
}

// Set stores a value with the given TTL. Values are JSON round-tripped so
// readers always see the generic shape they would get from a persistent
// backend.
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var stored interface{}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = memoryItem{value: stored, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Delete removes a key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// Exists reports whether a key is present and unexpired.
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[key]
	return ok && !time.Now().After(item.expiresAt), nil
}

// Close stops the janitor goroutine.
func (c *MemoryCache) Close() error {
	close(c.stop)
	return nil
}

func (c *MemoryCache) janitor() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, item := range c.items {
				if now.After(item.expiresAt) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
