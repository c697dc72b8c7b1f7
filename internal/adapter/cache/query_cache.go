// Package cache holds a small TTL cache for retrieval results. Retrieval
// is read-only, so cached entries only go stale when the collection is
// re-ingested; the TTL keeps that window bounded.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"lawrag/internal/domain"
)

type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
}

type cacheEntry struct {
	results   []domain.ScoredDocument
	timestamp time.Time
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Key builds the cache key from everything that affects the result set.
func Key(query string, limit, minContentLength int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d", query, limit, minContentLength)))
	return hex.EncodeToString(sum[:16])
}

func (c *QueryCache) Get(key string) ([]domain.ScoredDocument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Since(entry.timestamp) > c.ttl {
		return nil, false
	}
	return entry.results, true
}

func (c *QueryCache) Put(key string, results []domain.ScoredDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.maxSize {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = &cacheEntry{
		results:   results,
		timestamp: time.Now(),
	}
}

// Invalidate drops everything; called after an ingestion run changes the
// collection.
func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
}
