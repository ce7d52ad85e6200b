package cache

import (
	"context"
	"sync"
	"time"

	"github.com/caredesk/user-directory/internal/core/domain"
)

type resultEntry struct {
	results    []domain.ScoredView
	insertedAt time.Time
}

// ResultCache memoizes fully ranked search result sets per cache key. Values
// are immutable once stored; concurrent misses for the same key may both
// compute, with the last write winning.
type ResultCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]resultEntry
	stop    chan struct{}
}

// NewResultCache creates a result cache and starts its sweep goroutine.
// Call Close to stop the sweeper.
func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &ResultCache{
		ttl:     ttl,
		entries: make(map[string]resultEntry),
		stop:    make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Get returns the live ranked results for key; entries past their TTL read
// as absent and are removed.
func (c *ResultCache) Get(_ context.Context, key string) ([]domain.ScoredView, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Since(entry.insertedAt) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.results, true
}

// Put stores the ranked results for key.
func (c *ResultCache) Put(_ context.Context, key string, results []domain.ScoredView) {
	c.mu.Lock()
	c.entries[key] = resultEntry{results: results, insertedAt: time.Now()}
	c.mu.Unlock()
}

// Len reports the number of entries, including not-yet-swept expired ones.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the sweep goroutine.
func (c *ResultCache) Close() {
	close(c.stop)
}

func (c *ResultCache) sweepLoop() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *ResultCache) sweep() {
	now := time.Now()
	c.mu.Lock()
	for key, entry := range c.entries {
		if now.Sub(entry.insertedAt) >= c.ttl {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
