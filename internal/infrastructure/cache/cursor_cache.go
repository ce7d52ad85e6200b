// Package cache provides the process-wide TTL caches backing the directory's
// pagination: cursor caches (logical page → provider continuation token) and
// the search result cache. Entries expire through a single periodic sweep
// plus lazy expiry on read, so a stalled sweep timer can never serve a stale
// cursor.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// DefaultTTL is the reference expiry window for cache entries.
const DefaultTTL = 5 * time.Minute

type cursorEntry struct {
	token      string
	insertedAt time.Time
}

// CursorCache is the in-memory cursor cache. Concurrent reads and writes are
// safe; writes to the same key are last-write-wins, which is sound because
// tokens for a given page are idempotent outputs of the same cursor chain.
type CursorCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cursorEntry
	stop    chan struct{}
}

// NewCursorCache creates a cursor cache and starts its sweep goroutine.
// Call Close to stop the sweeper.
func NewCursorCache(ttl time.Duration) *CursorCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &CursorCache{
		ttl:     ttl,
		entries: make(map[string]cursorEntry),
		stop:    make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Get returns the live token for (scope, page). An entry past its TTL reads
// as absent and is removed, even if the sweep has not fired yet.
func (c *CursorCache) Get(_ context.Context, scope string, page int) (string, bool) {
	key := cursorKey(scope, page)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}
	if time.Since(entry.insertedAt) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return entry.token, true
}

// Put stores the token for (scope, page), overwriting any existing entry.
func (c *CursorCache) Put(_ context.Context, scope string, page int, token string) {
	c.mu.Lock()
	c.entries[cursorKey(scope, page)] = cursorEntry{token: token, insertedAt: time.Now()}
	c.mu.Unlock()
}

// Len reports the number of entries, including not-yet-swept expired ones.
func (c *CursorCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the sweep goroutine.
func (c *CursorCache) Close() {
	close(c.stop)
}

func (c *CursorCache) sweepLoop() {
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

func (c *CursorCache) sweep() {
	now := time.Now()
	c.mu.Lock()
	for key, entry := range c.entries {
		if now.Sub(entry.insertedAt) >= c.ttl {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

func cursorKey(scope string, page int) string {
	return scope + ":" + strconv.Itoa(page)
}
