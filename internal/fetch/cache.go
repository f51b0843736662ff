package fetch

import (
	"sync"
	"time"

	"github.com/ahacrm/pulse/internal/timewindow"
)

// resultCache is the short-lived per-period result cache. One entry per
// period key, replaced atomically under the lock; expiry is wall-clock based
// and never triggered by writes. The render loop is single-threaded today,
// but the cache stays safe under concurrent requests.
type resultCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[timewindow.Period]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	result    Result
	expiresAt time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		ttl:     ttl,
		entries: make(map[timewindow.Period]cacheEntry),
		now:     time.Now,
	}
}

func (c *resultCache) Get(p timewindow.Period) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[p]
	if !ok || c.now().After(e.expiresAt) {
		return Result{}, false
	}
	return e.result, true
}

func (c *resultCache) Put(p timewindow.Period, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[p] = cacheEntry{result: r, expiresAt: c.now().Add(c.ttl)}
}

// Clear drops every entry. Exposed through Fetcher.Clear for the force-refresh
// trigger, independent of expiry.
func (c *resultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[timewindow.Period]cacheEntry)
}
