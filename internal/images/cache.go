package images

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL bounds how long a resolved image set is reused. Search
// results go stale slowly; fifteen minutes keeps repeat questionnaires cheap
// without pinning dead URLs for hours.
const DefaultCacheTTL = 15 * time.Minute

type cacheEntry struct {
	records []Record
	expires time.Time
}

// CachedResolver wraps a Resolver with an in-memory TTL cache. Concurrent
// misses for the same key collapse into a single upstream resolution.
type CachedResolver struct {
	resolver *Resolver
	ttl      time.Duration
	group    singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func NewCachedResolver(resolver *Resolver, ttl time.Duration) *CachedResolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedResolver{
		resolver: resolver,
		ttl:      ttl,
		entries:  make(map[string]cacheEntry),
	}
}

// Resolve returns cached records when a fresh entry exists, otherwise
// resolves through the chain and stores the result. Returned slices are
// copies; callers may mutate them freely.
func (c *CachedResolver) Resolve(ctx context.Context, rawTerms string, count int) []Record {
	key := fmt.Sprintf("%s|%d", Normalize(rawTerms), count)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expires) {
		return cloneRecords(entry.records)
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		records := c.resolver.Resolve(ctx, rawTerms, count)
		c.mu.Lock()
		c.entries[key] = cacheEntry{records: records, expires: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return records, nil
	})
	return cloneRecords(v.([]Record))
}

// Purge drops every expired entry and reports how many were removed.
func (c *CachedResolver) Purge() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
