package resolve

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-gateway/core"
)

// CachingResolver memoizes a resolver keyed by the query fingerprint.
// Entries are immutable once inserted and only ever deleted: on lazy TTL
// expiry at lookup, on an explicit sweep, or when either the count cap
// or the byte cap is exceeded, in which case the oldest-inserted entries
// go first until the cache is back under both caps.
//
// Negative results are not cached; disabling the cache changes latency,
// never results.
type CachingResolver struct {
	inner    core.LocationResolver
	enabled  bool
	maxCount int
	maxBytes int64
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	order *list.List
	index map[string]*list.Element
	bytes int64
}

type cacheEntry struct {
	fingerprint string
	location    core.Location
	insertedAt  time.Time
	cost        int64
}

type CacheOption func(*CachingResolver)

func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *CachingResolver) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCachingResolver(inner core.LocationResolver, cfg core.CacheConfig, options ...CacheOption) *CachingResolver {
	cache := &CachingResolver{
		inner:    inner,
		enabled:  cfg.Enabled,
		maxCount: cfg.MaxCount,
		maxBytes: cfg.MaxBytes,
		ttl:      cfg.TTL(),
		now:      func() time.Time { return time.Now().UTC() },
		order:    list.New(),
		index:    map[string]*list.Element{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cache)
	}
	return cache
}

func (c *CachingResolver) Resolve(ctx context.Context, query core.ResolveQuery) (*core.Location, error) {
	if c == nil || c.inner == nil {
		return nil, nil
	}
	if !c.enabled {
		return c.inner.Resolve(ctx, query)
	}

	fingerprint := query.Fingerprint()
	if location, ok := c.lookup(fingerprint); ok {
		return &location, nil
	}

	location, err := c.inner.Resolve(ctx, query)
	if err != nil || location == nil {
		return location, err
	}
	c.insert(fingerprint, *location)
	return location, nil
}

func (c *CachingResolver) lookup(fingerprint string) (core.Location, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	element, ok := c.index[fingerprint]
	if !ok {
		return core.Location{}, false
	}
	entry := element.Value.(*cacheEntry)
	if c.ttl > 0 && c.now().Sub(entry.insertedAt) >= c.ttl {
		c.removeLocked(element)
		return core.Location{}, false
	}
	return entry.location, true
}

func (c *CachingResolver) insert(fingerprint string, location core.Location) {
	cost := locationCost(location)
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.index[fingerprint]; ok {
		c.removeLocked(existing)
	}
	entry := &cacheEntry{
		fingerprint: fingerprint,
		location:    location,
		insertedAt:  c.now(),
		cost:        cost,
	}
	c.index[fingerprint] = c.order.PushBack(entry)
	c.bytes += cost
	c.evictLocked()
}

func (c *CachingResolver) evictLocked() {
	for c.order.Len() > 0 {
		overCount := c.maxCount > 0 && c.order.Len() > c.maxCount
		overBytes := c.maxBytes > 0 && c.bytes > c.maxBytes
		if !overCount && !overBytes {
			return
		}
		c.removeLocked(c.order.Front())
	}
}

func (c *CachingResolver) removeLocked(element *list.Element) {
	entry := element.Value.(*cacheEntry)
	c.order.Remove(element)
	delete(c.index, entry.fingerprint)
	c.bytes -= entry.cost
}

// Sweep removes every TTL-expired entry and reports how many went away.
// Lookup already treats expired entries as absent; sweeping just
// reclaims their memory eagerly.
func (c *CachingResolver) Sweep() int {
	if c == nil || c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	now := c.now()
	for element := c.order.Front(); element != nil; {
		next := element.Next()
		entry := element.Value.(*cacheEntry)
		if now.Sub(entry.insertedAt) >= c.ttl {
			c.removeLocked(element)
			removed++
		}
		element = next
	}
	return removed
}

// Len reports the live entry count.
func (c *CachingResolver) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func locationCost(location core.Location) int64 {
	cost := int64(len(location.ID) + len(location.Locator) + len(location.Driver) + len(location.Auth))
	for key, value := range location.Metadata {
		cost += int64(len(key))
		if text, ok := value.(string); ok {
			cost += int64(len(text))
			continue
		}
		cost += 16
	}
	if cost <= 0 {
		cost = 1
	}
	return cost
}

var _ core.LocationResolver = (*CachingResolver)(nil)
