// Package geocache keeps recently geocoded features in process memory, in
// front of whichever geocoding provider is configured.
package geocache

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/locality-georef/internal/domain"
	"github.com/couchcryptid/locality-georef/internal/observability"
)

// layerName labels this cache tier in the geocode cache metrics.
const layerName = "memory"

// Geocoder wraps a domain.Geocoder with an in-memory LRU cache. Concurrent
// misses for the same feature share one upstream call.
type Geocoder struct {
	inner   domain.Geocoder
	cache   *lruCache
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewGeocoder creates a cache decorator around any domain.Geocoder.
func NewGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *Geocoder {
	return &Geocoder{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

// Geocode returns cached candidates for feature or looks them up. The shared
// upstream call is detached from the caller's cancellation, so one caller
// giving up does not fail the others waiting on the same feature; each caller
// still stops waiting when its own context ends.
func (c *Geocoder) Geocode(ctx context.Context, feature string) ([]domain.GeocodeCandidate, error) {
	key := cacheKey(feature)
	if result, ok := c.cache.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues(layerName, "hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues(layerName, "miss").Inc()

	ch := c.group.DoChan(key, func() (any, error) {
		result, err := c.inner.Geocode(context.WithoutCancel(ctx), feature)
		if err != nil {
			return nil, err
		}
		// Only cache non-empty results so transient "not found" responses can be retried.
		if len(result) > 0 {
			c.cache.put(key, result)
		}
		return result, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.GeocodeCandidate), nil
	}
}

func cacheKey(feature string) string {
	return strings.ToLower(strings.TrimSpace(feature))
}

// lruCache is a simple thread-safe LRU cache of geocoder candidates.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []domain.GeocodeCandidate
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.GeocodeCandidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []domain.GeocodeCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
