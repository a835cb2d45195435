package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

// CachedProvider wraps a ClimateSeriesProvider with an in-memory LRU cache.
// Cached series share their Points slice between callers; extractors treat
// provider output as read-only.
type CachedProvider struct {
	inner   domain.ClimateSeriesProvider
	series  *lruCache[domain.Series]
	tracks  *lruCache[[]domain.TrackPoint]
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner domain.ClimateSeriesProvider, maxEntries int, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		series:  newLRUCache[domain.Series](maxEntries),
		tracks:  newLRUCache[[]domain.TrackPoint](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedProvider) Series(ctx context.Context, q domain.SeriesQuery) (domain.Series, error) {
	key := fmt.Sprintf("series:%s|%s|%s|%d-%d", domain.LocationKey(q.Geo), q.Variable, q.Scenario, q.Range.Start, q.Range.End)
	if s, ok := c.series.get(key); ok {
		c.metrics.SeriesCache.WithLabelValues("hit").Inc()
		return s, nil
	}
	c.metrics.SeriesCache.WithLabelValues("miss").Inc()
	s, err := c.inner.Series(ctx, q)
	if err != nil {
		return s, err
	}
	// Only cache non-empty results so a series that is still being
	// published can be picked up on retry.
	if s.Len() > 0 {
		c.series.put(key, s)
	}
	return s, nil
}

func (c *CachedProvider) StormTracks(ctx context.Context, q domain.TrackQuery) ([]domain.TrackPoint, error) {
	key := fmt.Sprintf("tracks:%s|%.0f|%d-%d", domain.LocationKey(q.Geo), q.RadiusKm, q.Range.Start, q.Range.End)
	if t, ok := c.tracks.get(key); ok {
		c.metrics.SeriesCache.WithLabelValues("hit").Inc()
		return t, nil
	}
	c.metrics.SeriesCache.WithLabelValues("miss").Inc()
	t, err := c.inner.StormTracks(ctx, q)
	if err != nil {
		return t, err
	}
	c.tracks.put(key, t)
	return t, nil
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
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

func (c *lruCache[V]) remove(e *entry[V]) {
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

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
