package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

// --- mock for cache tests ---

type countingProvider struct {
	seriesCalls int
	trackCalls  int
	series      domain.Series
	err         error
}

func (m *countingProvider) Series(_ context.Context, _ domain.SeriesQuery) (domain.Series, error) {
	m.seriesCalls++
	return m.series, m.err
}

func (m *countingProvider) StormTracks(_ context.Context, _ domain.TrackQuery) ([]domain.TrackPoint, error) {
	m.trackCalls++
	return nil, m.err
}

func wsdiQuery(lat float64) domain.SeriesQuery {
	return domain.SeriesQuery{
		Geo:      domain.Geo{Lat: lat, Lon: 139.77},
		Variable: domain.VarWSDI,
		Scenario: domain.SSP245,
		Range:    domain.TimeRange{Start: 2040, End: 2060},
	}
}

// --- CachedProvider tests ---

func TestCachedProvider_SeriesCacheHit(t *testing.T) {
	inner := &countingProvider{series: domain.Series{Variable: domain.VarWSDI, Points: []domain.Point{{Value: 3}}}}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedProvider(inner, 10, metrics)

	s1, err := cached.Series(context.Background(), wsdiQuery(35.68))
	require.NoError(t, err)
	assert.Equal(t, 1, s1.Len())

	s2, err := cached.Series(context.Background(), wsdiQuery(35.68))
	require.NoError(t, err)
	assert.Equal(t, s1, s2)

	assert.Equal(t, 1, inner.seriesCalls, "should only call inner once")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.SeriesCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.SeriesCache.WithLabelValues("miss")), 0)
}

func TestCachedProvider_DifferentKeysMiss(t *testing.T) {
	inner := &countingProvider{series: domain.Series{Points: []domain.Point{{Value: 1}}}}
	cached := NewCachedProvider(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Series(context.Background(), wsdiQuery(35.68))
	_, _ = cached.Series(context.Background(), wsdiQuery(34.69))
	q := wsdiQuery(35.68)
	q.Scenario = domain.SSP585
	_, _ = cached.Series(context.Background(), q)

	assert.Equal(t, 3, inner.seriesCalls)
}

func TestCachedProvider_EmptyAndErrorsNotCached(t *testing.T) {
	inner := &countingProvider{}
	cached := NewCachedProvider(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Series(context.Background(), wsdiQuery(35.68))
	_, _ = cached.Series(context.Background(), wsdiQuery(35.68))
	assert.Equal(t, 2, inner.seriesCalls)

	inner.err = errors.New("boom")
	_, err := cached.Series(context.Background(), wsdiQuery(1))
	assert.Error(t, err)
	_, err = cached.StormTracks(context.Background(), domain.TrackQuery{})
	assert.Error(t, err)
	_, err = cached.StormTracks(context.Background(), domain.TrackQuery{})
	assert.Error(t, err)
	assert.Equal(t, 2, inner.trackCalls)
}

func TestCachedProvider_EmptyTracksCached(t *testing.T) {
	inner := &countingProvider{}
	cached := NewCachedProvider(inner, 10, observability.NewMetricsForTesting())
	q := domain.TrackQuery{Geo: domain.Geo{Lat: 48.1, Lon: 11.6}, RadiusKm: 1000, Range: domain.TimeRange{Start: 1951, End: 2020}}

	_, err := cached.StormTracks(context.Background(), q)
	require.NoError(t, err)
	_, err = cached.StormTracks(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.trackCalls, "no tracks is a valid answer")
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache[string](3)

	c.put("a", "A")
	c.put("b", "B")

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", result)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A")
	c.put("b", "B")
	c.put("c", "C") // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	result, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", result)

	result, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", result)
	assert.Equal(t, 2, c.len())
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A")
	c.put("b", "B")

	// Access "a" to promote it
	c.get("a")

	// Insert "c": should evict "b" (LRU), not "a"
	c.put("c", "C")

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A1")
	c.put("a", "A2")

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", result)
	assert.Equal(t, 1, c.len())
}
