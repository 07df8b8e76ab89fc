package mapbox

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/heat-load-validator/internal/domain"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls  int
	result domain.GeocodingResult
	err    error
}

func (m *countingGeocoder) ForwardGeocode(_ context.Context, _ string) (domain.GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{Lat: 42.37, Lon: -71.11, PlaceName: "Elm Street", FormattedAddress: "12 Elm Street, Cambridge"},
	}
	metrics := testMetrics()
	cached := NewCachedGeocoder(inner, 10, metrics)

	r1, err := cached.ForwardGeocode(context.Background(), "12 Elm St, Cambridge, MA")
	require.NoError(t, err)
	assert.Equal(t, "Elm Street", r1.PlaceName)

	r2, err := cached.ForwardGeocode(context.Background(), "12  ELM ST, cambridge, ma ")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")))
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, _ = cached.ForwardGeocode(context.Background(), "nowhere")
	_, _ = cached.ForwardGeocode(context.Background(), "nowhere")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("timeout")}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, err := cached.ForwardGeocode(context.Background(), "12 Elm St")
	require.Error(t, err)
	_, err = cached.ForwardGeocode(context.Background(), "12 Elm St")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, cached.cache.len())
}

// --- LRU tests ---

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", domain.GeocodingResult{PlaceName: "A"})
	c.put("b", domain.GeocodingResult{PlaceName: "B"})
	c.put("c", domain.GeocodingResult{PlaceName: "C"})

	_, ok := c.get("a")
	assert.False(t, ok, "a should be evicted")

	r, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", r.PlaceName)

	r, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", r.PlaceName)
}

func TestLRUCache_AccessRefreshes(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", domain.GeocodingResult{PlaceName: "A"})
	c.put("b", domain.GeocodingResult{PlaceName: "B"})

	c.get("a")
	c.put("c", domain.GeocodingResult{PlaceName: "C"})

	_, ok := c.get("a")
	assert.True(t, ok, "a should survive since it was recently accessed")
	_, ok = c.get("b")
	assert.False(t, ok, "b should be evicted as least recently used")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", domain.GeocodingResult{PlaceName: "old"})
	c.put("a", domain.GeocodingResult{PlaceName: "new"})

	r, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "new", r.PlaceName)
	assert.Equal(t, 1, c.len())
}

func TestLRUCache_Bounded(t *testing.T) {
	c := newLRUCache(5)
	for i := 0; i < 50; i++ {
		c.put(fmt.Sprintf("k%d", i), domain.GeocodingResult{})
	}
	assert.Equal(t, 5, c.len())
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "12 elm st, cambridge, ma", cacheKey("  12 Elm   St, Cambridge, MA "))
}
