package geojson

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls int
	err   error
}

func (m *countingProvider) Boundaries(_ context.Context, code string) (domain.Boundaries, error) {
	m.calls++
	if m.err != nil {
		return domain.Boundaries{}, m.err
	}
	return domain.Boundaries{Code: code, Features: 1, GeoJSON: []byte(`{"type":"FeatureCollection","features":[]}`)}, nil
}

func TestCachedProvider_Hit(t *testing.T) {
	inner := &countingProvider{}
	metrics := testMetrics()
	cached, err := NewCachedProvider(inner, 4, metrics)
	require.NoError(t, err)

	_, err = cached.Boundaries(context.Background(), "SP")
	require.NoError(t, err)
	b, err := cached.Boundaries(context.Background(), "sp")
	require.NoError(t, err)

	assert.Equal(t, "SP", b.Code)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BoundaryCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BoundaryCache.WithLabelValues("miss")))
}

func TestCachedProvider_Eviction(t *testing.T) {
	inner := &countingProvider{}
	cached, err := NewCachedProvider(inner, 2, testMetrics())
	require.NoError(t, err)

	ctx := context.Background()
	for _, code := range []string{"SP", "BA", "RJ", "SP"} {
		_, err := cached.Boundaries(ctx, code)
		require.NoError(t, err)
	}

	assert.Equal(t, 4, inner.calls, "SP was evicted by RJ")
}

func TestCachedProvider_ErrorsNotCached(t *testing.T) {
	inner := &countingProvider{err: errors.New("upstream down")}
	cached, err := NewCachedProvider(inner, 4, testMetrics())
	require.NoError(t, err)

	_, err = cached.Boundaries(context.Background(), "")
	require.Error(t, err)
	_, err = cached.Boundaries(context.Background(), "")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestNewCachedProvider_InvalidSize(t *testing.T) {
	_, err := NewCachedProvider(&countingProvider{}, 0, testMetrics())
	require.Error(t, err)
}
