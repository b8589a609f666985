package geojson

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/couchcryptid/covid-dashboard-service/internal/observability"
)

// CachedProvider wraps a BoundaryProvider with an in-memory LRU cache keyed
// by region code.
type CachedProvider struct {
	inner   domain.BoundaryProvider
	cache   *lru.Cache[string, domain.Boundaries]
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a boundary provider.
func NewCachedProvider(inner domain.BoundaryProvider, maxEntries int, metrics *observability.Metrics) (*CachedProvider, error) {
	cache, err := lru.New[string, domain.Boundaries](maxEntries)
	if err != nil {
		return nil, err
	}
	return &CachedProvider{inner: inner, cache: cache, metrics: metrics}, nil
}

func (c *CachedProvider) Boundaries(ctx context.Context, code string) (domain.Boundaries, error) {
	key := strings.ToUpper(code)
	if b, ok := c.cache.Get(key); ok {
		c.metrics.BoundaryCache.WithLabelValues("hit").Inc()
		return b, nil
	}
	c.metrics.BoundaryCache.WithLabelValues("miss").Inc()

	b, err := c.inner.Boundaries(ctx, code)
	if err != nil {
		return b, err
	}
	c.cache.Add(key, b)
	return b, nil
}
