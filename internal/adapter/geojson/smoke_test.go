//go:build geojson

package geojson

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/covid-dashboard-service/internal/config"
	"github.com/couchcryptid/covid-dashboard-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests fetch the real boundary collection over the network.
// Run with: go test -tags=geojson ./internal/adapter/geojson/ -v -count=1

func smokeClient() *Client {
	return NewClient(config.DefaultGeoJSONURL, 10*time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
}

func TestSmoke_AllStates(t *testing.T) {
	b, err := smokeClient().Boundaries(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 27, b.Features)
}

func TestSmoke_SaoPaulo(t *testing.T) {
	b, err := smokeClient().Boundaries(context.Background(), "SP")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Features)
}
