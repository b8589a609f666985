package geojson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/couchcryptid/covid-dashboard-service/internal/observability"
)

// CodeProperty is the feature property holding the two-letter region code.
const CodeProperty = "sigla"

// MaxBodyBytes caps a boundary collection response.
const MaxBodyBytes = 32 << 20

// Client implements domain.BoundaryProvider by fetching a GeoJSON
// FeatureCollection over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
	maxBody    int64
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a boundary client for the collection at url.
func NewClient(url string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBody: MaxBodyBytes,
		metrics: metrics,
		logger:  logger,
	}
}

// Boundaries fetches the collection and keeps the features whose code
// property equals code. An empty code keeps all features.
func (c *Client) Boundaries(ctx context.Context, code string) (domain.Boundaries, error) {
	start := time.Now()
	body, err := c.fetch(ctx)
	c.metrics.BoundaryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.BoundaryFetches.WithLabelValues("error").Inc()
		return domain.Boundaries{}, err
	}
	c.metrics.BoundaryFetches.WithLabelValues("success").Inc()

	b, err := selectFeatures(body, code)
	if err != nil {
		return domain.Boundaries{}, err
	}
	c.logger.Debug("boundaries fetched", "code", code, "features", b.Features)
	return b, nil
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("boundary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("boundary source error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read boundary response: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("read boundary response: body exceeds %d bytes", c.maxBody)
	}
	return body, nil
}

// selectFeatures decodes a FeatureCollection and re-encodes the features
// matching code.
func selectFeatures(body []byte, code string) (domain.Boundaries, error) {
	var fc featureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return domain.Boundaries{}, fmt.Errorf("decode boundaries: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return domain.Boundaries{}, fmt.Errorf("decode boundaries: unexpected GeoJSON type %q", fc.Type)
	}

	kept := make([]json.RawMessage, 0, len(fc.Features))
	for _, raw := range fc.Features {
		if code != "" {
			var f feature
			if err := json.Unmarshal(raw, &f); err != nil {
				return domain.Boundaries{}, fmt.Errorf("decode boundary feature: %w", err)
			}
			sigla, _ := f.Properties[CodeProperty].(string)
			if !strings.EqualFold(sigla, code) {
				continue
			}
		}
		kept = append(kept, raw)
	}
	if code != "" && len(kept) == 0 {
		return domain.Boundaries{}, fmt.Errorf("%w: %s", domain.ErrBoundaryNotFound, code)
	}

	out, err := json.Marshal(featureCollection{Type: fc.Type, Features: kept})
	if err != nil {
		return domain.Boundaries{}, fmt.Errorf("encode boundaries: %w", err)
	}
	return domain.Boundaries{Code: code, Features: len(kept), GeoJSON: out}, nil
}

// GeoJSON wire types.

type featureCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

type feature struct {
	Properties map[string]any `json:"properties"`
}
