package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/couchcryptid/covid-dashboard-service/internal/observability"
)

// ErrNotReady is returned by queries issued before the first successful load.
var ErrNotReady = errors.New("dataset snapshot not loaded")

// Extractor reads a whole dataset from its source.
type Extractor interface {
	Extract(ctx context.Context) (domain.Table, error)
}

// Option configures optional pipeline stages.
type Option func(*Pipeline)

// WithRegions enables the region mapping stage. Rows are mapped through
// regions using the value of column.
func WithRegions(regions domain.RegionTable, column string) Option {
	return func(p *Pipeline) {
		p.regions = regions
		p.regionColumn = column
	}
}

// WithCharts sets the chart set rendered for filter queries.
func WithCharts(charts ChartSet) Option {
	return func(p *Pipeline) {
		p.charts = charts
	}
}

// Pipeline loads one dataset, derives it once, and serves filter queries
// against the resulting immutable snapshot.
type Pipeline struct {
	dataset      string
	extractor    Extractor
	regions      domain.RegionTable
	regionColumn string
	charts       ChartSet
	logger       *slog.Logger
	metrics      *observability.Metrics
	snapshot     atomic.Pointer[Snapshot]
}

// New creates a Pipeline for the named dataset.
func New(dataset string, e Extractor, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		dataset:   dataset,
		extractor: e,
		charts:    CovidChartSet,
		logger:    logger.With("dataset", dataset),
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dataset returns the dataset name used in logs and metric labels.
func (p *Pipeline) Dataset() string {
	return p.dataset
}

// CheckReadiness returns nil once a snapshot has been published.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.snapshot.Load() == nil {
		return fmt.Errorf("%s: %w", p.dataset, ErrNotReady)
	}
	return nil
}

// Snapshot returns the current snapshot or ErrNotReady.
func (p *Pipeline) Snapshot() (*Snapshot, error) {
	s := p.snapshot.Load()
	if s == nil {
		return nil, ErrNotReady
	}
	return s, nil
}

// Run extracts the dataset, derives it, and publishes the snapshot. A load
// or schema failure is returned and leaves any previous snapshot in place.
// A region mapping failure is recorded on the snapshot and does not fail Run.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()
	p.logger.Info("dataset load started")

	table, err := p.extractor.Extract(ctx)
	if err != nil {
		p.metrics.LoadErrors.WithLabelValues(p.dataset, errorKind(err)).Inc()
		p.logger.Error("dataset load failed", "error", err)
		return err
	}

	snap := p.transform(table)
	if snap.MapErr != nil {
		p.metrics.MappingErrors.WithLabelValues(p.dataset).Inc()
		p.logger.Error("region mapping failed, choropleth disabled", "error", snap.MapErr)
	}

	p.snapshot.Store(snap)
	p.metrics.RowsLoaded.WithLabelValues(p.dataset).Set(float64(len(snap.Rows)))
	p.metrics.SnapshotReady.WithLabelValues(p.dataset).Set(1)
	p.metrics.LoadDuration.WithLabelValues(p.dataset).Observe(time.Since(start).Seconds())

	p.logger.Info("dataset snapshot ready",
		"rows", len(snap.Rows),
		"categories", len(snap.Categories),
		"min_date", snap.MinDate.Format(time.DateOnly),
		"max_date", snap.MaxDate.Format(time.DateOnly),
		"duration", time.Since(start),
	)
	return nil
}

func errorKind(err error) string {
	var schemaErr *domain.SchemaError
	if errors.As(err, &schemaErr) {
		return "schema"
	}
	return "load"
}
