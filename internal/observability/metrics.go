package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// dataset pipelines and the query API.
type Metrics struct {
	RowsLoaded    *prometheus.GaugeVec     // labels: dataset
	LoadDuration  *prometheus.HistogramVec // labels: dataset
	LoadErrors    *prometheus.CounterVec   // labels: dataset, kind={load,schema}
	SnapshotReady *prometheus.GaugeVec     // labels: dataset
	MappingErrors *prometheus.CounterVec   // labels: dataset

	// Query metrics.
	Queries       *prometheus.CounterVec   // labels: dataset, view
	QueryDuration *prometheus.HistogramVec // labels: dataset, view
	EmptyResults  *prometheus.CounterVec   // labels: dataset, chart

	// Boundary metrics.
	BoundaryFetches  *prometheus.CounterVec // labels: outcome={success,error}
	BoundaryCache    *prometheus.CounterVec // labels: result={hit,miss}
	BoundaryDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates Metrics registered with reg. One-shot
// commands pass a private registry.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.RowsLoaded,
		m.LoadDuration,
		m.LoadErrors,
		m.SnapshotReady,
		m.MappingErrors,
		m.Queries,
		m.QueryDuration,
		m.EmptyResults,
		m.BoundaryFetches,
		m.BoundaryCache,
		m.BoundaryDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can build as many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_loaded",
			Help:      "Rows in the loaded dataset snapshot.",
		}, []string{"dataset"}),
		LoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of load, derive and map for a dataset.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"dataset"}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Fatal dataset load failures by kind.",
		}, []string{"dataset", "kind"}),
		SnapshotReady: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_ready",
			Help:      "1 when the dataset snapshot is built and queryable.",
		}, []string{"dataset"}),
		MappingErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mapping_errors_total",
			Help:      "Region mapping failures that disabled the choropleth.",
		}, []string{"dataset"}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Filter queries served by dataset and view.",
		}, []string{"dataset", "view"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Duration of a filter and chart recomputation.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"dataset", "view"}),
		EmptyResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_results_total",
			Help:      "Charts rendered as no data.",
		}, []string{"dataset", "chart"}),
		BoundaryFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boundary_fetches_total",
			Help:      "GeoJSON boundary fetches by outcome.",
		}, []string{"outcome"}),
		BoundaryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boundary_cache_total",
			Help:      "GeoJSON boundary cache lookups by result.",
		}, []string{"result"}),
		BoundaryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "boundary_fetch_duration_seconds",
			Help:      "GeoJSON boundary request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}
