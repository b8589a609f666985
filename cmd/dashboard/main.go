package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/covid-dashboard-service/internal/adapter/csvfile"
	"github.com/couchcryptid/covid-dashboard-service/internal/adapter/geojson"
	httpadapter "github.com/couchcryptid/covid-dashboard-service/internal/adapter/http"
	plotadapter "github.com/couchcryptid/covid-dashboard-service/internal/adapter/plot"
	"github.com/couchcryptid/covid-dashboard-service/internal/adapter/xlsx"
	"github.com/couchcryptid/covid-dashboard-service/internal/config"
	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/couchcryptid/covid-dashboard-service/internal/observability"
	"github.com/couchcryptid/covid-dashboard-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	covid := pipeline.New("covid",
		newExtractor(cfg.CovidDataPath, covidSchema(cfg), cfg, logger),
		logger, metrics,
		pipeline.WithRegions(domain.BrazilStates, cfg.CovidRegionColumn),
		pipeline.WithCharts(pipeline.CovidChartSet),
	)
	pipelines := []*pipeline.Pipeline{covid}

	var temperature *pipeline.Pipeline
	if cfg.TemperatureDataPath != "" {
		temperature = pipeline.New("temperature",
			newExtractor(cfg.TemperatureDataPath, domain.TemperatureSchema(), cfg, logger),
			logger, metrics,
			pipeline.WithCharts(pipeline.TemperatureChartSet),
		)
		pipelines = append(pipelines, temperature)
	} else {
		logger.Info("temperature dataset disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load every dataset concurrently; any fatal load error stops startup.
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range pipelines {
		g.Go(func() error { return p.Run(gctx) })
	}
	if err := g.Wait(); err != nil {
		logger.Error("dataset load failed", "error", err)
		os.Exit(1)
	}

	api := &httpadapter.API{
		Covid:    covid,
		Renderer: plotadapter.NewRenderer(),
		Logger:   logger,
	}
	if temperature != nil {
		api.Temperature = temperature
	}

	// Boundary proxy (feature-flagged via GEOJSON_ENABLED / GEOJSON_URL).
	if cfg.GeoJSONEnabled {
		client := geojson.NewClient(cfg.GeoJSONURL, cfg.GeoJSONTimeout, logger, metrics)
		cached, err := geojson.NewCachedProvider(client, cfg.GeoJSONCacheSize, metrics)
		if err != nil {
			logger.Error("invalid boundary cache", "error", err)
			os.Exit(1)
		}
		api.Boundaries = cached
		logger.Info("geojson boundaries enabled", "url", cfg.GeoJSONURL, "cache_size", cfg.GeoJSONCacheSize)
	} else {
		logger.Info("geojson boundaries disabled")
	}

	checkers := make([]sharedobs.ReadinessChecker, 0, len(pipelines))
	for _, p := range pipelines {
		checkers = append(checkers, p)
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.AllReady(checkers...), api, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

func covidSchema(cfg *config.Config) domain.Schema {
	schema := domain.CovidSchema()
	if cfg.CovidRegionColumn != schema.CategoryColumn {
		schema.LabelColumns = append(schema.LabelColumns, cfg.CovidRegionColumn)
	}
	return schema
}

func newExtractor(path string, schema domain.Schema, cfg *config.Config, logger *slog.Logger) pipeline.Extractor {
	if xlsx.IsWorkbook(path) {
		return xlsx.NewLoader(path, "", schema, logger)
	}
	return csvfile.NewLoader(path, schema, cfg.CSVDelimiter, logger)
}
