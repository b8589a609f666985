// Package cmd contains the dashctl commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/covid-dashboard-service/internal/adapter/csvfile"
	"github.com/couchcryptid/covid-dashboard-service/internal/adapter/xlsx"
	"github.com/couchcryptid/covid-dashboard-service/internal/config"
	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/couchcryptid/covid-dashboard-service/internal/observability"
	"github.com/couchcryptid/covid-dashboard-service/internal/pipeline"
)

const (
	datasetCovid       = "covid"
	datasetTemperature = "temperature"
)

var (
	covidPath       string
	temperaturePath string
	sheet           string
	verbose         bool
	cfg             *config.Config
	logger          *slog.Logger
	version         = "dev"
)

// Filter flags shared by the query commands.
var (
	filterState string
	filterStart string
	filterEnd   string
	filterYear  int
)

var rootCmd = &cobra.Command{
	Use:   "dashctl",
	Short: "COVID-19 Brazil dashboard data tool",
	Long: `dashctl loads the dashboard datasets offline and runs the same
derive, filter and map stages the dashboard service uses.

Example usage:
  dashctl validate --covid covid_19_data_brazil.csv
  dashctl summary --state "Sao Paulo" --start 2020-03-01 --end 2020-06-30
  dashctl export --out view.xlsx --state Bahia
  dashctl chart --out-dir charts/
  dashctl publish --brokers localhost:9092 --topic covid-derived-rows
  dashctl genmock --days 60 --out mock.csv`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&covidPath, "covid", "", "COVID-19 dataset, .csv or .xlsx (default $COVID_DATA_PATH)")
	rootCmd.PersistentFlags().StringVar(&temperaturePath, "temperature", "", "city temperature dataset (default $TEMPERATURE_DATA_PATH)")
	rootCmd.PersistentFlags().StringVar(&sheet, "sheet", "", "worksheet to read from .xlsx sources (default first sheet)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the dashctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "dashctl "+version)
		},
	})
}

// initConfig reads the environment and applies flag overrides.
func initConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if covidPath != "" {
		cfg.CovidDataPath = covidPath
	}
	if temperaturePath != "" {
		cfg.TemperatureDataPath = temperaturePath
	}

	level := slog.LevelInfo
	if verbose || cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	logger.Debug("configuration loaded",
		"covid", cfg.CovidDataPath,
		"temperature", cfg.TemperatureDataPath,
		"region_column", cfg.CovidRegionColumn,
	)
	return nil
}

// addFilterFlags registers the selection flags on a query command.
func addFilterFlags(c *cobra.Command) {
	c.Flags().StringVar(&filterState, "state", domain.AllCategories, "state or city to select (\""+domain.AllCategories+"\" selects all)")
	c.Flags().StringVar(&filterStart, "start", "", "first day, YYYY-MM-DD (default dataset start)")
	c.Flags().StringVar(&filterEnd, "end", "", "last day, YYYY-MM-DD (default dataset end)")
	c.Flags().IntVar(&filterYear, "year", 0, "restrict to one year")
}

func filterSpec() (domain.FilterSpec, error) {
	spec := domain.FilterSpec{Category: filterState, Year: filterYear}
	var err error
	if filterStart != "" {
		if spec.Start, err = time.Parse(time.DateOnly, filterStart); err != nil {
			return spec, fmt.Errorf("invalid --start %q: want YYYY-MM-DD", filterStart)
		}
	}
	if filterEnd != "" {
		if spec.End, err = time.Parse(time.DateOnly, filterEnd); err != nil {
			return spec, fmt.Errorf("invalid --end %q: want YYYY-MM-DD", filterEnd)
		}
	}
	return spec, nil
}

// loadDataset builds and runs the pipeline for the named dataset. Metrics go
// to a private registry since the process exits after one command.
func loadDataset(ctx context.Context, dataset string) (*pipeline.Pipeline, error) {
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())

	var p *pipeline.Pipeline
	switch dataset {
	case datasetCovid:
		schema := domain.CovidSchema()
		if cfg.CovidRegionColumn != schema.CategoryColumn {
			schema.LabelColumns = append(schema.LabelColumns, cfg.CovidRegionColumn)
		}
		p = pipeline.New(dataset, newExtractor(cfg.CovidDataPath, schema), logger, metrics,
			pipeline.WithRegions(domain.BrazilStates, cfg.CovidRegionColumn),
			pipeline.WithCharts(pipeline.CovidChartSet),
		)
	case datasetTemperature:
		if cfg.TemperatureDataPath == "" {
			return nil, fmt.Errorf("temperature dataset not configured: set --temperature or TEMPERATURE_DATA_PATH")
		}
		p = pipeline.New(dataset, newExtractor(cfg.TemperatureDataPath, domain.TemperatureSchema()), logger, metrics,
			pipeline.WithCharts(pipeline.TemperatureChartSet),
		)
	default:
		return nil, fmt.Errorf("unknown dataset %q: want %s or %s", dataset, datasetCovid, datasetTemperature)
	}

	if err := p.Run(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func newExtractor(path string, schema domain.Schema) pipeline.Extractor {
	if xlsx.IsWorkbook(path) {
		return xlsx.NewLoader(path, sheet, schema, logger)
	}
	return csvfile.NewLoader(path, schema, cfg.CSVDelimiter, logger)
}
