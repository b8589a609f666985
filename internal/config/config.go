package config

import (
	"errors"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultGeoJSONURL is the Brazilian state boundary collection keyed by the
// two-letter state code ("sigla").
const DefaultGeoJSONURL = "https://raw.githubusercontent.com/codeforamerica/click_that_hood/master/public/data/brazil-states.geojson"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset sources. An empty TemperatureDataPath disables that dataset.
	CovidDataPath       string
	CovidRegionColumn   string
	TemperatureDataPath string
	CSVDelimiter        rune

	// GeoJSON boundary proxy configuration.
	GeoJSONURL       string
	GeoJSONEnabled   bool
	GeoJSONTimeout   time.Duration
	GeoJSONCacheSize int

	// Derived-row publishing, used by dashctl publish.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	geoTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("GEOJSON_TIMEOUT", "5s"))
	if err != nil || geoTimeout <= 0 {
		return nil, errors.New("invalid GEOJSON_TIMEOUT")
	}

	delimiter, err := parseDelimiter(sharedcfg.EnvOrDefault("CSV_DELIMITER", ","))
	if err != nil {
		return nil, err
	}

	geoURL := sharedcfg.EnvOrDefault("GEOJSON_URL", DefaultGeoJSONURL)
	geoEnabled := geoURL != ""
	if v := os.Getenv("GEOJSON_ENABLED"); v != "" {
		geoEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CovidDataPath:       sharedcfg.EnvOrDefault("COVID_DATA_PATH", "covid_19_data_brazil.csv"),
		CovidRegionColumn:   sharedcfg.EnvOrDefault("COVID_REGION_COLUMN", "Province/State"),
		TemperatureDataPath: os.Getenv("TEMPERATURE_DATA_PATH"),
		CSVDelimiter:        delimiter,

		GeoJSONURL:       geoURL,
		GeoJSONEnabled:   geoEnabled,
		GeoJSONTimeout:   geoTimeout,
		GeoJSONCacheSize: parseGeoJSONCacheSize(),

		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "covid-derived-rows"),
	}

	if cfg.CovidDataPath == "" {
		return nil, errors.New("COVID_DATA_PATH is required")
	}
	if cfg.GeoJSONEnabled && cfg.GeoJSONURL == "" {
		return nil, errors.New("GEOJSON_ENABLED is true but GEOJSON_URL is not set")
	}

	return cfg, nil
}

func parseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) || r == '"' || r == '\n' || r == '\r' {
		return 0, errors.New("invalid CSV_DELIMITER: must be a single character")
	}
	return r, nil
}

func parseGeoJSONCacheSize() int {
	if s := os.Getenv("GEOJSON_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 4
}
