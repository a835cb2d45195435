package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Climate data API configuration. When disabled, FixturePath must name a
	// YAML dataset written by cmd/genmock.
	ClimateAPIURL     string
	ClimateAPIToken   string
	ClimateAPIEnabled bool
	ClimateAPITimeout time.Duration
	FixturePath       string
	SeriesCacheSize   int

	// SQLitePath enables the persistence sink when set.
	SQLitePath       string
	HazardTablesFile string

	EvalWindowYears   int
	RelocationWorkers int

	// Scheduled re-scoring of a fixed portfolio; both or neither.
	RescoreCron   string
	PortfolioFile string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	apiTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("CLIMATE_API_TIMEOUT", "10s"))
	if err != nil || apiTimeout <= 0 {
		return nil, errors.New("invalid CLIMATE_API_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	window, err := parsePositiveInt("EVAL_WINDOW_YEARS", 10)
	if err != nil {
		return nil, err
	}
	workers, err := parsePositiveInt("RELOCATION_WORKERS", 8)
	if err != nil {
		return nil, err
	}

	apiURL := os.Getenv("CLIMATE_API_URL")
	apiEnabled := apiURL != ""
	if v := os.Getenv("CLIMATE_API_ENABLED"); v != "" {
		apiEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "risk-assessment-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "risk-assessment-results"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "climate-risk-engine"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		ClimateAPIURL:     apiURL,
		ClimateAPIToken:   os.Getenv("CLIMATE_API_TOKEN"),
		ClimateAPIEnabled: apiEnabled,
		ClimateAPITimeout: apiTimeout,
		FixturePath:       os.Getenv("FIXTURE_PATH"),
		SeriesCacheSize:   parseSeriesCacheSize(),

		SQLitePath:       os.Getenv("SQLITE_PATH"),
		HazardTablesFile: os.Getenv("HAZARD_TABLES_FILE"),

		EvalWindowYears:   window,
		RelocationWorkers: workers,

		RescoreCron:   os.Getenv("RESCORE_CRON"),
		PortfolioFile: os.Getenv("PORTFOLIO_FILE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.KafkaSourceTopic == "" {
		return errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if c.KafkaSinkTopic == "" {
		return errors.New("KAFKA_SINK_TOPIC is required")
	}
	if c.ClimateAPIEnabled && c.ClimateAPIURL == "" {
		return errors.New("CLIMATE_API_ENABLED is true but CLIMATE_API_URL is not set")
	}
	if !c.ClimateAPIEnabled && c.FixturePath == "" {
		return errors.New("FIXTURE_PATH is required when the climate API is disabled")
	}
	if (c.RescoreCron == "") != (c.PortfolioFile == "") {
		return errors.New("RESCORE_CRON and PORTFOLIO_FILE must be set together")
	}
	if c.RescoreCron != "" {
		if _, err := cron.ParseStandard(c.RescoreCron); err != nil {
			return fmt.Errorf("invalid RESCORE_CRON: %w", err)
		}
	}
	return nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseSeriesCacheSize() int {
	if s := os.Getenv("SERIES_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
