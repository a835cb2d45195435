// Command riskd consumes assessment requests from Kafka, scores each location
// across the nine physical climate hazards, and publishes per-hazard results
// to Kafka and, when SQLITE_PATH is set, to a local SQLite store.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/climate-risk-engine/internal/adapter/cache"
	"github.com/couchcryptid/climate-risk-engine/internal/adapter/climateapi"
	"github.com/couchcryptid/climate-risk-engine/internal/adapter/fixture"
	httpadapter "github.com/couchcryptid/climate-risk-engine/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/climate-risk-engine/internal/adapter/kafka"
	"github.com/couchcryptid/climate-risk-engine/internal/adapter/sqlite"
	"github.com/couchcryptid/climate-risk-engine/internal/assess"
	"github.com/couchcryptid/climate-risk-engine/internal/config"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/hazard"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/pipeline"
	"github.com/couchcryptid/climate-risk-engine/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger); err != nil {
		logger.Error("riskd failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tables, err := hazard.LoadConfig(cfg.HazardTablesFile)
	if err != nil {
		return err
	}
	registry, err := hazard.New(tables)
	if err != nil {
		return fmt.Errorf("build hazard registry: %w", err)
	}

	climate, attrs, err := dataSources(cfg, metrics, logger)
	if err != nil {
		return err
	}
	assessor := assess.New(registry, climate, attrs, cfg.EvalWindowYears, logger, metrics)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	sinks := []pipeline.Sink{{Name: "kafka", Loader: writer}}

	var store *sqlite.Store
	if cfg.SQLitePath != "" {
		store, err = sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return err
		}
		sinks = append(sinks, pipeline.Sink{Name: "sqlite", Loader: pipeline.NewUpsertLoader(store)})
	}
	loader := pipeline.NewFanOut(metrics, sinks...)

	p := pipeline.New(reader, pipeline.NewTransformer(assessor, logger), loader, logger, metrics, cfg.BatchSize)

	checks := httpadapter.Checks{"pipeline": p}
	if store != nil {
		checks["sqlite"] = store
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, checks, logger)

	var rescorer *scheduler.Rescorer
	if cfg.RescoreCron != "" {
		portfolio, err := scheduler.LoadPortfolio(cfg.PortfolioFile)
		if err != nil {
			return err
		}
		rescorer, err = scheduler.NewRescorer(portfolio, assessor, loader, cfg.RelocationWorkers, logger, metrics)
		if err != nil {
			return err
		}
		if err := rescorer.Start(ctx, cfg.RescoreCron); err != nil {
			return err
		}
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start assessment pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if rescorer != nil {
		rescorer.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("sqlite close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// dataSources selects the climate API (feature-flagged via CLIMATE_API_URL /
// CLIMATE_API_ENABLED) or the fixture dataset at FIXTURE_PATH.
func dataSources(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (domain.ClimateSeriesProvider, domain.LocationAttributeProvider, error) {
	if cfg.ClimateAPIEnabled {
		client := climateapi.NewClient(cfg.ClimateAPIURL, cfg.ClimateAPIToken, cfg.ClimateAPITimeout, metrics, logger)
		logger.Info("climate api enabled",
			"url", cfg.ClimateAPIURL, "cache_size", cfg.SeriesCacheSize, "timeout", cfg.ClimateAPITimeout)
		return cache.NewCachedProvider(client, cfg.SeriesCacheSize, metrics), client, nil
	}

	d, err := fixture.Load(cfg.FixturePath)
	if err != nil {
		return nil, nil, fmt.Errorf("load fixture: %w", err)
	}
	logger.Info("serving climate data from fixture", "path", cfg.FixturePath, "sites", len(d.Sites))
	return d, d, nil
}
