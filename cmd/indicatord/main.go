// Command indicatord runs the climate indicator ETL service: it consumes raw
// station readings from Kafka, normalizes them into canonical-unit
// observations, republishes them, and computes threshold indicators over
// completed periods into SQLite and an indicator topic.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/climate-indicator-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/climate-indicator-etl/internal/adapter/kafka"
	"github.com/couchcryptid/climate-indicator-etl/internal/adapter/stations"
	"github.com/couchcryptid/climate-indicator-etl/internal/catalog"
	"github.com/couchcryptid/climate-indicator-etl/internal/config"
	"github.com/couchcryptid/climate-indicator-etl/internal/domain"
	"github.com/couchcryptid/climate-indicator-etl/internal/engine"
	"github.com/couchcryptid/climate-indicator-etl/internal/observability"
	"github.com/couchcryptid/climate-indicator-etl/internal/pipeline"
	"github.com/couchcryptid/climate-indicator-etl/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	cat, err := loadCatalog(cfg)
	if err != nil {
		logger.Error("failed to load indicator catalog", "error", err, "path", cfg.CatalogPath)
		os.Exit(1)
	}
	logger.Info("indicator catalog loaded", "indicators", cat.Len())

	// Initialize station resolver (feature-flagged via STATION_ENABLED).
	var resolver domain.StationResolver
	if cfg.StationEnabled {
		metrics.StationEnabled.Set(1)
		client := stations.NewClient(cfg.StationAPIURL, cfg.StationAPIToken, cfg.StationTimeout, metrics, logger)
		resolver = stations.NewCachedResolver(client, cfg.StationCacheSize, metrics)
		logger.Info("station registry enabled", "url", cfg.StationAPIURL,
			"cache_size", cfg.StationCacheSize, "timeout", cfg.StationTimeout)
	} else {
		logger.Info("station registry disabled")
	}

	db, err := store.New(cfg.SQLitePath)
	if err != nil {
		logger.Error("failed to open indicator store", "error", err, "path", cfg.SQLitePath)
		os.Exit(1)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewObservationWriter(cfg, logger)
	indicatorWriter := kafkaadapter.NewIndicatorWriter(cfg, logger)
	transformer := pipeline.NewTransformer(resolver, logger)

	eng := engine.New(cat,
		[]engine.ValueSink{db, indicatorWriter},
		logger, metrics,
		cfg.EngineRetentionDays, cfg.EngineFlushInterval,
	)

	p := pipeline.New(reader, transformer, writer, eng, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, db, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start indicator engine.
	go func() {
		if err := eng.Run(ctx); err != nil {
			logger.Error("engine error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if err := indicatorWriter.Close(); err != nil {
		logger.Error("kafka indicator writer close error", "error", err)
	}
	if err := db.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.CatalogPath)
}
