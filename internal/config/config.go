// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers        []string
	KafkaSourceTopic    string
	KafkaSinkTopic      string
	KafkaIndicatorTopic string
	KafkaGroupID        string
	HTTPAddr            string
	LogLevel            string
	LogFormat           string
	ShutdownTimeout     time.Duration

	BatchSize int

	// Indicator engine configuration.
	CatalogPath         string // empty means the built-in catalog
	SQLitePath          string
	EngineRetentionDays int
	EngineFlushInterval time.Duration

	// Station registry configuration.
	StationAPIURL    string
	StationAPIToken  string
	StationEnabled   bool
	StationTimeout   time.Duration
	StationCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	batchSize, err := parsePositiveInt("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}

	retentionDays, err := parsePositiveInt("ENGINE_RETENTION_DAYS", 1100)
	if err != nil {
		return nil, err
	}

	flushInterval, err := parseDuration("ENGINE_FLUSH_INTERVAL", "30s")
	if err != nil {
		return nil, err
	}

	stationTimeout, err := parseDuration("STATION_API_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	stationCacheSize, err := parsePositiveInt("STATION_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	stationToken := os.Getenv("STATION_API_TOKEN")
	stationEnabled := stationToken != ""
	if v := os.Getenv("STATION_ENABLED"); v != "" {
		stationEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:        parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:    envOrDefault("KAFKA_SOURCE_TOPIC", "raw-climate-readings"),
		KafkaSinkTopic:      envOrDefault("KAFKA_SINK_TOPIC", "normalized-observations"),
		KafkaIndicatorTopic: envOrDefault("KAFKA_INDICATOR_TOPIC", "climate-indicators"),
		KafkaGroupID:        envOrDefault("KAFKA_GROUP_ID", "climate-indicator-etl"),
		HTTPAddr:            envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:            envOrDefault("LOG_LEVEL", "info"),
		LogFormat:           envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:     shutdownTimeout,
		BatchSize:           batchSize,

		CatalogPath:         os.Getenv("CATALOG_PATH"),
		SQLitePath:          envOrDefault("SQLITE_PATH", "data/indicators.db"),
		EngineRetentionDays: retentionDays,
		EngineFlushInterval: flushInterval,

		StationAPIURL:    envOrDefault("STATION_API_URL", "https://registry.example.com"),
		StationAPIToken:  stationToken,
		StationEnabled:   stationEnabled,
		StationTimeout:   stationTimeout,
		StationCacheSize: stationCacheSize,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.KafkaIndicatorTopic == "" {
		return nil, errors.New("KAFKA_INDICATOR_TOPIC is required")
	}
	if cfg.StationEnabled && cfg.StationAPIToken == "" {
		return nil, errors.New("STATION_ENABLED is true but STATION_API_TOKEN is not set")
	}

	return cfg, nil
}

// envOrDefault returns the environment variable's value, or def when unset.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
