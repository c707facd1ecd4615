package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// observation pipeline and the indicator engine.
type Metrics struct {
	ObservationsConsumed prometheus.Counter
	ObservationsProduced prometheus.Counter
	TransformErrors      prometheus.Counter
	PipelineRunning      prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Indicator engine metrics.
	IndicatorsComputed   *prometheus.CounterVec // labels: indicator
	IndicatorErrors      *prometheus.CounterVec // labels: indicator
	EngineBufferedSeries prometheus.Gauge
	EngineDroppedStale   prometheus.Counter
	EngineFlushDuration  prometheus.Histogram
	UnitErrors           prometheus.Counter

	// Station registry metrics.
	StationLookups     *prometheus.CounterVec // labels: outcome={success,error,not_found}
	StationCache       *prometheus.CounterVec // labels: result={hit,miss}
	StationAPIDuration prometheus.Histogram
	StationEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ObservationsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "observations_consumed_total",
			Help:      "Total readings read from the source topic.",
		}),
		ObservationsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "observations_produced_total",
			Help:      "Total normalized observations written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "transform_errors_total",
			Help:      "Total transformation failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_etl",
			Name:      "batch_size",
			Help:      "Number of readings per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		IndicatorsComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "indicators_computed_total",
			Help:      "Indicator values computed, by indicator name.",
		}, []string{"indicator"}),
		IndicatorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "indicator_errors_total",
			Help:      "Indicator computation failures, by indicator name.",
		}, []string{"indicator"}),
		EngineBufferedSeries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "engine_buffered_series",
			Help:      "Number of per-station series currently buffered by the engine.",
		}),
		EngineDroppedStale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "engine_dropped_stale_total",
			Help:      "Observations dropped for falling outside the retention window.",
		}),
		EngineFlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_etl",
			Name:      "engine_flush_duration_seconds",
			Help:      "Duration of an indicator engine flush.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		UnitErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "unit_errors_total",
			Help:      "Observations skipped because their unit could not be parsed or converted.",
		}),
		StationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "station_lookups_total",
			Help:      "Station registry lookups by outcome.",
		}, []string{"outcome"}),
		StationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "station_cache_total",
			Help:      "Station cache lookups by result.",
		}, []string{"result"}),
		StationAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_etl",
			Name:      "station_api_duration_seconds",
			Help:      "Station registry request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		StationEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "station_enabled",
			Help:      "1 when station registry enrichment is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.ObservationsConsumed,
		m.ObservationsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.IndicatorsComputed,
		m.IndicatorErrors,
		m.EngineBufferedSeries,
		m.EngineDroppedStale,
		m.EngineFlushDuration,
		m.UnitErrors,
		m.StationLookups,
		m.StationCache,
		m.StationAPIDuration,
		m.StationEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ObservationsConsumed:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_etl", Name: "observations_consumed_total"}),
		ObservationsProduced:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_etl", Name: "observations_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_etl", Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "climate_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "climate_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "climate_etl", Name: "batch_processing_duration_seconds"}),
		IndicatorsComputed:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_etl", Name: "indicators_computed_total"}, []string{"indicator"}),
		IndicatorErrors:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_etl", Name: "indicator_errors_total"}, []string{"indicator"}),
		EngineBufferedSeries:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "climate_etl", Name: "engine_buffered_series"}),
		EngineDroppedStale:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_etl", Name: "engine_dropped_stale_total"}),
		EngineFlushDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "climate_etl", Name: "engine_flush_duration_seconds"}),
		UnitErrors:              prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_etl", Name: "unit_errors_total"}),
		StationLookups:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_etl", Name: "station_lookups_total"}, []string{"outcome"}),
		StationCache:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_etl", Name: "station_cache_total"}, []string{"result"}),
		StationAPIDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "climate_etl", Name: "station_api_duration_seconds"}),
		StationEnabled:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "climate_etl", Name: "station_enabled"}),
	}
}
