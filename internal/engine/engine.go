// Package engine accumulates normalized observations into per-station daily
// series and computes catalog indicators over completed resampling periods.
//
// A period is considered complete once the buffer holds an observation dated
// at or after the period's end; indicator values for a (indicator, station)
// pair are emitted at most once per period start, and their deterministic IDs
// make downstream delivery idempotent on top of that.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/couchcryptid/climate-indicator-etl/internal/catalog"
	"github.com/couchcryptid/climate-indicator-etl/internal/domain"
	"github.com/couchcryptid/climate-indicator-etl/internal/observability"
	"github.com/couchcryptid/climate-indicator-etl/internal/series"
	"github.com/couchcryptid/climate-indicator-etl/internal/units"
)

// ValueSink receives computed indicator values. The SQLite store and the
// Kafka indicator writer both implement this.
type ValueSink interface {
	SaveIndicatorValues(ctx context.Context, values []domain.IndicatorValue) error
}

type seriesKey struct {
	Station  string
	Variable string
}

// buffer holds one station-variable daily series plus emission bookkeeping.
type buffer struct {
	byDay  map[time.Time]float64
	unit   units.Unit
	latest time.Time

	// lastEmitted tracks, per indicator, the most recent period start
	// already emitted, so a flush only publishes newly completed periods.
	lastEmitted map[string]time.Time
}

// Engine is the indicator computation engine.
type Engine struct {
	catalog   *catalog.Catalog
	sinks     []ValueSink
	logger    *slog.Logger
	metrics   *observability.Metrics
	retention time.Duration
	interval  time.Duration

	mu      sync.Mutex
	buffers map[seriesKey]*buffer
}

// New creates an Engine computing the given catalog. retentionDays bounds
// how far back observations are buffered; interval is the periodic flush
// cadence for Run.
func New(cat *catalog.Catalog, sinks []ValueSink, logger *slog.Logger, metrics *observability.Metrics, retentionDays int, interval time.Duration) *Engine {
	return &Engine{
		catalog:   cat,
		sinks:     sinks,
		logger:    logger,
		metrics:   metrics,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		interval:  interval,
		buffers:   make(map[seriesKey]*buffer),
	}
}

// Ingest adds a normalized observation to its station-variable buffer.
// Only "good" readings of recognized variables are buffered; observations
// older than the retention window relative to the buffer's newest day are
// dropped.
func (e *Engine) Ingest(_ context.Context, obs domain.Observation) {
	if obs.Quality != "good" || obs.Variable == "" {
		return
	}
	u, err := units.ParseUnit(obs.Unit)
	if err != nil {
		e.metrics.UnitErrors.Inc()
		e.logger.Warn("observation with unparseable unit skipped",
			"observation_id", obs.ID, "unit", obs.Unit)
		return
	}

	day := obs.Time.UTC().Truncate(24 * time.Hour)

	e.mu.Lock()
	defer e.mu.Unlock()

	k := seriesKey{Station: obs.Station, Variable: obs.Variable}
	b, ok := e.buffers[k]
	if !ok {
		b = &buffer{
			byDay:       make(map[time.Time]float64),
			unit:        u,
			lastEmitted: make(map[string]time.Time),
		}
		e.buffers[k] = b
		e.metrics.EngineBufferedSeries.Set(float64(len(e.buffers)))
	} else if u != b.unit {
		// The buffer's unit is fixed by its first observation; align later
		// readings that arrive in a different unit.
		v, err := units.ConvertValue(obs.Value, u, b.unit)
		if err != nil {
			e.metrics.UnitErrors.Inc()
			e.logger.Warn("observation unit incompatible with buffer",
				"observation_id", obs.ID, "unit", obs.Unit, "buffer_unit", b.unit.Symbol)
			return
		}
		obs.Value = v
	}

	if !b.latest.IsZero() && day.Before(b.latest.Add(-e.retention)) {
		e.metrics.EngineDroppedStale.Inc()
		return
	}

	b.byDay[day] = obs.Value
	if day.After(b.latest) {
		b.latest = day
		b.prune(e.retention)
	}
}

// prune drops buffered days older than the retention window.
func (b *buffer) prune(retention time.Duration) {
	cutoff := b.latest.Add(-retention)
	for day := range b.byDay {
		if day.Before(cutoff) {
			delete(b.byDay, day)
		}
	}
}

// Run flushes on the configured interval until the context is cancelled,
// then performs a final flush.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final flush publishes periods completed by the last readings.
			flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			e.Flush(flushCtx)
			return nil
		case <-ticker.C:
			e.Flush(ctx)
		}
	}
}

// Flush computes every applicable catalog indicator over newly completed
// periods and delivers the values to all sinks. The emission watermark only
// advances when every sink accepted the batch, so a sink failure leaves the
// periods pending and the next flush recomputes and redelivers them; the
// values' deterministic IDs keep the redelivery idempotent for sinks that
// already stored them.
func (e *Engine) Flush(ctx context.Context) {
	start := time.Now()
	values, marks := e.collect()
	e.metrics.EngineFlushDuration.Observe(time.Since(start).Seconds())

	if len(values) == 0 {
		return
	}
	delivered := true
	for _, sink := range e.sinks {
		if err := sink.SaveIndicatorValues(ctx, values); err != nil {
			delivered = false
			e.logger.Error("indicator sink failed", "error", err, "values", len(values))
		}
	}
	if !delivered {
		return
	}
	e.commit(marks)
	e.logger.Info("indicator flush complete", "values", len(values))
}

// emitMark records the newest period start produced for one indicator of one
// station-variable buffer during a collect pass.
type emitMark struct {
	key       seriesKey
	indicator string
	period    time.Time
}

// collect walks all buffers under the lock and returns the values past each
// buffer's watermark, plus the watermark updates to apply once delivered.
func (e *Engine) collect() ([]domain.IndicatorValue, []emitMark) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []domain.IndicatorValue
	var marks []emitMark
	for k, b := range e.buffers {
		s, err := b.toSeries()
		if err != nil {
			e.logger.Error("buffer to series failed", "station", k.Station, "variable", k.Variable, "error", err)
			continue
		}
		for _, ind := range e.catalog.ForVariable(k.Variable) {
			values, mark := e.computeIndicator(ind, k, b, s)
			out = append(out, values...)
			if !mark.period.IsZero() {
				marks = append(marks, mark)
			}
		}
	}
	return out, marks
}

// commit advances the emission watermarks after a fully delivered flush.
func (e *Engine) commit(marks []emitMark) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, m := range marks {
		b, ok := e.buffers[m.key]
		if !ok {
			continue
		}
		if last, ok := b.lastEmitted[m.indicator]; !ok || m.period.After(last) {
			b.lastEmitted[m.indicator] = m.period
		}
	}
}

// computeIndicator evaluates one indicator over a buffer and returns values
// for completed, not-yet-emitted periods along with the watermark to commit
// once they are delivered.
func (e *Engine) computeIndicator(ind catalog.Indicator, k seriesKey, b *buffer, s *series.Series) ([]domain.IndicatorValue, emitMark) {
	mark := emitMark{key: k, indicator: ind.Name}

	freq, err := series.ParseFreq(ind.Freq)
	if err != nil {
		e.metrics.IndicatorErrors.WithLabelValues(ind.Name).Inc()
		return nil, mark
	}

	result, err := ind.Apply(s)
	if err != nil {
		e.metrics.IndicatorErrors.WithLabelValues(ind.Name).Inc()
		e.logger.Warn("indicator computation failed",
			"indicator", ind.Name, "station", k.Station, "error", err)
		return nil, mark
	}

	counts := periodCounts(s, freq)

	var out []domain.IndicatorValue
	for i, periodStart := range result.Times {
		if b.latest.Before(freq.PeriodEnd(periodStart)) {
			continue // period still open
		}
		if last, ok := b.lastEmitted[ind.Name]; ok && !periodStart.After(last) {
			continue
		}
		out = append(out, domain.NewIndicatorValue(
			ind.Name, k.Station, k.Variable, periodStart,
			result.Values[i], result.Attrs.Units.Symbol, result.Attrs.StandardName,
			counts[periodStart],
		))
		if periodStart.After(mark.period) {
			mark.period = periodStart
		}
		e.metrics.IndicatorsComputed.WithLabelValues(ind.Name).Inc()
	}
	return out, mark
}

// periodCounts returns the number of buffered observations per period start.
func periodCounts(s *series.Series, freq series.Freq) map[time.Time]int {
	counts := make(map[time.Time]int)
	for _, t := range s.Times {
		counts[freq.PeriodStart(t)]++
	}
	return counts
}

// toSeries renders the buffer's day map as an ordered series.
func (b *buffer) toSeries() (*series.Series, error) {
	times := make([]time.Time, 0, len(b.byDay))
	for day := range b.byDay {
		times = append(times, day)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	values := make([]float64, len(times))
	for i, day := range times {
		values[i] = b.byDay[day]
	}
	return series.New(times, values, series.Attrs{Units: b.unit})
}
