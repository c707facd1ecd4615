package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-indicator-etl/internal/domain"
	"github.com/couchcryptid/climate-indicator-etl/internal/observability"
	"github.com/couchcryptid/climate-indicator-etl/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RawEvent
	index   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Observation, error) {
	if m.err != nil {
		return domain.Observation{}, m.err
	}
	return pipeline.NewTransformer(nil, slog.Default()).Transform(ctx, raw)
}

type mockLoader struct {
	loaded []domain.Observation
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, observations []domain.Observation) error {
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, observations...)
	return nil
}

type mockSink struct {
	ingested []domain.Observation
}

func (m *mockSink) Ingest(_ context.Context, obs domain.Observation) {
	m.ingested = append(m.ingested, obs)
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func newTestPipeline(ext pipeline.BatchExtractor, tfm pipeline.Transformer, ldr pipeline.BatchLoader, sink pipeline.ObservationSink) *pipeline.Pipeline {
	return pipeline.New(ext, tfm, ldr, sink, slog.Default(), newTestMetrics(), 10)
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	raw := makeRawEvent(t, "USW00023183", "tasmax", "2001-07-01", "46.1", "degC")

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{}
	sink := &mockSink{}

	p := newTestPipeline(ext, &mockTransformer{}, ldr, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, ldr.loaded, 1)

	obs := ldr.loaded[0]
	assert.Equal(t, "tasmax", obs.Variable)
	assert.Equal(t, "K", obs.Unit)
	assert.InDelta(t, 319.25, obs.Value, 0.01)
	assert.Equal(t, "good", obs.Quality)

	require.Len(t, sink.ingested, 1)
	assert.Equal(t, obs.ID, sink.ingested[0].ID)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no batches, will block
	ldr := &mockLoader{}

	p := newTestPipeline(ext, &mockTransformer{}, ldr, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_TransformError(t *testing.T) {
	raw := makeRawEvent(t, "USW00023183", "tasmax", "2001-07-01", "46.1", "degC")

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{}

	p := newTestPipeline(ext, &mockTransformer{err: errors.New("bad data")}, ldr, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_SkipsBadMessagesInBatch(t *testing.T) {
	good := makeRawEvent(t, "USW00023183", "tasmax", "2001-07-01", "46.1", "degC")
	bad := domain.RawEvent{Value: []byte("not json")}
	badCommitted := false
	bad.Commit = func(_ context.Context) error {
		badCommitted = true
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{bad, good}}}
	ldr := &mockLoader{}

	p := newTestPipeline(ext, &mockTransformer{}, ldr, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, ldr.loaded, 1)
	assert.True(t, badCommitted, "poison message offset should be committed")
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	commitCalled := false

	raw := makeRawEvent(t, "USW00023183", "tasmax", "2001-07-01", "46.1", "degC")
	raw.Topic = "raw-climate-readings"
	raw.Commit = func(_ context.Context) error {
		commitCalled = true
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{}

	p := newTestPipeline(ext, &mockTransformer{}, ldr, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.True(t, commitCalled)
}

func TestObservationTransformer_Transform(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() {
		domain.SetClock(nil)
	})

	raw := makeRawEvent(t, "CA006158350", "tas", "2001-01-15", "-12.5", "degC")

	tfm := pipeline.NewTransformer(nil, slog.Default())
	obs, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "CA006158350", obs.Station)
	assert.Equal(t, "tas", obs.Variable)
	assert.Equal(t, "K", obs.Unit)
	assert.InDelta(t, 260.65, obs.Value, 0.01)
	assert.Equal(t, time.Date(2001, 1, 15, 0, 0, 0, 0, time.UTC), obs.Time)
	assert.Equal(t, fakeClock.Now(), obs.ProcessedAt)
}

func TestObservationTransformer_MissingValue(t *testing.T) {
	raw := makeRawEvent(t, "CA006158350", "pr", "2001-01-15", "UNK", "mm/d")

	tfm := pipeline.NewTransformer(nil, slog.Default())
	obs, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(obs.Value))
	assert.Equal(t, "missing", obs.Quality)
}

func TestObservation_SerializeRoundtrip(t *testing.T) {
	obs := domain.Observation{
		ID:       "tasmax-0011223344556677",
		Station:  "USW00023183",
		Variable: "tasmax",
		Geo:      domain.Geo{Lat: 33.43, Lon: -112.0},
		Value:    319.25,
		Unit:     "K",
		Time:     time.Date(2001, 7, 1, 0, 0, 0, 0, time.UTC),
		Quality:  "good",
	}

	data, err := json.Marshal(obs)
	require.NoError(t, err)

	var roundtrip domain.Observation
	require.NoError(t, json.Unmarshal(data, &roundtrip))

	if diff := cmp.Diff(obs, roundtrip); diff != "" {
		t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

// --- helpers ---

func makeRawEvent(t *testing.T, station, variable, date, value, unit string) domain.RawEvent {
	t.Helper()
	data, err := json.Marshal(domain.RawReadingRecord{
		Station:  station,
		Variable: variable,
		Date:     date,
		Value:    value,
		Unit:     unit,
	})
	require.NoError(t, err)
	return domain.RawEvent{
		Key:   []byte(station),
		Value: data,
	}
}
