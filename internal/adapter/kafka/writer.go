package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/climate-indicator-etl/internal/config"
	"github.com/couchcryptid/climate-indicator-etl/internal/domain"
)

// ObservationWriter produces normalized observations to the sink topic.
// It implements pipeline.BatchLoader.
type ObservationWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewObservationWriter creates a Kafka producer for the configured sink topic.
func NewObservationWriter(cfg *config.Config, logger *slog.Logger) *ObservationWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &ObservationWriter{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple observations to the sink
// topic in a single WriteMessages call for efficiency.
func (w *ObservationWriter) LoadBatch(ctx context.Context, observations []domain.Observation) error {
	if len(observations) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(observations))
	for i := range observations {
		msg, err := serializeObservation(observations[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *ObservationWriter) Close() error {
	return w.writer.Close()
}

// serializeObservation marshals an Observation into a Kafka message.
func serializeObservation(obs domain.Observation) (kafkago.Message, error) {
	data, err := json.Marshal(obs)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(obs.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "variable", Value: []byte(obs.Variable)},
			{Key: "processed_at", Value: []byte(obs.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}

// IndicatorWriter publishes computed indicator values to the indicator
// topic. It implements engine.ValueSink.
type IndicatorWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewIndicatorWriter creates a Kafka producer for the configured indicator topic.
func NewIndicatorWriter(cfg *config.Config, logger *slog.Logger) *IndicatorWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaIndicatorTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &IndicatorWriter{writer: w, logger: logger}
}

// SaveIndicatorValues publishes the given values in one WriteMessages call.
// Keys are the values' deterministic IDs, so a compacted topic keeps exactly
// one message per (indicator, station, period).
func (w *IndicatorWriter) SaveIndicatorValues(ctx context.Context, values []domain.IndicatorValue) error {
	if len(values) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(values))
	for i := range values {
		msg, err := serializeIndicatorValue(values[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *IndicatorWriter) Close() error {
	return w.writer.Close()
}

// serializeIndicatorValue marshals an IndicatorValue into a Kafka message.
func serializeIndicatorValue(v domain.IndicatorValue) (kafkago.Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize indicator value: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(v.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "indicator", Value: []byte(v.Indicator)},
			{Key: "computed_at", Value: []byte(v.ComputedAt.Format(time.RFC3339))},
		},
	}, nil
}
