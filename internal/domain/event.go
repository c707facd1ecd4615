package domain

import (
	"context"
	"encoding/json"
	"math"
	"time"
)

// RawReadingRecord represents the flat JSON structure produced by the
// collector. All fields are strings because the collector passes source
// columns through untouched.
type RawReadingRecord struct {
	Station   string `json:"Station"`
	Variable  string `json:"Variable"` // CF short name, injected by the collector
	Date      string `json:"Date"`     // YYYY-MM-DD
	Value     string `json:"Value"`
	Unit      string `json:"Unit"`
	QCFlag    string `json:"QC_Flag"` // GHCN single-character quality flag
	Lat       string `json:"Lat"`
	Lon       string `json:"Lon"`
	Elevation string `json:"Elevation"` // meters above sea level
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`
}

// Observation is the domain-rich representation after parsing and unit
// normalization. Value is NaN for missing readings.
type Observation struct {
	ID        string    `json:"id"`
	Station   string    `json:"station"`
	Variable  string    `json:"variable"`
	Geo       Geo       `json:"geo,omitempty"`
	Elevation float64   `json:"elevation,omitempty"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Time      time.Time `json:"time"`
	Quality   string    `json:"quality,omitempty"` // good, suspect, missing
	QCFlag    string    `json:"qc_flag,omitempty"`

	// Station registry enrichment fields.
	StationName   string `json:"station_name,omitempty"`
	Network       string `json:"network,omitempty"`
	StationSource string `json:"station_source,omitempty"` // "registry", "original", "failed"

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}

// MarshalJSON encodes a NaN value as null, so missing readings still
// serialize; encoding/json rejects NaN outright.
func (o Observation) MarshalJSON() ([]byte, error) {
	type alias Observation
	if !math.IsNaN(o.Value) {
		return json.Marshal(alias(o))
	}
	wrapped := struct {
		alias
		Value *float64 `json:"value"`
	}{alias: alias(o)}
	return json.Marshal(wrapped)
}

// UnmarshalJSON treats a null value as NaN, mirroring MarshalJSON.
func (o *Observation) UnmarshalJSON(data []byte) error {
	type alias Observation
	wrapped := struct {
		*alias
		Value *float64 `json:"value"`
	}{alias: (*alias)(o)}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.Value != nil {
		o.Value = *wrapped.Value
	} else {
		o.Value = math.NaN()
	}
	return nil
}

// IndicatorValue is one computed indicator result for one station and period.
type IndicatorValue struct {
	ID           string    `json:"id"`
	Indicator    string    `json:"indicator"`
	Station      string    `json:"station"`
	Variable     string    `json:"variable"`
	PeriodStart  time.Time `json:"period_start"`
	Value        float64   `json:"value"`
	Unit         string    `json:"unit"`
	StandardName string    `json:"standard_name,omitempty"`
	InputCount   int       `json:"input_count"` // good observations feeding the period
	ComputedAt   time.Time `json:"computed_at"`
}

// MarshalJSON encodes a NaN value as null. Occurrence-style indicators
// produce NaN when nothing matched within the period, and encoding/json
// rejects NaN outright.
func (v IndicatorValue) MarshalJSON() ([]byte, error) {
	type alias IndicatorValue
	if !math.IsNaN(v.Value) {
		return json.Marshal(alias(v))
	}
	wrapped := struct {
		alias
		Value *float64 `json:"value"`
	}{alias: alias(v)}
	return json.Marshal(wrapped)
}

// UnmarshalJSON treats a null value as NaN, mirroring MarshalJSON.
func (v *IndicatorValue) UnmarshalJSON(data []byte) error {
	type alias IndicatorValue
	wrapped := struct {
		*alias
		Value *float64 `json:"value"`
	}{alias: (*alias)(v)}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.Value != nil {
		v.Value = *wrapped.Value
	} else {
		v.Value = math.NaN()
	}
	return nil
}

// OutputEvent is the serialized form destined for a sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
