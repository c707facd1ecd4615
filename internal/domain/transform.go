package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/climate-indicator-etl/internal/units"
)

// ParseRawEvent deserializes a RawEvent's value into an Observation.
// It expects the flat reading JSON produced by the collector service.
func ParseRawEvent(raw RawEvent) (Observation, error) {
	var rec RawReadingRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Observation{}, fmt.Errorf("parse raw event: %w", err)
	}

	lat := parseFloatOrZero(rec.Lat)
	lon := parseFloatOrZero(rec.Lon)
	value := parseValueField(rec.Value)
	obsTime := parseDate(raw.Timestamp, rec.Date)

	return Observation{
		ID:         generateID(rec.Station, rec.Variable, rec.Date, value),
		Station:    rec.Station,
		Variable:   rec.Variable,
		Geo:        Geo{Lat: lat, Lon: lon},
		Elevation:  parseFloatOrZero(rec.Elevation),
		Value:      value,
		Unit:       rec.Unit,
		Time:       obsTime,
		QCFlag:     strings.TrimSpace(rec.QCFlag),
		RawPayload: raw.Value,
	}, nil
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseValueField parses a reading value, mapping the missing-value
// sentinels ("", "UNK", "-9999") to NaN.
func parseValueField(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "UNK") || s == "-9999" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseDate combines a YYYY-MM-DD date string with a fallback base date.
// The reading is stamped at midnight UTC of its calendar day.
func parseDate(baseDate time.Time, date string) time.Time {
	date = strings.TrimSpace(date)
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t
	}
	b := baseDate.UTC()
	return time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
}

// generateID produces a deterministic ID from the reading's key fields.
// Reprocessing the same raw event yields the same ID, which keeps upserts
// and topic replays idempotent.
func generateID(station, variable, date string, value float64) string {
	input := fmt.Sprintf("%s|%s|%s|%g", station, variable, date, value)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if variable == "" {
		return short
	}
	return variable + "-" + short
}

// EnrichObservation normalizes and classifies a parsed observation. It
// validates the variable name, infers default units, corrects magnitude
// encoding issues, converts the value to the variable's canonical unit,
// derives a quality label, and stamps the processing time.
func EnrichObservation(obs Observation) Observation {
	obs.Variable = normalizeVariable(obs.Variable)
	obs.Unit = normalizeUnit(obs.Variable, obs.Unit)
	obs.Value = normalizeMagnitude(obs.Variable, obs.Value, obs.Unit)
	obs = convertToCanonical(obs)
	obs.Quality = deriveQuality(obs.Value, obs.QCFlag)
	obs.Time = obs.Time.UTC().Truncate(24 * time.Hour)
	obs.ProcessedAt = clock.Now()
	return obs
}

// normalizeVariable validates the CF variable name injected by the upstream
// collector. Accepts exact matches only.
func normalizeVariable(value string) string {
	switch value {
	case "tas", "tasmax", "tasmin", "pr", "sfcWind", "hurs":
		return value
	default:
		return ""
	}
}

// normalizeUnit returns the unit as-is if present, otherwise infers the
// default source unit for the variable: degC for temperatures, mm/d for
// precipitation, m s-1 for wind, percent for humidity.
func normalizeUnit(variable, unit string) string {
	unit = strings.TrimSpace(unit)
	if unit != "" {
		return unit
	}

	switch variable {
	case "tas", "tasmax", "tasmin":
		return "degC"
	case "pr":
		return "mm/d"
	case "sfcWind":
		return "m s-1"
	case "hurs":
		return "%"
	default:
		return ""
	}
}

// normalizeMagnitude corrects known encoding issues in upstream data.
// GHCN-derived feeds encode Celsius temperatures in tenths of a degree
// (e.g. 285 = 28.5 degC). Celsius values with magnitude >= 100 are assumed
// to use this encoding and are divided by 10. The threshold of 100 is safe
// because the global surface temperature records are 56.7 degC and
// -89.2 degC.
func normalizeMagnitude(variable string, value float64, unit string) float64 {
	if math.IsNaN(value) {
		return value
	}
	isTemp := variable == "tas" || variable == "tasmax" || variable == "tasmin"
	if isTemp && (unit == "degC" || unit == "C") && math.Abs(value) >= 100 {
		return value / 10.0
	}
	return value
}

// canonicalUnits maps each variable to its storage unit.
var canonicalUnits = map[string]string{
	"tas":     "K",
	"tasmax":  "K",
	"tasmin":  "K",
	"pr":      "kg m-2 s-1",
	"sfcWind": "m s-1",
	"hurs":    "%",
}

// CanonicalUnit returns the storage unit for a variable, or the empty string
// for unrecognized variables.
func CanonicalUnit(variable string) string {
	return canonicalUnits[variable]
}

// convertToCanonical converts the observation value into the variable's
// canonical unit. Unconvertible readings keep their source unit and are
// caught by the quality label downstream.
func convertToCanonical(obs Observation) Observation {
	target := canonicalUnits[obs.Variable]
	if target == "" {
		return obs
	}

	from, err := units.ParseUnit(obs.Unit)
	if err != nil {
		return obs
	}
	to := units.MustUnit(target)
	converted, err := units.ConvertValue(obs.Value, from, to)
	if err != nil {
		return obs
	}
	obs.Value = converted
	obs.Unit = to.Symbol
	return obs
}

// deriveQuality maps a value and its QC flag to a quality label:
// NaN readings are "missing", flagged readings are "suspect", the rest are
// "good". Only "good" readings feed indicator computations.
func deriveQuality(value float64, qcFlag string) string {
	if math.IsNaN(value) {
		return "missing"
	}
	if qcFlag != "" {
		return "suspect"
	}
	return "good"
}

// NewIndicatorValue assembles an IndicatorValue with its deterministic ID
// and computation timestamp.
func NewIndicatorValue(indicator, station, variable string, periodStart time.Time, value float64, unit, standardName string, inputCount int) IndicatorValue {
	input := fmt.Sprintf("%s|%s|%s", indicator, station, periodStart.UTC().Format("2006-01-02"))
	hash := sha256.Sum256([]byte(input))
	return IndicatorValue{
		ID:           indicator + "-" + hex.EncodeToString(hash[:8]),
		Indicator:    indicator,
		Station:      station,
		Variable:     variable,
		PeriodStart:  periodStart.UTC(),
		Value:        value,
		Unit:         unit,
		StandardName: standardName,
		InputCount:   inputCount,
		ComputedAt:   clock.Now(),
	}
}
