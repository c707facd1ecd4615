// Package units implements CF-style physical quantity parsing and conversion
// for climate observation data.
//
// # Quantity Strings
//
// Thresholds and observation units arrive as quantity strings in the form
// "<number> <unit>", e.g. "20 C", "293.15 K", "1 mm/d", "25 mm". A bare
// number parses as dimensionless. Unit spellings follow the loose CF/UDUNITS
// conventions seen in upstream station feeds: "C", "degC" and "celsius" are
// the same unit, "m/s" and "m s-1" are the same unit, and so on.
//
// # Conversion Rules
//
// Conversion is only defined within a dimension. Temperatures are affine
// (Kelvin offset), everything else is a pure scale factor. The one sanctioned
// cross-dimension conversion is the hydrological bridge between precipitation
// flux (kg m-2 s-1) and precipitation rate (mm/d): with the density of water
// at 1000 kg/m3, 1 kg of water over 1 m2 is exactly 1 mm deep, so
// 1 kg m-2 s-1 == 86400 mm/d.
//
// Differences of temperatures are relative (delta) quantities: Kelvin doubles
// as its own delta, while degC and degF get explicit delta_ spellings. See
// [DeltaOf].
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Dimension identifies the physical dimension of a unit.
type Dimension int

const (
	Dimensionless Dimension = iota
	Temperature
	DeltaTemperature
	Length
	Speed
	PrecipitationRate // depth per time, base mm/d
	PrecipitationFlux // mass per area per time, base kg m-2 s-1
	TimeDays
	DegreeDays // temperature integrated over days, base K d
)

// String returns a human-readable dimension name.
func (d Dimension) String() string {
	switch d {
	case Dimensionless:
		return "dimensionless"
	case Temperature:
		return "temperature"
	case DeltaTemperature:
		return "temperature difference"
	case Length:
		return "length"
	case Speed:
		return "speed"
	case PrecipitationRate:
		return "precipitation rate"
	case PrecipitationFlux:
		return "precipitation flux"
	case TimeDays:
		return "time"
	case DegreeDays:
		return "degree days"
	default:
		return "unknown"
	}
}

// Unit is a named unit within a dimension. A value v in this unit equals
// v*Scale + Offset in the dimension's base unit.
type Unit struct {
	Symbol string
	Dim    Dimension
	Scale  float64
	Offset float64
}

// String returns the canonical symbol.
func (u Unit) String() string { return u.Symbol }

// IsZero reports whether the unit is the zero value (no unit set).
func (u Unit) IsZero() bool { return u.Symbol == "" && u.Dim == Dimensionless && u.Scale == 0 }

// Quantity is a value with a unit, e.g. the parsed form of "20 C".
type Quantity struct {
	Value float64
	Unit  Unit
}

// String formats the quantity as "<value> <unit>".
func (q Quantity) String() string {
	if q.Unit.Symbol == "" || q.Unit.Symbol == "1" {
		return strconv.FormatFloat(q.Value, 'g', -1, 64)
	}
	return strconv.FormatFloat(q.Value, 'g', -1, 64) + " " + q.Unit.Symbol
}

// ErrUnknownUnit is wrapped by ParseUnit for unrecognized spellings.
var ErrUnknownUnit = errors.New("unknown unit")

// ErrIncompatibleUnits is wrapped by Convert for cross-dimension conversions.
var ErrIncompatibleUnits = errors.New("incompatible units")

// kelvinOffsetF is the Kelvin value of 0 degF: (0-32)*5/9 + 273.15.
const kelvinOffsetF = 255.3722222222222

// secondsPerDay converts the flux base (per second) to the rate base (per day).
const secondsPerDay = 86400.0

func unit(symbol string, dim Dimension, scale, offset float64) Unit {
	return Unit{Symbol: symbol, Dim: dim, Scale: scale, Offset: offset}
}

// unitTable maps canonical symbols to units. Aliases are resolved first by
// aliasTable, so every entry here is a canonical spelling.
var unitTable = map[string]Unit{
	"K":          unit("K", Temperature, 1, 0),
	"degC":       unit("degC", Temperature, 1, 273.15),
	"degF":       unit("degF", Temperature, 5.0/9.0, kelvinOffsetF),
	"delta_degC": unit("delta_degC", DeltaTemperature, 1, 0),
	"delta_degF": unit("delta_degF", DeltaTemperature, 5.0/9.0, 0),

	"mm": unit("mm", Length, 0.001, 0),
	"cm": unit("cm", Length, 0.01, 0),
	"m":  unit("m", Length, 1, 0),
	"in": unit("in", Length, 0.0254, 0),

	"m s-1":  unit("m s-1", Speed, 1, 0),
	"km h-1": unit("km h-1", Speed, 1.0/3.6, 0),
	"mph":    unit("mph", Speed, 0.44704, 0),
	"kt":     unit("kt", Speed, 0.5144444444444445, 0),

	"mm/d":       unit("mm/d", PrecipitationRate, 1, 0),
	"mm/h":       unit("mm/h", PrecipitationRate, 24, 0),
	"kg m-2 s-1": unit("kg m-2 s-1", PrecipitationFlux, 1, 0),

	"1": unit("1", Dimensionless, 1, 0),
	"%": unit("%", Dimensionless, 0.01, 0),

	"d": unit("d", TimeDays, 1, 0),

	"K d":    unit("K d", DegreeDays, 1, 0),
	"degC d": unit("degC d", DegreeDays, 1, 0),
	"degF d": unit("degF d", DegreeDays, 5.0/9.0, 0),
}

// aliasTable maps alternate spellings to canonical symbols.
var aliasTable = map[string]string{
	"k":          "K",
	"kelvin":     "K",
	"degK":       "K",
	"C":          "degC",
	"c":          "degC",
	"°C":         "degC",
	"celsius":    "degC",
	"deg_C":      "degC",
	"F":          "degF",
	"f":          "degF",
	"°F":         "degF",
	"fahrenheit": "degF",
	"deg_F":      "degF",

	"inch":   "in",
	"inches": "in",

	"m/s":    "m s-1",
	"km/h":   "km h-1",
	"km/hr":  "km h-1",
	"km h-1": "km h-1",
	"knot":   "kt",
	"knots":  "kt",

	"mm/day":     "mm/d",
	"mm d-1":     "mm/d",
	"mm day-1":   "mm/d",
	"mm/hr":      "mm/h",
	"mm h-1":     "mm/h",
	"kg/m2/s":    "kg m-2 s-1",
	"kg/m^2/s":   "kg m-2 s-1",
	"kg m-2 s-1": "kg m-2 s-1",

	"":        "1",
	"percent": "%",

	"day":  "d",
	"days": "d",
}

// ParseUnit resolves a unit spelling to its canonical Unit.
func ParseUnit(s string) (Unit, error) {
	sym := strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
	if canonical, ok := aliasTable[sym]; ok {
		sym = canonical
	}
	u, ok := unitTable[sym]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
	return u, nil
}

// MustUnit is ParseUnit for known-good spellings; it panics on error.
// Intended for package-level defaults and tests.
func MustUnit(s string) Unit {
	u, err := ParseUnit(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Parse parses a quantity string of the form "<number> <unit>", e.g. "20 C"
// or "1 kg m-2 s-1". A bare number is dimensionless.
func Parse(s string) (Quantity, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return Quantity{}, fmt.Errorf("parse quantity: empty string")
	}

	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("parse quantity %q: %w", s, err)
	}

	u, err := ParseUnit(strings.Join(fields[1:], " "))
	if err != nil {
		return Quantity{}, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	return Quantity{Value: value, Unit: u}, nil
}

// Convert converts a quantity to the target unit. Same-dimension conversions
// go through the dimension's base unit; precipitation flux and rate convert
// across dimensions through the hydrological water-density bridge. Any other
// cross-dimension conversion is an error.
func Convert(q Quantity, target Unit) (Quantity, error) {
	v, err := ConvertValue(q.Value, q.Unit, target)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: v, Unit: target}, nil
}

// ConvertValue converts a single value between units. NaN passes through
// unchanged so missing values survive series conversion.
func ConvertValue(v float64, from, to Unit) (float64, error) {
	if from.IsZero() || to.IsZero() {
		return 0, fmt.Errorf("convert: missing unit")
	}
	if math.IsNaN(v) {
		return v, nil
	}
	if from.Dim == to.Dim {
		base := v*from.Scale + from.Offset
		return (base - to.Offset) / to.Scale, nil
	}

	// Hydrological bridge: 1 kg m-2 s-1 of water == 86400 mm/d.
	switch {
	case from.Dim == PrecipitationFlux && to.Dim == PrecipitationRate:
		ratePerDay := (v * from.Scale) * secondsPerDay
		return ratePerDay / to.Scale, nil
	case from.Dim == PrecipitationRate && to.Dim == PrecipitationFlux:
		return (v * from.Scale) / secondsPerDay / to.Scale, nil
	}

	return 0, fmt.Errorf("%w: cannot convert %s (%s) to %s (%s)",
		ErrIncompatibleUnits, from.Symbol, from.Dim, to.Symbol, to.Dim)
}

// DeltaOf returns the relative counterpart of a temperature unit: the unit a
// difference of two temperatures is expressed in. Kelvin is its own delta;
// non-temperature units are returned unchanged.
func DeltaOf(u Unit) Unit {
	switch u.Symbol {
	case "degC":
		return unitTable["delta_degC"]
	case "degF":
		return unitTable["delta_degF"]
	default:
		return u
	}
}

// DegreeDaysOf returns the degree-day unit matching a temperature unit
// (e.g. degC -> "degC d"). Non-temperature units are returned unchanged.
func DegreeDaysOf(u Unit) Unit {
	switch u.Symbol {
	case "K", "delta_degC":
		return unitTable["K d"]
	case "degC":
		return unitTable["degC d"]
	case "degF", "delta_degF":
		return unitTable["degF d"]
	default:
		return u
	}
}

// Days is the unit carried by aggregated day counts.
func Days() Unit { return unitTable["d"] }

// Dimensionless1 is the "1" unit for unitless outputs such as day-of-year.
func Dimensionless1() Unit { return unitTable["1"] }

// AggUnit returns the output unit for an aggregation of data in unit u:
// "count" aggregations are in days, "delta_prod" (degree-day) aggregations
// are in <unit> d, and plain statistics keep the input unit.
func AggUnit(u Unit, op string) Unit {
	switch op {
	case "count":
		return Days()
	case "delta_prod":
		return DegreeDaysOf(u)
	default:
		return u
	}
}
