// Package indices implements generic threshold-based climate indicators over
// daily series: day counts above or below a threshold, occurrence timing,
// spell lengths, thresholded statistics, and degree-day accumulations.
//
// Thresholds are quantity strings ("20 C", "293.15 K", "1 mm/d") and are
// always converted into the units of the data before comparison, never the
// data into the threshold's units. Aggregated day counts carry units of days;
// degree-day accumulations carry "<unit> d".
package indices

import (
	"fmt"
	"math"

	"github.com/couchcryptid/climate-indicator-etl/internal/series"
	"github.com/couchcryptid/climate-indicator-etl/internal/units"
)

// CompareOp is a binary comparison applied pointwise against a threshold.
type CompareOp func(v, thresh float64) bool

var ops = map[string]CompareOp{
	">":  func(v, t float64) bool { return v > t },
	"<":  func(v, t float64) bool { return v < t },
	">=": func(v, t float64) bool { return v >= t },
	"<=": func(v, t float64) bool { return v <= t },
	"==": func(v, t float64) bool { return v == t },
	"!=": func(v, t float64) bool { return v != t },
}

var opAliases = map[string]string{
	"gt": ">", "lt": "<", "ge": ">=", "le": "<=", "eq": "==", "ne": "!=",
}

// GetOp resolves a comparison operator from its symbol or name
// (">", "<", ">=", "<=", "==", "!=" or gt, lt, ge, le, eq, ne).
func GetOp(op string) (CompareOp, error) {
	if sym, ok := opAliases[op]; ok {
		op = sym
	}
	f, ok := ops[op]
	if !ok {
		return nil, fmt.Errorf("operation %q not recognized", op)
	}
	return f, nil
}

// threshIn parses a threshold quantity string and converts it into the
// data's units.
func threshIn(thresh string, s *series.Series) (float64, error) {
	q, err := units.Parse(thresh)
	if err != nil {
		return 0, err
	}
	converted, err := units.Convert(q, s.Attrs.Units)
	if err != nil {
		return 0, fmt.Errorf("threshold %q: %w", thresh, err)
	}
	return converted.Value, nil
}

// Compare returns the boolean mask op(value, thresh) for each observation.
// NaN values never satisfy the condition.
func Compare(s *series.Series, op, thresh string) ([]bool, error) {
	f, err := GetOp(op)
	if err != nil {
		return nil, err
	}
	t, err := threshIn(thresh, s)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, s.Len())
	for i, v := range s.Values {
		mask[i] = !math.IsNaN(v) && f(v, t)
	}
	return mask, nil
}

// ThresholdCount counts the days per period where op(value, thresh) holds.
// The result carries units of days.
func ThresholdCount(s *series.Series, op, thresh, freq string) (*series.Series, error) {
	mask, err := Compare(s, op, thresh)
	if err != nil {
		return nil, err
	}
	return countMask(s, mask, freq)
}

// CountOccurrences is ThresholdCount with the condition-first argument order
// used by indicator catalogs.
func CountOccurrences(s *series.Series, thresh, condition, freq string) (*series.Series, error) {
	return ThresholdCount(s, condition, thresh, freq)
}

// DomainCount counts the days per period where the value lies in ]low, high]:
// strictly above low and at most high. The result carries units of days.
func DomainCount(s *series.Series, low, high, freq string) (*series.Series, error) {
	aboveLow, err := Compare(s, ">", low)
	if err != nil {
		return nil, err
	}
	belowHigh, err := Compare(s, "<=", high)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, len(aboveLow))
	for i := range mask {
		mask[i] = aboveLow[i] && belowHigh[i]
	}
	return countMask(s, mask, freq)
}

func countMask(s *series.Series, mask []bool, freq string) (*series.Series, error) {
	indicator := maskSeries(s, mask)
	groups, err := indicator.Resample(freq)
	if err != nil {
		return nil, err
	}
	attrs := s.Attrs
	attrs.Units = units.Days()
	return series.FromGroups(groups, series.Sum, attrs), nil
}

// maskSeries renders a boolean mask as a 0/1 series on the input's time axis.
func maskSeries(s *series.Series, mask []bool) *series.Series {
	values := make([]float64, len(mask))
	for i, m := range mask {
		if m {
			values[i] = 1
		}
	}
	return &series.Series{Times: s.Times, Values: values, Attrs: s.Attrs}
}

// FirstOccurrence returns, per period, the day-of-year of the first
// observation satisfying condition(value, thresh), or NaN when none does.
func FirstOccurrence(s *series.Series, thresh, condition, freq string) (*series.Series, error) {
	return occurrence(s, thresh, condition, freq, false)
}

// LastOccurrence returns, per period, the day-of-year of the last
// observation satisfying condition(value, thresh), or NaN when none does.
func LastOccurrence(s *series.Series, thresh, condition, freq string) (*series.Series, error) {
	return occurrence(s, thresh, condition, freq, true)
}

func occurrence(s *series.Series, thresh, condition, freq string, last bool) (*series.Series, error) {
	mask, err := Compare(s, condition, thresh)
	if err != nil {
		return nil, err
	}
	masked := maskSeries(s, mask)
	groups, err := masked.Resample(freq)
	if err != nil {
		return nil, err
	}

	attrs := s.Attrs
	attrs.Units = units.Dimensionless1()
	out := &series.Series{Attrs: attrs}
	for _, g := range groups {
		doy := math.NaN()
		for i, v := range g.Values {
			if v != 1 {
				continue
			}
			doy = float64(g.Times[i].YearDay())
			if !last {
				break
			}
		}
		out.Times = append(out.Times, g.Start)
		out.Values = append(out.Values, doy)
	}
	return out, nil
}

// DoyMax returns, per period, the day-of-year of the period's highest value,
// or NaN when every value is missing. Ties keep the earliest day.
func DoyMax(s *series.Series, freq string) (*series.Series, error) {
	return doyExtreme(s, freq, func(v, best float64) bool { return v > best })
}

// DoyMin returns, per period, the day-of-year of the period's lowest value,
// or NaN when every value is missing. Ties keep the earliest day.
func DoyMin(s *series.Series, freq string) (*series.Series, error) {
	return doyExtreme(s, freq, func(v, best float64) bool { return v < best })
}

func doyExtreme(s *series.Series, freq string, better func(v, best float64) bool) (*series.Series, error) {
	groups, err := s.Resample(freq)
	if err != nil {
		return nil, err
	}

	attrs := s.Attrs
	attrs.Units = units.Dimensionless1()
	out := &series.Series{Attrs: attrs}
	for _, g := range groups {
		best, doy := math.NaN(), math.NaN()
		for i, v := range g.Values {
			if math.IsNaN(v) {
				continue
			}
			if math.IsNaN(best) || better(v, best) {
				best = v
				doy = float64(g.Times[i].YearDay())
			}
		}
		out.Times = append(out.Times, g.Start)
		out.Values = append(out.Values, doy)
	}
	return out, nil
}

// SpellLength reduces the lengths of consecutive runs satisfying
// condition(value, thresh) within each period. Runs are counted within a
// period only; a spell crossing a period boundary is split. A period with no
// qualifying run reduces to 0. The result carries units of days.
func SpellLength(s *series.Series, thresh, condition, reducer, freq string) (*series.Series, error) {
	mask, err := Compare(s, condition, thresh)
	if err != nil {
		return nil, err
	}
	reduce, err := series.GetReducer(reducer)
	if err != nil {
		return nil, err
	}

	masked := maskSeries(s, mask)
	groups, err := masked.Resample(freq)
	if err != nil {
		return nil, err
	}

	attrs := s.Attrs
	attrs.Units = units.Days()
	out := &series.Series{Attrs: attrs}
	for _, g := range groups {
		runs := runLengths(g.Values)
		length := 0.0
		if len(runs) > 0 {
			length = reduce(runs)
		}
		out.Times = append(out.Times, g.Start)
		out.Values = append(out.Values, length)
	}
	return out, nil
}

// runLengths returns the lengths of maximal runs of 1s.
func runLengths(indicator []float64) []float64 {
	var runs []float64
	current := 0.0
	for _, v := range indicator {
		if v == 1 {
			current++
			continue
		}
		if current > 0 {
			runs = append(runs, current)
			current = 0
		}
	}
	if current > 0 {
		runs = append(runs, current)
	}
	return runs
}

// Statistics reduces the data per period with the named reducer, keeping the
// input units.
func Statistics(s *series.Series, reducer, freq string) (*series.Series, error) {
	reduce, err := series.GetReducer(reducer)
	if err != nil {
		return nil, err
	}
	groups, err := s.Resample(freq)
	if err != nil {
		return nil, err
	}
	return series.FromGroups(groups, reduce, s.Attrs), nil
}

// ThresholdedStatistics reduces, per period, only the values satisfying
// condition(value, thresh), keeping the input units. A period with no
// qualifying value reduces to NaN.
func ThresholdedStatistics(s *series.Series, thresh, condition, reducer, freq string) (*series.Series, error) {
	mask, err := Compare(s, condition, thresh)
	if err != nil {
		return nil, err
	}
	reduce, err := series.GetReducer(reducer)
	if err != nil {
		return nil, err
	}

	masked := s.Copy()
	for i, m := range mask {
		if !m {
			masked.Values[i] = math.NaN()
		}
	}
	groups, err := masked.Resample(freq)
	if err != nil {
		return nil, err
	}
	return series.FromGroups(groups, reduce, s.Attrs), nil
}

// TemperatureSum accumulates, per period, the signed exceedance
// (value - thresh) over days satisfying condition(value, thresh). For "<"
// conditions the accumulated deficit is negated so the result is positive.
// The result carries degree-day units.
func TemperatureSum(s *series.Series, thresh, condition, freq string) (*series.Series, error) {
	f, err := GetOp(condition)
	if err != nil {
		return nil, err
	}
	t, err := threshIn(thresh, s)
	if err != nil {
		return nil, err
	}

	direction := 1.0
	if condition == "<" || condition == "<=" || condition == "lt" || condition == "le" {
		direction = -1
	}

	exceed := s.Copy()
	for i, v := range exceed.Values {
		if math.IsNaN(v) || !f(v, t) {
			exceed.Values[i] = 0
			continue
		}
		exceed.Values[i] = v - t
	}

	groups, err := exceed.Resample(freq)
	if err != nil {
		return nil, err
	}
	attrs := s.Attrs
	attrs.Units = units.AggUnit(s.Attrs.Units, "delta_prod")
	out := series.FromGroups(groups, series.Sum, attrs)
	for i := range out.Values {
		out.Values[i] *= direction
	}
	return out, nil
}

// DegreeDays accumulates, per period, the clipped distance from the
// threshold: (value - thresh) clipped at 0 for ">" conditions (cooling /
// growing degree days), (thresh - value) clipped at 0 for "<" conditions
// (heating degree days). The result carries degree-day units.
func DegreeDays(s *series.Series, thresh, condition, freq string) (*series.Series, error) {
	t, err := threshIn(thresh, s)
	if err != nil {
		return nil, err
	}

	var distance func(v float64) float64
	switch condition {
	case "<", "<=", "lt", "le":
		distance = func(v float64) float64 { return math.Max(t-v, 0) }
	case ">", ">=", "gt", "ge":
		distance = func(v float64) float64 { return math.Max(v-t, 0) }
	default:
		return nil, fmt.Errorf("degree days: condition %q not supported", condition)
	}

	clipped := s.Copy()
	for i, v := range clipped.Values {
		if math.IsNaN(v) {
			clipped.Values[i] = 0
			continue
		}
		clipped.Values[i] = distance(v)
	}

	groups, err := clipped.Resample(freq)
	if err != nil {
		return nil, err
	}
	attrs := s.Attrs
	attrs.Units = units.AggUnit(s.Attrs.Units, "delta_prod")
	return series.FromGroups(groups, series.Sum, attrs), nil
}
