// Package series implements labeled daily time series: ordered observations
// with CF-style metadata attributes, frequency-based resampling, and
// NaN-skipping reducers. NaN marks missing values throughout.
package series

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/climate-indicator-etl/internal/units"
)

// Attrs carries CF-style metadata for a series.
type Attrs struct {
	Units        units.Unit
	StandardName string
	LongName     string
	CellMethods  string
}

// Series is an ordered, time-labeled sequence of float64 values.
// Times and Values always have equal length; Times is strictly increasing.
type Series struct {
	Times  []time.Time
	Values []float64
	Attrs  Attrs
}

// ErrUnordered is returned by New when times are not strictly increasing.
var ErrUnordered = errors.New("series times not strictly increasing")

// New validates and constructs a series. Times must be strictly increasing
// and match the length of values.
func New(times []time.Time, values []float64, attrs Attrs) (*Series, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("series: %d times but %d values", len(times), len(values))
	}
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return nil, fmt.Errorf("%w: index %d", ErrUnordered, i)
		}
	}
	return &Series{Times: times, Values: values, Attrs: attrs}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.Values) }

// Copy returns a deep copy of the series.
func (s *Series) Copy() *Series {
	times := make([]time.Time, len(s.Times))
	copy(times, s.Times)
	values := make([]float64, len(s.Values))
	copy(values, s.Values)
	return &Series{Times: times, Values: values, Attrs: s.Attrs}
}

// ConvertTo returns a copy of the series converted to the target unit,
// with the units attribute updated. The receiver is not modified.
func (s *Series) ConvertTo(target units.Unit) (*Series, error) {
	out := s.Copy()
	for i, v := range out.Values {
		converted, err := units.ConvertValue(v, s.Attrs.Units, target)
		if err != nil {
			return nil, fmt.Errorf("convert series: %w", err)
		}
		out.Values[i] = converted
	}
	out.Attrs.Units = target
	return out, nil
}

// Group is one resampling period: the period's start label and the
// observations falling inside it, in time order.
type Group struct {
	Start  time.Time
	Times  []time.Time
	Values []float64
}

// Resample partitions the series into contiguous periods defined by a
// frequency string. An empty series resamples to no groups.
func (s *Series) Resample(freq string) ([]Group, error) {
	f, err := ParseFreq(freq)
	if err != nil {
		return nil, err
	}

	var groups []Group
	for i, t := range s.Times {
		start := f.PeriodStart(t)
		if len(groups) == 0 || !groups[len(groups)-1].Start.Equal(start) {
			groups = append(groups, Group{Start: start})
		}
		g := &groups[len(groups)-1]
		g.Times = append(g.Times, t)
		g.Values = append(g.Values, s.Values[i])
	}
	return groups, nil
}

// Reducer is a NaN-skipping aggregation over one period's values.
type Reducer func(values []float64) float64

// GetReducer resolves a reducer name: min, max, mean, sum, std, count.
func GetReducer(name string) (Reducer, error) {
	switch name {
	case "min":
		return Min, nil
	case "max":
		return Max, nil
	case "mean":
		return Mean, nil
	case "sum":
		return Sum, nil
	case "std":
		return Std, nil
	case "count":
		return Count, nil
	default:
		return nil, fmt.Errorf("unknown reducer %q", name)
	}
}

// Min returns the smallest non-NaN value, or NaN when all values are missing.
func Min(values []float64) float64 {
	out, any := math.Inf(1), false
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		any = true
		if v < out {
			out = v
		}
	}
	if !any {
		return math.NaN()
	}
	return out
}

// Max returns the largest non-NaN value, or NaN when all values are missing.
func Max(values []float64) float64 {
	out, any := math.Inf(-1), false
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		any = true
		if v > out {
			out = v
		}
	}
	if !any {
		return math.NaN()
	}
	return out
}

// Sum returns the sum of non-NaN values, or NaN when all values are missing.
func Sum(values []float64) float64 {
	out, any := 0.0, false
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		any = true
		out += v
	}
	if !any {
		return math.NaN()
	}
	return out
}

// Mean returns the mean of non-NaN values, or NaN when all values are missing.
func Mean(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Std returns the population standard deviation of non-NaN values.
func Std(values []float64) float64 {
	mean := Mean(values)
	if math.IsNaN(mean) {
		return math.NaN()
	}
	sumSq, n := 0.0, 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		sumSq += d * d
		n++
	}
	return math.Sqrt(sumSq / float64(n))
}

// Count returns the number of non-NaN values.
func Count(values []float64) float64 {
	n := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return float64(n)
}

// FromGroups builds a series of one reduced value per group, labeled by the
// group starts.
func FromGroups(groups []Group, reduce Reducer, attrs Attrs) *Series {
	times := make([]time.Time, len(groups))
	values := make([]float64, len(groups))
	for i, g := range groups {
		times[i] = g.Start
		values[i] = reduce(g.Values)
	}
	return &Series{Times: times, Values: values, Attrs: attrs}
}
