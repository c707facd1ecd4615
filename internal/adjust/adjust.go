// Package adjust implements pre- and post-processing helpers used around
// bias adjustment of simulated series: jittering of censored values and
// mean/std standardization. Randomness is injected so tests stay
// deterministic.
package adjust

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/couchcryptid/climate-indicator-etl/internal/series"
	"github.com/couchcryptid/climate-indicator-etl/internal/units"
)

// JitterUnderThresh replaces values strictly under the threshold with uniform
// noise in [minimum, thresh). Simulated precipitation often censors drizzle
// to exact zeros; jittering restores a continuous distribution below the wet
// day threshold. The minimum defaults to 0 in the data's units.
func JitterUnderThresh(s *series.Series, thresh string, rng *rand.Rand) (*series.Series, error) {
	t, err := threshIn(thresh, s)
	if err != nil {
		return nil, err
	}

	out := s.Copy()
	for i, v := range out.Values {
		if math.IsNaN(v) || v >= t {
			continue
		}
		out.Values[i] = rng.Float64() * t
	}
	return out, nil
}

// JitterOverThresh replaces values strictly over the threshold with uniform
// noise in [thresh, upperBound). Used to tame unphysically large simulated
// extremes before computing adjustment factors.
func JitterOverThresh(s *series.Series, thresh, upperBound string, rng *rand.Rand) (*series.Series, error) {
	t, err := threshIn(thresh, s)
	if err != nil {
		return nil, err
	}
	upper, err := threshIn(upperBound, s)
	if err != nil {
		return nil, err
	}
	if upper <= t {
		return nil, fmt.Errorf("jitter over thresh: upper bound %q not above threshold %q", upperBound, thresh)
	}

	out := s.Copy()
	for i, v := range out.Values {
		if math.IsNaN(v) || v <= t {
			continue
		}
		out.Values[i] = t + rng.Float64()*(upper-t)
	}
	return out, nil
}

// Standardize returns (s - mean)/std along with the mean and std used, so the
// transform can be inverted with Unstandardize. NaN values are skipped in the
// moments and preserved in the output.
func Standardize(s *series.Series) (*series.Series, float64, float64) {
	mean := series.Mean(s.Values)
	std := series.Std(s.Values)

	out := s.Copy()
	for i, v := range out.Values {
		if math.IsNaN(v) {
			continue
		}
		out.Values[i] = (v - mean) / std
	}
	out.Attrs.Units = units.Dimensionless1()
	return out, mean, std
}

// Unstandardize rescales a standardized series back to mean + std*s.
func Unstandardize(s *series.Series, mean, std float64, unit units.Unit) *series.Series {
	out := s.Copy()
	for i, v := range out.Values {
		if math.IsNaN(v) {
			continue
		}
		out.Values[i] = mean + std*v
	}
	out.Attrs.Units = unit
	return out
}

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
