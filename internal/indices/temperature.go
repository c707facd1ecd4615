package indices

import (
	"fmt"
	"math"

	"github.com/couchcryptid/climate-indicator-etl/internal/series"
	"github.com/couchcryptid/climate-indicator-etl/internal/units"
)

// alignPair converts high into low's units and checks both series share the
// same time axis. Paired daily indicators require aligned inputs.
func alignPair(low, high *series.Series) (*series.Series, error) {
	if low.Len() != high.Len() {
		return nil, fmt.Errorf("paired series length mismatch: %d vs %d", low.Len(), high.Len())
	}
	for i := range low.Times {
		if !low.Times[i].Equal(high.Times[i]) {
			return nil, fmt.Errorf("paired series time mismatch at index %d", i)
		}
	}
	return high.ConvertTo(low.Attrs.Units)
}

// DiurnalTemperatureRange reduces the daily range (tasmax - tasmin) per
// period with the named reducer. The result is in the relative counterpart
// of tasmin's units.
func DiurnalTemperatureRange(tasmin, tasmax *series.Series, reducer, freq string) (*series.Series, error) {
	reduce, err := series.GetReducer(reducer)
	if err != nil {
		return nil, err
	}
	high, err := alignPair(tasmin, tasmax)
	if err != nil {
		return nil, err
	}

	dtr := tasmin.Copy()
	for i := range dtr.Values {
		dtr.Values[i] = high.Values[i] - tasmin.Values[i]
	}
	dtr.Attrs.Units = units.DeltaOf(tasmin.Attrs.Units)

	groups, err := dtr.Resample(freq)
	if err != nil {
		return nil, err
	}
	return series.FromGroups(groups, reduce, dtr.Attrs), nil
}

// InterdayDiurnalTemperatureRange averages, per period, the absolute
// day-to-day change of the diurnal range. The result is in the relative
// counterpart of tasmin's units.
func InterdayDiurnalTemperatureRange(tasmin, tasmax *series.Series, freq string) (*series.Series, error) {
	high, err := alignPair(tasmin, tasmax)
	if err != nil {
		return nil, err
	}
	if tasmin.Len() < 2 {
		return nil, fmt.Errorf("interday range needs at least 2 observations, got %d", tasmin.Len())
	}

	// Day-to-day absolute difference of the diurnal range; the first day has
	// no predecessor, so the differenced series starts one day in.
	vdtr := &series.Series{Attrs: tasmin.Attrs}
	for i := 1; i < tasmin.Len(); i++ {
		prev := high.Values[i-1] - tasmin.Values[i-1]
		cur := high.Values[i] - tasmin.Values[i]
		vdtr.Times = append(vdtr.Times, tasmin.Times[i])
		vdtr.Values = append(vdtr.Values, math.Abs(cur-prev))
	}
	vdtr.Attrs.Units = units.DeltaOf(tasmin.Attrs.Units)

	groups, err := vdtr.Resample(freq)
	if err != nil {
		return nil, err
	}
	return series.FromGroups(groups, series.Mean, vdtr.Attrs), nil
}

// ExtremeTemperatureRange returns, per period, the span between the period's
// highest tasmax and lowest tasmin. The result is in the relative counterpart
// of tasmin's units.
func ExtremeTemperatureRange(tasmin, tasmax *series.Series, freq string) (*series.Series, error) {
	high, err := alignPair(tasmin, tasmax)
	if err != nil {
		return nil, err
	}

	lowGroups, err := tasmin.Resample(freq)
	if err != nil {
		return nil, err
	}
	highGroups, err := high.Resample(freq)
	if err != nil {
		return nil, err
	}

	attrs := tasmin.Attrs
	attrs.Units = units.DeltaOf(tasmin.Attrs.Units)
	out := series.FromGroups(highGroups, series.Max, attrs)
	for i, g := range lowGroups {
		out.Values[i] -= series.Min(g.Values)
	}
	return out, nil
}
