package indices

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-indicator-etl/internal/series"
	"github.com/couchcryptid/climate-indicator-etl/internal/units"
)

func dailySeries(t *testing.T, start time.Time, values []float64, unit string) *series.Series {
	t.Helper()
	times := make([]time.Time, len(values))
	for i := range values {
		times[i] = start.AddDate(0, 0, i)
	}
	s, err := series.New(times, values, series.Attrs{Units: units.MustUnit(unit)})
	require.NoError(t, err)
	return s
}

var july1 = time.Date(2001, 7, 1, 0, 0, 0, 0, time.UTC)

func TestGetOp(t *testing.T) {
	gt, err := GetOp(">")
	require.NoError(t, err)
	assert.True(t, gt(2, 1))
	assert.False(t, gt(1, 1))

	ge, err := GetOp("ge")
	require.NoError(t, err)
	assert.True(t, ge(1, 1))

	_, err = GetOp("~=")
	require.Error(t, err)
}

func TestThresholdCount(t *testing.T) {
	t.Run("celsius threshold against kelvin data", func(t *testing.T) {
		// 20 C == 293.15 K; two days above.
		s := dailySeries(t, july1, []float64{290, 294, 295, 292}, "K")
		out, err := ThresholdCount(s, ">", "20 C", "YS")
		require.NoError(t, err)
		require.Equal(t, 1, out.Len())
		assert.Equal(t, 2.0, out.Values[0])
		assert.Equal(t, "d", out.Attrs.Units.Symbol)
		assert.Equal(t, time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC), out.Times[0])
	})

	t.Run("NaN days are not counted", func(t *testing.T) {
		s := dailySeries(t, july1, []float64{math.NaN(), 295, 295}, "K")
		out, err := ThresholdCount(s, ">", "293.15 K", "YS")
		require.NoError(t, err)
		assert.Equal(t, 2.0, out.Values[0])
	})

	t.Run("monthly periods", func(t *testing.T) {
		values := make([]float64, 62) // July + August
		for i := range values {
			values[i] = 290
		}
		values[0], values[40] = 300, 300
		s := dailySeries(t, july1, values, "K")

		out, err := ThresholdCount(s, ">", "295 K", "MS")
		require.NoError(t, err)
		require.Equal(t, 2, out.Len())
		assert.Equal(t, 1.0, out.Values[0])
		assert.Equal(t, 1.0, out.Values[1])
	})

	t.Run("bad threshold unit", func(t *testing.T) {
		s := dailySeries(t, july1, []float64{290}, "K")
		_, err := ThresholdCount(s, ">", "5 mm", "YS")
		require.Error(t, err)
		assert.ErrorIs(t, err, units.ErrIncompatibleUnits)
	})
}

func TestDomainCount(t *testing.T) {
	// ]10, 20] degC: 10 excluded, 20 included.
	s := dailySeries(t, july1, []float64{10, 10.5, 20, 20.5, 15}, "degC")
	out, err := DomainCount(s, "10 C", "20 C", "YS")
	require.NoError(t, err)
	assert.Equal(t, 3.0, out.Values[0])
}

func TestOccurrences(t *testing.T) {
	// Hits on July 3rd and July 5th.
	s := dailySeries(t, july1, []float64{1, 1, 8, 1, 9, 1}, "mm/d")

	first, err := FirstOccurrence(s, "5 mm/d", ">", "YS")
	require.NoError(t, err)
	assert.Equal(t, float64(july1.AddDate(0, 0, 2).YearDay()), first.Values[0])
	assert.Equal(t, "1", first.Attrs.Units.Symbol)

	last, err := LastOccurrence(s, "5 mm/d", ">", "YS")
	require.NoError(t, err)
	assert.Equal(t, float64(july1.AddDate(0, 0, 4).YearDay()), last.Values[0])

	t.Run("no occurrence is NaN", func(t *testing.T) {
		none, err := FirstOccurrence(s, "100 mm/d", ">", "YS")
		require.NoError(t, err)
		assert.True(t, math.IsNaN(none.Values[0]))
	})
}

func TestDoyExtremes(t *testing.T) {
	// Highest on July 5th, lowest on July 2nd.
	s := dailySeries(t, july1, []float64{290, 288, 295, math.NaN(), 301, 293}, "K")

	hi, err := DoyMax(s, "YS")
	require.NoError(t, err)
	assert.Equal(t, float64(july1.AddDate(0, 0, 4).YearDay()), hi.Values[0])
	assert.Equal(t, "1", hi.Attrs.Units.Symbol)

	lo, err := DoyMin(s, "YS")
	require.NoError(t, err)
	assert.Equal(t, float64(july1.AddDate(0, 0, 1).YearDay()), lo.Values[0])

	t.Run("all missing is NaN", func(t *testing.T) {
		gap := dailySeries(t, july1, []float64{math.NaN(), math.NaN()}, "K")
		out, err := DoyMax(gap, "YS")
		require.NoError(t, err)
		assert.True(t, math.IsNaN(out.Values[0]))
	})
}

func TestSpellLength(t *testing.T) {
	// Runs above 25 degC: lengths 2 and 3.
	s := dailySeries(t, july1, []float64{26, 27, 10, 26, 26, 26, 10}, "degC")

	out, err := SpellLength(s, "25 C", ">", "max", "YS")
	require.NoError(t, err)
	assert.Equal(t, 3.0, out.Values[0])
	assert.Equal(t, "d", out.Attrs.Units.Symbol)

	mean, err := SpellLength(s, "25 C", ">", "mean", "YS")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, mean.Values[0], 1e-9)

	t.Run("no run reduces to zero", func(t *testing.T) {
		cold, err := SpellLength(s, "40 C", ">", "max", "YS")
		require.NoError(t, err)
		assert.Equal(t, 0.0, cold.Values[0])
	})
}

func TestStatistics(t *testing.T) {
	s := dailySeries(t, july1, []float64{1, 2, 3, 4}, "degC")
	out, err := Statistics(s, "mean", "YS")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, out.Values[0], 1e-9)
	assert.Equal(t, "degC", out.Attrs.Units.Symbol)
}

func TestThresholdedStatistics(t *testing.T) {
	s := dailySeries(t, july1, []float64{1, 10, 12, 2}, "degC")
	out, err := ThresholdedStatistics(s, "5 C", ">", "mean", "YS")
	require.NoError(t, err)
	assert.InDelta(t, 11.0, out.Values[0], 1e-9)

	t.Run("no qualifying values is NaN", func(t *testing.T) {
		out, err := ThresholdedStatistics(s, "50 C", ">", "mean", "YS")
		require.NoError(t, err)
		assert.True(t, math.IsNaN(out.Values[0]))
	})
}

func TestTemperatureSum(t *testing.T) {
	s := dailySeries(t, july1, []float64{22, 24, 18}, "degC")

	t.Run("above threshold", func(t *testing.T) {
		out, err := TemperatureSum(s, "20 C", ">", "YS")
		require.NoError(t, err)
		assert.InDelta(t, 2+4, out.Values[0], 1e-9)
		assert.Equal(t, "degC d", out.Attrs.Units.Symbol)
	})

	t.Run("below threshold is negated", func(t *testing.T) {
		out, err := TemperatureSum(s, "20 C", "<", "YS")
		require.NoError(t, err)
		assert.InDelta(t, 2.0, out.Values[0], 1e-9)
	})
}

func TestDegreeDays(t *testing.T) {
	// Heating degree days below 17 degC.
	s := dailySeries(t, july1, []float64{15, 16, 20}, "degC")

	hdd, err := DegreeDays(s, "17 C", "<", "YS")
	require.NoError(t, err)
	assert.InDelta(t, 2+1+0, hdd.Values[0], 1e-9)
	assert.Equal(t, "degC d", hdd.Attrs.Units.Symbol)

	gdd, err := DegreeDays(s, "14 C", ">", "YS")
	require.NoError(t, err)
	assert.InDelta(t, 1+2+6, gdd.Values[0], 1e-9)

	_, err = DegreeDays(s, "17 C", "==", "YS")
	require.Error(t, err)
}

func TestCountOccurrences(t *testing.T) {
	s := dailySeries(t, july1, []float64{290, 294, 295, 292}, "K")
	out, err := CountOccurrences(s, "20 C", ">", "YS")
	require.NoError(t, err)
	assert.Equal(t, 2.0, out.Values[0])
}

func TestDiurnalTemperatureRange(t *testing.T) {
	tasmin := dailySeries(t, july1, []float64{10, 12, 14}, "degC")
	// tasmax in Kelvin exercises the unit alignment.
	tasmax := dailySeries(t, july1, []float64{293.15, 297.15, 299.15}, "K") // 20, 24, 26 degC

	out, err := DiurnalTemperatureRange(tasmin, tasmax, "mean", "YS")
	require.NoError(t, err)
	assert.InDelta(t, (10+12+12)/3.0, out.Values[0], 1e-9)
	assert.Equal(t, "delta_degC", out.Attrs.Units.Symbol)

	t.Run("time axis mismatch", func(t *testing.T) {
		shifted := dailySeries(t, july1.AddDate(0, 0, 1), []float64{20, 24, 26}, "degC")
		_, err := DiurnalTemperatureRange(tasmin, shifted, "mean", "YS")
		require.Error(t, err)
	})
}

func TestInterdayDiurnalTemperatureRange(t *testing.T) {
	tasmin := dailySeries(t, july1, []float64{10, 10, 10}, "degC")
	tasmax := dailySeries(t, july1, []float64{20, 24, 21}, "degC")
	// DTR: 10, 14, 11 -> |diff|: 4, 3 -> mean 3.5.

	out, err := InterdayDiurnalTemperatureRange(tasmin, tasmax, "YS")
	require.NoError(t, err)
	assert.InDelta(t, 3.5, out.Values[0], 1e-9)

	t.Run("too short", func(t *testing.T) {
		short := dailySeries(t, july1, []float64{10}, "degC")
		shortMax := dailySeries(t, july1, []float64{20}, "degC")
		_, err := InterdayDiurnalTemperatureRange(short, shortMax, "YS")
		require.Error(t, err)
	})
}

func TestExtremeTemperatureRange(t *testing.T) {
	tasmin := dailySeries(t, july1, []float64{10, 8, 12}, "degC")
	tasmax := dailySeries(t, july1, []float64{20, 24, 21}, "degC")

	out, err := ExtremeTemperatureRange(tasmin, tasmax, "YS")
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	// Period max of tasmax is 24, period min of tasmin is 8.
	assert.InDelta(t, 16.0, out.Values[0], 1e-9)
	assert.Equal(t, "delta_degC", out.Attrs.Units.Symbol)

	t.Run("missing days are skipped", func(t *testing.T) {
		gapMin := dailySeries(t, july1, []float64{10, math.NaN(), 12}, "degC")
		gapMax := dailySeries(t, july1, []float64{20, math.NaN(), 21}, "degC")
		out, err := ExtremeTemperatureRange(gapMin, gapMax, "YS")
		require.NoError(t, err)
		assert.InDelta(t, 11.0, out.Values[0], 1e-9)
	})
}
