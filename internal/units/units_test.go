package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("celsius threshold", func(t *testing.T) {
		q, err := Parse("20 C")
		require.NoError(t, err)
		assert.Equal(t, 20.0, q.Value)
		assert.Equal(t, "degC", q.Unit.Symbol)
	})

	t.Run("kelvin threshold", func(t *testing.T) {
		q, err := Parse("293.15 K")
		require.NoError(t, err)
		assert.Equal(t, 293.15, q.Value)
		assert.Equal(t, "K", q.Unit.Symbol)
	})

	t.Run("precipitation flux with spaces", func(t *testing.T) {
		q, err := Parse("1 kg m-2 s-1")
		require.NoError(t, err)
		assert.Equal(t, 1.0, q.Value)
		assert.Equal(t, "kg m-2 s-1", q.Unit.Symbol)
	})

	t.Run("rate spelling variants", func(t *testing.T) {
		for _, spelling := range []string{"5 mm/d", "5 mm/day", "5 mm d-1"} {
			q, err := Parse(spelling)
			require.NoError(t, err, spelling)
			assert.Equal(t, "mm/d", q.Unit.Symbol, spelling)
		}
	})

	t.Run("bare number is dimensionless", func(t *testing.T) {
		q, err := Parse("0.5")
		require.NoError(t, err)
		assert.Equal(t, 0.5, q.Value)
		assert.Equal(t, "1", q.Unit.Symbol)
	})

	t.Run("unknown unit", func(t *testing.T) {
		_, err := Parse("3 furlongs")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownUnit)
	})

	t.Run("empty string", func(t *testing.T) {
		_, err := Parse("  ")
		require.Error(t, err)
	})
}

func TestConvert_Temperature(t *testing.T) {
	degC := MustUnit("degC")
	degF := MustUnit("degF")
	kelvin := MustUnit("K")

	tests := []struct {
		name  string
		in    string
		to    Unit
		want  float64
		delta float64
	}{
		{"C to K", "20 C", kelvin, 293.15, 1e-9},
		{"K to C", "293.15 K", degC, 20.0, 1e-9},
		{"F freezing to C", "32 F", degC, 0.0, 1e-9},
		{"F boiling to K", "212 F", kelvin, 373.15, 1e-9},
		{"C to F", "100 C", degF, 212.0, 1e-9},
		{"K identity", "255 K", kelvin, 255.0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := Parse(tc.in)
			require.NoError(t, err)
			out, err := Convert(q, tc.to)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, out.Value, tc.delta)
			assert.Equal(t, tc.to.Symbol, out.Unit.Symbol)
		})
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	degC := MustUnit("degC")
	kelvin := MustUnit("K")

	q := Quantity{Value: 21.7, Unit: degC}
	k, err := Convert(q, kelvin)
	require.NoError(t, err)
	back, err := Convert(k, degC)
	require.NoError(t, err)
	assert.InDelta(t, q.Value, back.Value, 1e-9)
}

func TestConvert_HydrologicalBridge(t *testing.T) {
	t.Run("flux to rate", func(t *testing.T) {
		q, err := Parse("1 kg m-2 s-1")
		require.NoError(t, err)
		out, err := Convert(q, MustUnit("mm/d"))
		require.NoError(t, err)
		assert.InDelta(t, 86400.0, out.Value, 1e-9)
	})

	t.Run("rate to flux", func(t *testing.T) {
		q, err := Parse("86400 mm/d")
		require.NoError(t, err)
		out, err := Convert(q, MustUnit("kg m-2 s-1"))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, out.Value, 1e-9)
	})

	t.Run("hourly rate to flux", func(t *testing.T) {
		q, err := Parse("3600 mm/h")
		require.NoError(t, err)
		out, err := Convert(q, MustUnit("kg m-2 s-1"))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, out.Value, 1e-9)
	})
}

func TestConvert_Speed(t *testing.T) {
	q, err := Parse("36 km/h")
	require.NoError(t, err)
	out, err := Convert(q, MustUnit("m s-1"))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, out.Value, 1e-9)
}

func TestConvert_Incompatible(t *testing.T) {
	q := Quantity{Value: 5, Unit: MustUnit("degC")}
	_, err := Convert(q, MustUnit("mm"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompatibleUnits)
}

func TestConvertValue_NaNPassesThrough(t *testing.T) {
	v, err := ConvertValue(math.NaN(), MustUnit("degC"), MustUnit("K"))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))
}

func TestDeltaOf(t *testing.T) {
	assert.Equal(t, "delta_degC", DeltaOf(MustUnit("degC")).Symbol)
	assert.Equal(t, "delta_degF", DeltaOf(MustUnit("degF")).Symbol)
	assert.Equal(t, "K", DeltaOf(MustUnit("K")).Symbol)

	// A 5 degC difference is a 9 degF difference, no affine offset.
	v, err := ConvertValue(5, MustUnit("delta_degC"), MustUnit("delta_degF"))
	require.NoError(t, err)
	assert.InDelta(t, 9.0, v, 1e-9)
}

func TestAggUnit(t *testing.T) {
	degC := MustUnit("degC")
	assert.Equal(t, "d", AggUnit(degC, "count").Symbol)
	assert.Equal(t, "degC d", AggUnit(degC, "delta_prod").Symbol)
	assert.Equal(t, "degC", AggUnit(degC, "mean").Symbol)
}
