package movingaverage

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/types"
	"github.com/xaionaro-go/nsaphutils/pkg/series"
)

var na = math.NaN()

func requireValuesEqual(t *testing.T, expected, actual []float64) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for idx := range expected {
		if math.IsNaN(expected[idx]) {
			require.True(t, math.IsNaN(actual[idx]), "expected a missing value at %d, got %v", idx, actual[idx])
			continue
		}
		require.InDelta(t, expected[idx], actual[idx], 1e-9, "index %d", idx)
	}
}

func cfg(window int, policy types.BoundaryPolicy, source types.FillSource) Config {
	return Config{
		WindowSize:     window,
		BoundaryPolicy: policy,
		FillSource:     source,
	}
}

func TestRun(t *testing.T) {
	for _, tc := range []struct {
		name     string
		input    []float64
		cfg      Config
		expected []float64
	}{
		{
			name:     "single_gap",
			input:    []float64{1, na, 3},
			cfg:      cfg(1, types.BoundaryPolicyWiden, types.FillSourcePristine),
			expected: []float64{1, 2, 3},
		},
		{
			name:     "leave_at_the_edge",
			input:    []float64{na, na, 5, na},
			cfg:      cfg(1, types.BoundaryPolicyLeave, types.FillSourcePristine),
			expected: []float64{na, 5, 5, 5},
		},
		{
			name:     "widen_at_the_edge",
			input:    []float64{na, na, 5, na},
			cfg:      cfg(1, types.BoundaryPolicyWiden, types.FillSourcePristine),
			expected: []float64{5, 5, 5, 5},
		},
		{
			name:     "window_is_clipped",
			input:    []float64{na, 2, 4, 6},
			cfg:      cfg(2, types.BoundaryPolicyLeave, types.FillSourcePristine),
			expected: []float64{3, 2, 4, 6},
		},
		{
			name:     "pristine_ignores_earlier_fills",
			input:    []float64{1, na, na, na, 9},
			cfg:      cfg(1, types.BoundaryPolicyWiden, types.FillSourcePristine),
			expected: []float64{1, 1, 5, 9, 9},
		},
		{
			name:     "progressive_uses_earlier_fills",
			input:    []float64{1, na, na, na, 9},
			cfg:      cfg(1, types.BoundaryPolicyWiden, types.FillSourceProgressive),
			expected: []float64{1, 1, 1, 5, 9},
		},
		{
			name:     "empty_fill_source_means_pristine",
			input:    []float64{1, na, na, na, 9},
			cfg:      cfg(1, types.BoundaryPolicyWiden, ""),
			expected: []float64{1, 1, 5, 9, 9},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			input := append([]float64(nil), tc.input...)
			result, err := Run(input, tc.cfg)
			require.NoError(t, err)
			requireValuesEqual(t, tc.expected, result)
			requireValuesEqual(t, tc.input, input)
		})
	}
}

func TestRunLongLeadingGap(t *testing.T) {
	values := make([]float64, 100)
	for idx := range values {
		values[idx] = float64(idx + 1)
	}
	for idx := 10; idx < 20; idx++ {
		values[idx] = na
	}

	result, err := Run(values[10:21], cfg(1, types.BoundaryPolicyWiden, types.FillSourcePristine))
	require.NoError(t, err)
	for idx, v := range result {
		require.Equal(t, 21.0, v, "index %d", idx)
	}
}

func TestRunErrors(t *testing.T) {
	t.Run("zero_window", func(t *testing.T) {
		_, err := Run([]float64{1, na, 3}, cfg(0, types.BoundaryPolicyWiden, types.FillSourcePristine))
		require.ErrorIs(t, err, types.ErrInvalidOptions)
		var optErr *types.InvalidOptionError
		require.ErrorAs(t, err, &optErr)
		require.Equal(t, "WindowSize", optErr.Field)
	})
	t.Run("negative_window", func(t *testing.T) {
		_, err := Run([]float64{1, na, 3}, cfg(-1, types.BoundaryPolicyWiden, types.FillSourcePristine))
		require.ErrorIs(t, err, types.ErrInvalidOptions)
	})
	t.Run("unknown_boundary_policy", func(t *testing.T) {
		_, err := Run([]float64{1, na, 3}, cfg(1, "bogus", types.FillSourcePristine))
		var optErr *types.InvalidOptionError
		require.ErrorAs(t, err, &optErr)
		require.Equal(t, "BoundaryPolicy", optErr.Field)
	})
	t.Run("unknown_fill_source", func(t *testing.T) {
		_, err := Run([]float64{1, na, 3}, cfg(1, types.BoundaryPolicyLeave, "future"))
		var optErr *types.InvalidOptionError
		require.ErrorAs(t, err, &optErr)
		require.Equal(t, "FillSource", optErr.Field)
	})
	t.Run("all_missing", func(t *testing.T) {
		_, err := Run([]float64{na, na}, cfg(1, types.BoundaryPolicyWiden, types.FillSourcePristine))
		require.ErrorIs(t, err, types.ErrInsufficientData)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := Run(nil, cfg(1, types.BoundaryPolicyWiden, types.FillSourcePristine))
		require.ErrorIs(t, err, types.ErrInsufficientData)
	})
}

func TestInterpolate(t *testing.T) {
	ctx := context.Background()
	opts := types.DefaultOptions()
	opts.WindowSize = 1
	opts.BoundaryPolicy = types.BoundaryPolicyLeave

	s := series.New([]float64{na, na, 5, na})
	s.Name = "pm25"
	result, err := New().Interpolate(ctx, s, opts)
	require.NoError(t, err)
	require.Equal(t, types.MethodMovingAverage, result.Method)
	require.Equal(t, "pm25", result.Series.Name)
	requireValuesEqual(t, []float64{na, 5, 5, 5}, result.Series.Values)
	assert.Equal(t, 2, result.Filled)
	assert.Equal(t, 1, result.Unfilled)
	assert.Equal(t, []int{0}, result.UnfilledIndices)
	assert.Equal(t, 3, s.CountMissing())
}

func TestProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	for _, source := range []types.FillSource{types.FillSourcePristine, types.FillSourceProgressive} {
		for _, window := range []int{1, 2, 4, 7} {
			values := make([]float64, 200)
			for idx := range values {
				values[idx] = rng.Float64() * 100
				if rng.Intn(3) == 0 {
					values[idx] = na
				}
			}
			values[100] = 42

			c := cfg(window, types.BoundaryPolicyWiden, source)
			result, err := Run(values, c)
			require.NoError(t, err)
			require.Len(t, result, len(values))
			for idx, v := range values {
				require.False(t, math.IsNaN(result[idx]), "widening must fill everything; index %d", idx)
				if !math.IsNaN(v) {
					require.Equal(t, v, result[idx], "present values must stay unchanged; index %d", idx)
				}
			}

			again, err := Run(result, c)
			require.NoError(t, err)
			requireValuesEqual(t, result, again)
		}
	}
}

func BenchmarkRun(b *testing.B) {
	rng := rand.New(rand.NewSource(0))
	values := make([]float64, 100000)
	for idx := range values {
		values[idx] = rng.Float64()
		if rng.Intn(4) == 0 {
			values[idx] = na
		}
	}

	for _, source := range []types.FillSource{types.FillSourcePristine, types.FillSourceProgressive} {
		b.Run(string(source), func(b *testing.B) {
			c := cfg(4, types.BoundaryPolicyWiden, source)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = Run(values, c)
			}
		})
	}
}
