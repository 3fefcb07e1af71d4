package interpolation_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation"
	_ "github.com/xaionaro-go/nsaphutils/pkg/interpolation/implementations/all"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/types"
	"github.com/xaionaro-go/nsaphutils/pkg/series"
)

var na = math.NaN()

func newDispatcher(t *testing.T) *interpolation.Dispatcher {
	d, err := interpolation.NewDispatcher(context.Background())
	require.NoError(t, err)
	return d
}

func requireSameValues(t *testing.T, expected, actual []float64) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for idx := range expected {
		if math.IsNaN(expected[idx]) {
			require.True(t, math.IsNaN(actual[idx]), "index %d: expected a missing value, got %v", idx, actual[idx])
			continue
		}
		require.Equal(t, expected[idx], actual[idx], "index %d", idx)
	}
}

func TestNewDispatcher(t *testing.T) {
	d := newDispatcher(t)
	require.Equal(t, []types.Method{
		types.MethodMovingAverage,
		types.MethodLinear,
		types.MethodFourier,
	}, d.Methods())

	d, err := interpolation.NewDispatcher(context.Background(), types.MethodMovingAverage)
	require.NoError(t, err)
	require.Equal(t, []types.Method{types.MethodMovingAverage}, d.Methods())

	_, err = interpolation.NewDispatcher(context.Background(), types.MethodLinear, types.EndOfMethod)
	require.ErrorIs(t, err, types.ErrUnknownMethod)
}

func TestDispatcherUnknownMethod(t *testing.T) {
	d := newDispatcher(t)
	for _, method := range []string{"bogus", "MA", "", " ma"} {
		t.Run(method, func(t *testing.T) {
			_, err := d.Interpolate(context.Background(), series.New([]float64{1, na, 3}), method, types.DefaultOptions())
			require.ErrorIs(t, err, types.ErrUnknownMethod)
		})
	}

	partial, err := interpolation.NewDispatcher(context.Background(), types.MethodLinear)
	require.NoError(t, err)
	_, err = partial.Interpolate(context.Background(), series.New([]float64{1, na, 3}), "ma", types.DefaultOptions())
	require.ErrorIs(t, err, types.ErrUnknownMethod)
}

func TestDispatcherErrors(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	for _, method := range d.Methods() {
		t.Run(method.String(), func(t *testing.T) {
			_, err := d.InterpolateMethod(ctx, series.New(nil), method, types.DefaultOptions())
			require.ErrorIs(t, err, types.ErrInsufficientData)

			_, err = d.InterpolateMethod(ctx, series.New([]float64{na, na, na}), method, types.DefaultOptions())
			require.ErrorIs(t, err, types.ErrInsufficientData)
		})
	}

	opts := types.DefaultOptions()
	opts.WindowSize = 0
	_, err := d.Interpolate(ctx, series.New([]float64{1, na, 3}), "ma", opts)
	require.ErrorIs(t, err, types.ErrInvalidOptions)
	var optErr *types.InvalidOptionError
	require.ErrorAs(t, err, &optErr)
	require.Equal(t, "WindowSize", optErr.Field)

	// strategies validate only the fields they recognize
	_, err = d.Interpolate(ctx, series.New([]float64{1, na, 3}), "linear", opts)
	require.NoError(t, err)
}

func TestDispatcherMovingAverage(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	opts := types.DefaultOptions()
	opts.WindowSize = 1

	result, err := d.Interpolate(ctx, series.New([]float64{1, na, 3}), "ma", opts)
	require.NoError(t, err)
	requireSameValues(t, []float64{1, 2, 3}, result.Series.Values)

	opts.BoundaryPolicy = types.BoundaryPolicyLeave
	result, err = d.Interpolate(ctx, series.New([]float64{na, na, 5, na}), "ma", opts)
	require.NoError(t, err)
	requireSameValues(t, []float64{na, 5, 5, 5}, result.Series.Values)
	require.Equal(t, 1, result.Unfilled)
}

func TestDispatcherProperties(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	complete := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}
	gappy := []float64{3, na, 4, 1, na, na, 2, 6, na, 3}

	for _, method := range d.Methods() {
		t.Run(method.String(), func(t *testing.T) {
			result, err := d.InterpolateMethod(ctx, series.New(complete), method, types.DefaultOptions())
			require.NoError(t, err)
			requireSameValues(t, complete, result.Series.Values)
			assert.Zero(t, result.Filled)
			assert.Zero(t, result.Unfilled)

			input := series.New(append([]float64(nil), gappy...))
			result, err = d.InterpolateMethod(ctx, input, method, types.DefaultOptions())
			require.NoError(t, err)
			require.Equal(t, len(gappy), result.Series.Len())
			requireSameValues(t, gappy, input.Values)
			for idx, v := range gappy {
				if !math.IsNaN(v) {
					require.Equal(t, v, result.Series.Values[idx], "index %d", idx)
				}
			}

			again, err := d.InterpolateMethod(ctx, result.Series, method, types.DefaultOptions())
			require.NoError(t, err)
			requireSameValues(t, result.Series.Values, again.Series.Values)
		})
	}
}

func TestDispatcherConcurrent(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := d.Interpolate(ctx, series.New([]float64{1, na, 3}), "ma", types.DefaultOptions())
			if assert.NoError(t, err) {
				assert.Equal(t, 2.0, result.Series.Values[1])
			}
		}()
	}
	wg.Wait()
}

func TestInterpolate(t *testing.T) {
	result, err := interpolation.Interpolate(context.Background(), series.New([]float64{1, na, 3}), "linear", interpolation.DefaultOptions())
	require.NoError(t, err)
	requireSameValues(t, []float64{1, 2, 3}, result.Series.Values)

	_, err = interpolation.Interpolate(context.Background(), series.New([]float64{1}), "bogus", interpolation.DefaultOptions())
	require.ErrorIs(t, err, interpolation.ErrUnknownMethod)
}
