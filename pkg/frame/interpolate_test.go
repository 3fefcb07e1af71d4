package frame

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation"
	_ "github.com/xaionaro-go/nsaphutils/pkg/interpolation/implementations/all"
	"github.com/xaionaro-go/nsaphutils/pkg/metrics"
)

func TestInterpolateFrame(t *testing.T) {
	f, err := New(
		[]string{"zip", "date", "pm25", "no2"},
		[][]string{
			{"B", "3", "30", "NA"},
			{"A", "2", "NA", "1"},
			{"B", "1", "10", "NA"},
			{"A", "1", "1", "2"},
			{"B", "2", "NA", "NA"},
			{"A", "3", "3", "3"},
		},
	)
	require.NoError(t, err)

	opts := interpolation.DefaultOptions()
	opts.WindowSize = 1

	m := metrics.New()
	report, err := InterpolateFrame(context.Background(), f, Request{
		Variables: []string{"pm25", "no2"},
		Method:    "ma",
		TimeVar:   "date",
		ByVar:     "zip",
		Options:   opts,
		Workers:   3,
		Metrics:   m,
	})
	require.NoError(t, err)

	require.Equal(t, [][]string{
		{"A", "1", "1", "2"},
		{"B", "1", "10", "NA"},
		{"A", "2", "2", "1"},
		{"B", "2", "20", "NA"},
		{"A", "3", "3", "3"},
		{"B", "3", "30", "NA"},
	}, f.Records)

	require.Equal(t, VariableReport{Groups: 2, Values: 6, Filled: 2}, report.PerVariable["pm25"])
	require.Equal(t, VariableReport{Groups: 2, Values: 6, Unfilled: 3}, report.PerVariable["no2"])
	require.Equal(t, 3, report.Unfilled("no2"))
}

func TestInterpolateFrameErrors(t *testing.T) {
	newFrame := func() *Frame {
		f, err := New([]string{"t", "v"}, [][]string{{"1", "1"}, {"2", "NA"}, {"3", "3"}})
		require.NoError(t, err)
		return f
	}
	ctx := context.Background()

	_, err := InterpolateFrame(ctx, newFrame(), Request{Variables: []string{"v"}, Method: "bogus", TimeVar: "t"})
	require.ErrorIs(t, err, interpolation.ErrUnknownMethod)

	_, err = InterpolateFrame(ctx, newFrame(), Request{Variables: []string{"x"}, Method: "ma", TimeVar: "t", Options: interpolation.DefaultOptions()})
	require.ErrorIs(t, err, ErrColumnNotFound)

	_, err = InterpolateFrame(ctx, newFrame(), Request{Method: "ma"})
	require.Error(t, err)

	opts := interpolation.DefaultOptions()
	opts.WindowSize = 0
	_, err = InterpolateFrame(ctx, newFrame(), Request{Variables: []string{"v"}, Method: "ma", TimeVar: "t", Options: opts})
	require.ErrorIs(t, err, interpolation.ErrInvalidOptions)

	cancelledCtx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = InterpolateFrame(cancelledCtx, newFrame(), Request{Variables: []string{"v"}, Method: "ma", Options: interpolation.DefaultOptions()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestInterpolateFrameSingleGroup(t *testing.T) {
	f, err := New([]string{"t", "v"}, [][]string{{"1", "1"}, {"2", "NA"}, {"3", "3"}})
	require.NoError(t, err)

	report, err := InterpolateFrame(context.Background(), f, Request{
		Variables: []string{"v"},
		Method:    "linear",
		Options:   interpolation.DefaultOptions(),
	})
	require.NoError(t, err)
	require.Equal(t, "2", f.Records[1][1])
	require.Equal(t, 1, report.PerVariable["v"].Filled)
}

func TestInterpolateFrameKeepsFrameOnFailure(t *testing.T) {
	records := [][]string{{"3", "3"}, {"1", "1"}, {"2", "NA"}}
	f, err := New([]string{"t", "v"}, records)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = InterpolateFrame(ctx, f, Request{Variables: []string{"v", "x"}, Method: "ma", TimeVar: "t", Options: interpolation.DefaultOptions()})
	require.ErrorIs(t, err, ErrColumnNotFound)
	require.Equal(t, [][]string{{"3", "3"}, {"1", "1"}, {"2", "NA"}}, f.Records)

	cancelledCtx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = InterpolateFrame(cancelledCtx, f, Request{Variables: []string{"v"}, Method: "ma", TimeVar: "t", Options: interpolation.DefaultOptions()})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, [][]string{{"3", "3"}, {"1", "1"}, {"2", "NA"}}, f.Records)

	_, err = InterpolateFrame(ctx, f, Request{Variables: []string{"v"}, Method: "ma", TimeVar: "t", Options: interpolation.DefaultOptions()})
	require.NoError(t, err)
	require.Equal(t, [][]string{{"1", "1"}, {"2", "2"}, {"3", "3"}}, f.Records)
}
