// Package movingaverage implements gap filling with a centered moving
// average of the neighbouring valid values.
//
// For every missing position i the fill value is the arithmetic mean of
// the valid values within [i-WindowSize, i+WindowSize]. The window is
// clipped at the ends of the series, it is never mirrored or wrapped.
// If there is no valid value in the window, the BoundaryPolicy decides
// whether the position stays missing or the window is widened until
// a valid value is reached.
package movingaverage

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/registry"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/types"
	"github.com/xaionaro-go/nsaphutils/pkg/series"
)

func init() {
	registry.RegisterInterpolatorFactory(types.MethodMovingAverage, Factory{})
}

type Factory struct{}

func (Factory) NewInterpolator() (types.Interpolator, error) {
	return New(), nil
}

// Config is the subset of types.Options recognized by this strategy.
type Config struct {
	WindowSize     int                  `validate:"gte=1"`
	BoundaryPolicy types.BoundaryPolicy `validate:"required,oneof=leave widen"`
	FillSource     types.FillSource     `validate:"omitempty,oneof=pristine progressive"`
}

// ConfigFromOptions extracts the recognized fields.
func ConfigFromOptions(opts types.Options) Config {
	return Config{
		WindowSize:     opts.WindowSize,
		BoundaryPolicy: opts.BoundaryPolicy,
		FillSource:     opts.FillSource,
	}
}

type Interpolator struct{}

var _ types.Interpolator = (*Interpolator)(nil)

func New() *Interpolator {
	return &Interpolator{}
}

func (*Interpolator) Method() types.Method {
	return types.MethodMovingAverage
}

func (i *Interpolator) Interpolate(
	ctx context.Context,
	s series.Series,
	opts types.Options,
) (_ret *types.Result, _err error) {
	cfg := ConfigFromOptions(opts)
	logger.Tracef(ctx, "Interpolate(len:%d, cfg:%+v)", s.Len(), cfg)
	defer func() { logger.Tracef(ctx, "/Interpolate(len:%d, cfg:%+v): %v", s.Len(), cfg, _err) }()

	orig := series.FromSeries(s)
	filled, err := Run(orig.Values, cfg)
	if err != nil {
		return nil, err
	}

	result := types.NewResult(types.MethodMovingAverage, orig, filled)
	logger.Debugf(ctx, "moving average (window %d, %s): filled %d, unfilled %d", cfg.WindowSize, cfg.BoundaryPolicy, result.Filled, result.Unfilled)
	return result, nil
}

// Run returns a copy of values with the missing positions filled.
// The input slice is never modified.
func Run(values []float64, cfg Config) ([]float64, error) {
	if err := types.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: the series is empty", types.ErrInsufficientData)
	}
	if countValid(values) == 0 {
		return nil, fmt.Errorf("%w: all %d values are missing", types.ErrInsufficientData, len(values))
	}

	result := make([]float64, len(values))
	copy(result, values)

	// In the progressive mode the fills are read back from the result
	// itself, so a filled value may contribute to the positions after it.
	source := values
	if cfg.FillSource == types.FillSourceProgressive {
		source = result
	}

	for idx, v := range values {
		if !series.IsMissingValue(v) {
			continue
		}

		avg, ok := windowMean(source, idx, cfg.WindowSize)
		if !ok && cfg.BoundaryPolicy == types.BoundaryPolicyWiden {
			if dist := nearestValidDistance(source, idx); dist > 0 {
				avg, ok = windowMean(source, idx, dist)
			}
		}
		if !ok {
			continue
		}
		result[idx] = avg
	}

	return result, nil
}

// windowMean averages the valid values in [idx-halfWidth, idx+halfWidth]
// excluding idx itself.
func windowMean(values []float64, idx, halfWidth int) (float64, bool) {
	lo := max(idx-halfWidth, 0)
	hi := min(idx+halfWidth, len(values)-1)

	var (
		sum   float64
		count int
	)
	for pos := lo; pos <= hi; pos++ {
		if pos == idx {
			continue
		}
		v := values[pos]
		if series.IsMissingValue(v) {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// nearestValidDistance returns the distance to the closest valid value
// on either side of idx, or 0 if there is none.
func nearestValidDistance(values []float64, idx int) int {
	for dist := 1; idx-dist >= 0 || idx+dist < len(values); dist++ {
		if idx-dist >= 0 && !series.IsMissingValue(values[idx-dist]) {
			return dist
		}
		if idx+dist < len(values) && !series.IsMissingValue(values[idx+dist]) {
			return dist
		}
	}
	return 0
}

func countValid(values []float64) int {
	count := 0
	for _, v := range values {
		if !series.IsMissingValue(v) {
			count++
		}
	}
	return count
}
