// Package gaprun adapts gap-wise interpolators (the ones that fill a
// single run of missing values from its surroundings) to the
// types.Interpolator interface.
package gaprun

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/types"
	"github.com/xaionaro-go/nsaphutils/pkg/series"
)

// GapInterpolator fills a single run of gapLen missing values given the
// valid values right before and right after it. Both before and after
// are non-empty and contain no missing values.
type GapInterpolator interface {
	Interpolate(before, after []float64, gapLen int) []float64
}

// Gap is a maximal run of consecutive missing values.
type Gap struct {
	Start  int
	Length int
}

func (g Gap) End() int {
	return g.Start + g.Length
}

// Gaps returns every gap of values in ascending order.
func Gaps(values []float64) []Gap {
	var result []Gap
	for idx := 0; idx < len(values); idx++ {
		if !series.IsMissingValue(values[idx]) {
			continue
		}
		start := idx
		for idx < len(values) && series.IsMissingValue(values[idx]) {
			idx++
		}
		result = append(result, Gap{Start: start, Length: idx - start})
	}
	return result
}

// Config is the subset of types.Options recognized by gap-wise strategies.
type Config struct {
	MaxGapLength int `validate:"gte=0"`
}

func ConfigFromOptions(opts types.Options) Config {
	return Config{
		MaxGapLength: opts.MaxGapLength,
	}
}

// Fill returns a copy of values where every gap that has valid values on
// both sides (and is not longer than cfg.MaxGapLength, if set) is filled
// by gapInterpolator. Gaps touching either end of the series stay missing.
func Fill(
	values []float64,
	gapInterpolator GapInterpolator,
	cfg Config,
) ([]float64, error) {
	if err := types.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: the series is empty", types.ErrInsufficientData)
	}

	gaps := Gaps(values)
	if len(gaps) == 1 && gaps[0].Length == len(values) {
		return nil, fmt.Errorf("%w: all %d values are missing", types.ErrInsufficientData, len(values))
	}

	result := make([]float64, len(values))
	copy(result, values)

	for gapIdx, gap := range gaps {
		if gap.Start == 0 || gap.End() == len(values) {
			continue
		}
		if cfg.MaxGapLength > 0 && gap.Length > cfg.MaxGapLength {
			continue
		}

		beforeStart := 0
		if gapIdx > 0 {
			beforeStart = gaps[gapIdx-1].End()
		}
		afterEnd := len(values)
		if gapIdx+1 < len(gaps) {
			afterEnd = gaps[gapIdx+1].Start
		}

		fill := gapInterpolator.Interpolate(
			values[beforeStart:gap.Start],
			values[gap.End():afterEnd],
			gap.Length,
		)
		if len(fill) != gap.Length {
			return nil, fmt.Errorf("%T returned %d values for a gap of length %d", gapInterpolator, len(fill), gap.Length)
		}
		copy(result[gap.Start:gap.End()], fill)
	}

	return result, nil
}

// Interpolator is a types.Interpolator filling gaps one by one.
type Interpolator struct {
	method          types.Method
	gapInterpolator GapInterpolator
}

var _ types.Interpolator = (*Interpolator)(nil)

func New(
	method types.Method,
	gapInterpolator GapInterpolator,
) *Interpolator {
	return &Interpolator{
		method:          method,
		gapInterpolator: gapInterpolator,
	}
}

func (i *Interpolator) Method() types.Method {
	return i.method
}

func (i *Interpolator) Interpolate(
	ctx context.Context,
	s series.Series,
	opts types.Options,
) (_ret *types.Result, _err error) {
	cfg := ConfigFromOptions(opts)
	logger.Tracef(ctx, "Interpolate[%s](len:%d, cfg:%+v)", i.method, s.Len(), cfg)
	defer func() { logger.Tracef(ctx, "/Interpolate[%s](len:%d, cfg:%+v): %v", i.method, s.Len(), cfg, _err) }()

	orig := series.FromSeries(s)
	filled, err := Fill(orig.Values, i.gapInterpolator, cfg)
	if err != nil {
		return nil, err
	}

	result := types.NewResult(i.method, orig, filled)
	logger.Debugf(ctx, "%s: filled %d, unfilled %d", i.method, result.Filled, result.Unfilled)
	return result, nil
}
