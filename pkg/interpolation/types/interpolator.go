// Package types contains the definitions shared by the interpolation
// dispatcher, the registry and the strategy implementations.
package types

import (
	"context"

	"github.com/xaionaro-go/nsaphutils/pkg/series"
)

// Interpolator is a strategy that fills missing values of a series.
//
// Implementations must not modify the input series and must keep
// every present value unchanged.
type Interpolator interface {
	Method() Method
	Interpolate(ctx context.Context, s series.Series, opts Options) (*Result, error)
}

// Factory constructs an Interpolator.
type Factory interface {
	NewInterpolator() (Interpolator, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func() (Interpolator, error)

func (fn FactoryFunc) NewInterpolator() (Interpolator, error) {
	return fn()
}
