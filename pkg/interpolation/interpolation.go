// Package interpolation fills missing values of ordered numeric series
// with a selectable strategy.
//
// Strategies live in implementations/ and register themselves in
// init(), so a program must import the ones it needs (or
// implementations/all) for their side effects.
package interpolation

import (
	"context"
	"fmt"
	"sync"

	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/types"
	"github.com/xaionaro-go/nsaphutils/pkg/series"
)

type (
	Method             = types.Method
	Options            = types.Options
	Result             = types.Result
	Interpolator       = types.Interpolator
	BoundaryPolicy     = types.BoundaryPolicy
	FillSource         = types.FillSource
	InvalidOptionError = types.InvalidOptionError
)

const (
	MethodMovingAverage = types.MethodMovingAverage
	MethodLinear        = types.MethodLinear
	MethodFourier       = types.MethodFourier

	BoundaryPolicyLeave = types.BoundaryPolicyLeave
	BoundaryPolicyWiden = types.BoundaryPolicyWiden

	FillSourcePristine    = types.FillSourcePristine
	FillSourceProgressive = types.FillSourceProgressive
)

var (
	ErrUnknownMethod    = types.ErrUnknownMethod
	ErrInvalidOptions   = types.ErrInvalidOptions
	ErrInsufficientData = types.ErrInsufficientData
)

func DefaultOptions() Options {
	return types.DefaultOptions()
}

func ParseMethod(s string) (Method, error) {
	return types.ParseMethod(s)
}

var (
	defaultDispatcher       *Dispatcher
	defaultDispatcherLocker sync.Mutex
)

// DefaultDispatcher returns the dispatcher over every registered
// strategy. It is built on the first successful call.
func DefaultDispatcher(ctx context.Context) (*Dispatcher, error) {
	defaultDispatcherLocker.Lock()
	defer defaultDispatcherLocker.Unlock()
	if defaultDispatcher != nil {
		return defaultDispatcher, nil
	}

	d, err := NewDispatcher(ctx)
	if err != nil {
		return nil, err
	}
	defaultDispatcher = d
	return d, nil
}

// Interpolate fills the missing values of s with the strategy named by
// method using the default dispatcher.
func Interpolate(
	ctx context.Context,
	s series.Series,
	method string,
	opts Options,
) (*Result, error) {
	d, err := DefaultDispatcher(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the default dispatcher: %w", err)
	}
	return d.Interpolate(ctx, s, method, opts)
}
