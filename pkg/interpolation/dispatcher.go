package interpolation

import (
	"context"
	"fmt"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/registry"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/types"
	"github.com/xaionaro-go/nsaphutils/pkg/series"
)

// Dispatcher routes interpolation requests to strategies. The set of
// strategies is fixed at construction; a Dispatcher keeps no state
// across calls and is safe for concurrent use.
type Dispatcher struct {
	interpolators map[types.Method]types.Interpolator
}

// NewDispatcher resolves every given method to a registered strategy.
// Without methods, every registered strategy is used.
func NewDispatcher(
	ctx context.Context,
	methods ...types.Method,
) (*Dispatcher, error) {
	if len(methods) == 0 {
		methods = registry.RegisteredMethods()
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("no interpolation strategy is registered")
	}

	d := &Dispatcher{
		interpolators: make(map[types.Method]types.Interpolator, len(methods)),
	}

	var mErr *multierror.Error
	for _, method := range methods {
		factory, ok := registry.InterpolatorFactory(method)
		if !ok {
			mErr = multierror.Append(mErr, fmt.Errorf("%w: no strategy is registered for %v", types.ErrUnknownMethod, method))
			continue
		}

		interpolator, err := factory.NewInterpolator()
		logger.Debugf(ctx, "initializing interpolator %T for method %v result is %v", interpolator, method, err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to initialize the strategy for %v: %w", method, err))
			continue
		}
		if interpolator.Method() != method {
			mErr = multierror.Append(mErr, fmt.Errorf("the factory of %v returned a strategy of %v", method, interpolator.Method()))
			continue
		}

		d.interpolators[method] = interpolator
	}
	if err := mErr.ErrorOrNil(); err != nil {
		return nil, err
	}

	return d, nil
}

// Methods returns the methods supported by the dispatcher in ascending order.
func (d *Dispatcher) Methods() []types.Method {
	result := make([]types.Method, 0, len(d.interpolators))
	for method := range d.interpolators {
		result = append(result, method)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i] < result[j]
	})
	return result
}

// Interpolate fills the missing values of s with the strategy named by
// method (case-sensitive). Unknown names are rejected before anything
// is computed.
func (d *Dispatcher) Interpolate(
	ctx context.Context,
	s series.Series,
	method string,
	opts types.Options,
) (*types.Result, error) {
	m, err := types.ParseMethod(method)
	if err != nil {
		return nil, err
	}
	return d.InterpolateMethod(ctx, s, m, opts)
}

func (d *Dispatcher) InterpolateMethod(
	ctx context.Context,
	s series.Series,
	method types.Method,
	opts types.Options,
) (_ret *types.Result, _err error) {
	logger.Tracef(ctx, "InterpolateMethod(%v)", method)
	defer func() { logger.Tracef(ctx, "/InterpolateMethod(%v): %v", method, _err) }()

	interpolator, ok := d.interpolators[method]
	if !ok {
		return nil, fmt.Errorf("%w: %v", types.ErrUnknownMethod, method)
	}
	if s == nil || s.Len() == 0 {
		return nil, fmt.Errorf("%w: the series is empty", types.ErrInsufficientData)
	}
	if logger.FromCtx(ctx).Level() >= logger.LevelTrace {
		logger.Tracef(ctx, "options: %s", spew.Sdump(opts))
	}

	result, err := interpolator.Interpolate(ctx, s, opts)
	if err != nil {
		return nil, fmt.Errorf("unable to interpolate with %v: %w", method, err)
	}
	return result, nil
}
