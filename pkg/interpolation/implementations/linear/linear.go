// Package linear fills every inner gap with a straight line between the
// valid values that surround it.
package linear

import (
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/gaprun"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/registry"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/types"
)

func init() {
	registry.RegisterInterpolatorFactory(types.MethodLinear, Factory{})
}

type Factory struct{}

func (Factory) NewInterpolator() (types.Interpolator, error) {
	return New(), nil
}

func New() *gaprun.Interpolator {
	return gaprun.New(types.MethodLinear, Gap{})
}

// Gap is the gaprun.GapInterpolator of this strategy.
type Gap struct{}

var _ gaprun.GapInterpolator = Gap{}

func (Gap) Interpolate(before, after []float64, gapLen int) []float64 {
	result := make([]float64, gapLen)
	if len(before) == 0 || len(after) == 0 {
		return result
	}
	v0 := before[len(before)-1]
	v1 := after[0]
	for i := 0; i < gapLen; i++ {
		t := float64(i+1) / float64(gapLen+1)
		result[i] = (1-t)*v0 + t*v1
	}
	return result
}
