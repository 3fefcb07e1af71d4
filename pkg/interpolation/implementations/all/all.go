// Package all registers every interpolation strategy.
package all

import (
	_ "github.com/xaionaro-go/nsaphutils/pkg/interpolation/implementations/fourier"
	_ "github.com/xaionaro-go/nsaphutils/pkg/interpolation/implementations/linear"
	_ "github.com/xaionaro-go/nsaphutils/pkg/interpolation/implementations/movingaverage"
)
