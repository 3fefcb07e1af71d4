// Package fourier fills gaps in periodic series by extending the
// dominant spectral components of the surrounding values into the gap.
package fourier

import (
	"fmt"
	"math"

	"github.com/brettbuddin/fourier"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/gaprun"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/implementations/linear"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/registry"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/types"
)

const (
	// MaxWindowSize is the maximum number of values used for FFT analysis.
	MaxWindowSize = 1024

	// MinRequiredSamples is the minimum number of valid values needed on
	// each side of the gap to perform a meaningful spectral analysis.
	// With less context the gap is filled linearly.
	MinRequiredSamples = 4

	// SieveSensitivity determines how far a spectral peak must stand
	// above the average magnitude to be considered significant.
	SieveSensitivity = 2.5

	// SpectrumNormalization scales the magnitudes from a two-sided forward FFT
	// to their real amplitudes for synthesis.
	SpectrumNormalization = 2.0
)

func init() {
	registry.RegisterInterpolatorFactory(types.MethodFourier, Factory{})
}

type Factory struct{}

func (Factory) NewInterpolator() (types.Interpolator, error) {
	return New(), nil
}

func New() *gaprun.Interpolator {
	return gaprun.New(types.MethodFourier, Gap{})
}

// Gap is the gaprun.GapInterpolator of this strategy.
type Gap struct{}

var _ gaprun.GapInterpolator = Gap{}

// Interpolate fills a gap using a bidirectional spectral sieve.
//
// A power-of-two window of values is taken right before and right after
// the gap. Each window is transformed with a forward FFT and only the
// spectral peaks standing above SieveSensitivity times the average
// magnitude are kept. The kept components are synthesized into the gap
// forward (from the past) and backward (from the future), and the two
// projections are blended with the cubic weight 3t^2-2t^3.
//
// Finally the offset between the projections and the real values at
// both stitch points is removed with a linear trend, so the filled run
// joins its neighbours without a jump.
func (Gap) Interpolate(before, after []float64, gapLen int) []float64 {
	if len(before) < MinRequiredSamples || len(after) < MinRequiredSamples {
		return linear.Gap{}.Interpolate(before, after, gapLen)
	}

	n := min(len(before), MaxWindowSize, len(after))
	n = largestPowerOfTwo(n)

	windowBefore := before[len(before)-n:]
	windowAfter := after[:n]

	forward, err := extendSpectralSieve(windowBefore, gapLen, true)
	if err != nil {
		return linear.Gap{}.Interpolate(before, after, gapLen)
	}
	backward, err := extendSpectralSieve(windowAfter, gapLen, false)
	if err != nil {
		return linear.Gap{}.Interpolate(before, after, gapLen)
	}

	vStart := windowBefore[len(windowBefore)-1]
	vEnd := windowAfter[0]
	startDiff := forward[0] - vStart
	endDiff := backward[gapLen-1] - vEnd

	result := make([]float64, gapLen)
	for i := range gapLen {
		t := float64(i+1) / float64(gapLen+1)
		w := t * t * (3 - 2*t)

		val := (1-w)*forward[i] + w*backward[i]
		val -= (1-w)*startDiff + w*endDiff

		result[i] = val
	}

	return result
}

func largestPowerOfTwo(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

func extendSpectralSieve(values []float64, gapLen int, forward bool) ([]float64, error) {
	n := len(values)
	coeffs := make([]complex128, n)
	for i, v := range values {
		coeffs[i] = complex(v, 0)
	}
	if err := fourier.Forward(coeffs); err != nil {
		return nil, fmt.Errorf("unable to perform the forward FFT over %d values: %w", n, err)
	}

	magnitudes := make([]float64, len(coeffs))
	for i, c := range coeffs {
		magnitudes[i] = math.Hypot(real(c), imag(c))
	}

	var threshold float64
	for _, m := range magnitudes {
		threshold += m
	}
	threshold = (threshold / float64(len(magnitudes))) * SieveSensitivity

	type peak struct {
		idx   int
		coeff complex128
	}
	var peaks []peak
	for i := 1; i < len(coeffs)/2; i++ {
		if magnitudes[i] > threshold && magnitudes[i] > magnitudes[i-1] && magnitudes[i] > magnitudes[i+1] {
			peaks = append(peaks, peak{i, coeffs[i]})
		}
	}

	result := make([]float64, gapLen)
	invN := 1.0 / float64(n)
	for i := range gapLen {
		var t float64
		if forward {
			t = float64(n + i)
		} else {
			t = float64(i - gapLen)
		}

		var sum float64
		for _, p := range peaks {
			phase := 2.0 * math.Pi * float64(p.idx) * t * invN
			mag := magnitudes[p.idx] * SpectrumNormalization * invN
			origPhase := math.Atan2(imag(p.coeff), real(p.coeff))
			sum += mag * math.Cos(phase+origPhase)
		}
		// DC
		sum += real(coeffs[0]) * invN
		result[i] = sum
	}
	return result, nil
}
