package types

import (
	"github.com/xaionaro-go/nsaphutils/pkg/series"
)

// Result is the outcome of a single interpolation call.
type Result struct {
	Series *series.Float64
	Method Method

	// Filled is the amount of originally missing values that got filled.
	Filled int

	// Unfilled is the amount of values that are still missing. It is a
	// normal outcome (e.g. BoundaryPolicyLeave), not an error.
	Unfilled        int
	UnfilledIndices []int
}

// NewResult builds a Result from the original series and the filled values.
func NewResult(
	method Method,
	orig *series.Float64,
	filled []float64,
) *Result {
	result := &Result{
		Series: orig.WithValues(filled),
		Method: method,
	}
	for idx, v := range orig.Values {
		if !series.IsMissingValue(v) {
			continue
		}
		if series.IsMissingValue(filled[idx]) {
			result.Unfilled++
			result.UnfilledIndices = append(result.UnfilledIndices, idx)
			continue
		}
		result.Filled++
	}
	return result
}
