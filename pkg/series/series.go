// Package series provides the ordered numeric series consumed and produced
// by the interpolation strategies.
package series

import (
	"fmt"
	"math"
	"time"
)

// Series is anything that looks like an ordered sequence of numeric
// observations where a missing observation is marked with NaN.
type Series interface {
	Len() int
	At(idx int) float64
}

// Missing is the sentinel used to mark a missing observation.
var Missing = math.NaN()

// IsMissingValue reports whether v marks a missing observation.
func IsMissingValue(v float64) bool {
	return math.IsNaN(v)
}

// Float64 is the concrete Series implementation.
//
// Index is optional: when empty the series is indexed by position.
// The index is assumed to be monotonic and is never re-sorted.
type Float64 struct {
	Index  []time.Time
	Values []float64
	Name   string
}

var _ Series = (*Float64)(nil)

// New creates a positionally indexed series from values.
func New(values []float64) *Float64 {
	return &Float64{
		Values: values,
	}
}

// NewWithIndex creates a series with an explicit time index.
func NewWithIndex(index []time.Time, values []float64) (*Float64, error) {
	if len(index) != len(values) {
		return nil, fmt.Errorf("index and values must have the same length: %d != %d", len(index), len(values))
	}
	return &Float64{
		Index:  index,
		Values: values,
	}, nil
}

// FromSeries copies any Series into a new *Float64. If s is already
// a *Float64, its index and name are copied as well.
func FromSeries(s Series) *Float64 {
	if f, ok := s.(*Float64); ok {
		return f.Copy()
	}
	values := make([]float64, s.Len())
	for idx := range values {
		values[idx] = s.At(idx)
	}
	return New(values)
}

func (s *Float64) Len() int {
	return len(s.Values)
}

func (s *Float64) At(idx int) float64 {
	return s.Values[idx]
}

func (s *Float64) IsMissing(idx int) bool {
	return IsMissingValue(s.Values[idx])
}

// CountMissing returns the amount of missing observations.
func (s *Float64) CountMissing() int {
	count := 0
	for _, v := range s.Values {
		if IsMissingValue(v) {
			count++
		}
	}
	return count
}

// MissingIndices returns the positions of missing observations in
// ascending order.
func (s *Float64) MissingIndices() []int {
	var result []int
	for idx, v := range s.Values {
		if IsMissingValue(v) {
			result = append(result, idx)
		}
	}
	return result
}

// Copy creates a deep copy of the series.
func (s *Float64) Copy() *Float64 {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	var index []time.Time
	if s.Index != nil {
		index = make([]time.Time, len(s.Index))
		copy(index, s.Index)
	}

	return &Float64{
		Index:  index,
		Values: values,
		Name:   s.Name,
	}
}

// WithValues returns a copy of s carrying the provided values instead.
func (s *Float64) WithValues(values []float64) *Float64 {
	var index []time.Time
	if s.Index != nil {
		index = make([]time.Time, len(s.Index))
		copy(index, s.Index)
	}
	return &Float64{
		Index:  index,
		Values: values,
		Name:   s.Name,
	}
}
