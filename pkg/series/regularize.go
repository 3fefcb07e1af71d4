package series

import (
	"fmt"
	"time"
)

// Regularize places the observations of s onto the regular grid
// index[0], index[0]+step, ..., index[len-1]. Grid slots without an
// observation become Missing, so they are later picked up as gaps.
//
// The index must be strictly increasing and every timestamp must lie
// exactly on the grid.
func (s *Float64) Regularize(step time.Duration) (*Float64, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %v", step)
	}
	if len(s.Index) != len(s.Values) {
		return nil, fmt.Errorf("the series has no time index (or it is of a wrong length: %d != %d)", len(s.Index), len(s.Values))
	}
	if len(s.Values) == 0 {
		return s.Copy(), nil
	}

	start := s.Index[0]
	last := s.Index[len(s.Index)-1]
	span := last.Sub(start)
	if span%step != 0 {
		return nil, fmt.Errorf("the last timestamp %v is not on the grid of step %v starting at %v", last, step, start)
	}
	count := int(span/step) + 1

	index := make([]time.Time, count)
	values := make([]float64, count)
	for idx := range index {
		index[idx] = start.Add(time.Duration(idx) * step)
		values[idx] = Missing
	}

	prevSlot := -1
	for idx, ts := range s.Index {
		distance := ts.Sub(start)
		if distance%step != 0 {
			return nil, fmt.Errorf("timestamp #%d (%v) is not on the grid of step %v starting at %v", idx, ts, step, start)
		}
		slot := int(distance / step)
		if slot <= prevSlot {
			return nil, fmt.Errorf("the index is not strictly increasing at #%d (%v)", idx, ts)
		}
		values[slot] = s.Values[idx]
		prevSlot = slot
	}

	return &Float64{
		Index:  index,
		Values: values,
		Name:   s.Name,
	}, nil
}
