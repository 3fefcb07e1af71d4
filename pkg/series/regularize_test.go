package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegularize(t *testing.T) {
	day := 24 * time.Hour
	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("inserts missing slots", func(t *testing.T) {
		s, err := NewWithIndex(
			[]time.Time{base, base.Add(day), base.Add(4 * day)},
			[]float64{1, 2, 5},
		)
		require.NoError(t, err)
		s.Name = "pm25"

		r, err := s.Regularize(day)
		require.NoError(t, err)
		require.Equal(t, "pm25", r.Name)
		require.Equal(t, 5, r.Len())
		require.Equal(t, []int{2, 3}, r.MissingIndices())
		require.Equal(t, 5.0, r.At(4))
		require.Equal(t, base.Add(3*day), r.Index[3])
	})

	t.Run("already regular", func(t *testing.T) {
		s, err := NewWithIndex([]time.Time{base, base.Add(day)}, []float64{1, Missing})
		require.NoError(t, err)
		r, err := s.Regularize(day)
		require.NoError(t, err)
		require.Equal(t, s.Index, r.Index)
		require.Equal(t, []int{1}, r.MissingIndices())
	})

	t.Run("empty", func(t *testing.T) {
		r, err := (&Float64{Index: []time.Time{}, Values: []float64{}}).Regularize(day)
		require.NoError(t, err)
		require.Zero(t, r.Len())
	})

	t.Run("errors", func(t *testing.T) {
		_, err := New([]float64{1}).Regularize(day)
		require.Error(t, err)

		s, err := NewWithIndex([]time.Time{base, base.Add(day)}, []float64{1, 2})
		require.NoError(t, err)
		_, err = s.Regularize(0)
		require.Error(t, err)

		offGrid, err := NewWithIndex([]time.Time{base, base.Add(day + time.Hour), base.Add(2 * day)}, []float64{1, 2, 3})
		require.NoError(t, err)
		_, err = offGrid.Regularize(day)
		require.Error(t, err)

		unordered, err := NewWithIndex([]time.Time{base, base.Add(2 * day), base.Add(day), base.Add(2 * day)}, []float64{1, 2, 3, 4})
		require.NoError(t, err)
		_, err = unordered.Regularize(day)
		require.Error(t, err)
	})
}
