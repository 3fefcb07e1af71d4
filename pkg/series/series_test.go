package series

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewWithIndex(t *testing.T) {
	t.Run("length mismatch", func(t *testing.T) {
		_, err := NewWithIndex([]time.Time{time.Unix(0, 0)}, []float64{1, 2})
		require.Error(t, err)
	})

	t.Run("ok", func(t *testing.T) {
		base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		s, err := NewWithIndex([]time.Time{base, base.AddDate(1, 0, 0)}, []float64{1, Missing})
		require.NoError(t, err)
		require.Equal(t, 2, s.Len())
		require.True(t, s.IsMissing(1))
		require.False(t, s.IsMissing(0))
	})
}

func TestMissing(t *testing.T) {
	s := New([]float64{math.NaN(), 1, math.NaN(), 3})
	require.Equal(t, 2, s.CountMissing())
	require.Equal(t, []int{0, 2}, s.MissingIndices())
	require.Nil(t, New([]float64{1, 2}).MissingIndices())
}

type plainSeries []float64

func (s plainSeries) Len() int           { return len(s) }
func (s plainSeries) At(idx int) float64 { return s[idx] }

func TestFromSeries(t *testing.T) {
	t.Run("foreign implementation", func(t *testing.T) {
		orig := plainSeries{1, math.NaN(), 3}
		s := FromSeries(orig)
		require.Equal(t, 3, s.Len())
		require.Equal(t, 1.0, s.Values[0])
		require.True(t, s.IsMissing(1))
	})

	t.Run("copies instead of aliasing", func(t *testing.T) {
		orig := New([]float64{1, 2})
		orig.Name = "pm25"
		s := FromSeries(orig)
		s.Values[0] = 100
		require.Equal(t, 1.0, orig.Values[0])
		require.Equal(t, "pm25", s.Name)
	})
}

func TestWithValues(t *testing.T) {
	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := NewWithIndex([]time.Time{base}, []float64{Missing})
	require.NoError(t, err)
	s.Name = "tmax"

	filled := s.WithValues([]float64{42})
	require.Equal(t, "tmax", filled.Name)
	require.Equal(t, s.Index, filled.Index)
	require.True(t, s.IsMissing(0))
	require.Equal(t, 42.0, filled.At(0))
}
