package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := New()
	r.ObserveInterpolation("ma", 3, 1, 0.001)
	r.ObserveInterpolation("ma", 2, 0, 0.002)
	r.RecordInterpolationError("linear")
	r.RecordQCCheck("warning", false)

	require.Equal(t, 2.0, testutil.ToFloat64(r.seriesTotal.WithLabelValues("ma", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.seriesTotal.WithLabelValues("linear", "error")))
	require.Equal(t, 5.0, testutil.ToFloat64(r.filledTotal.WithLabelValues("ma")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.unfilledTotal.WithLabelValues("ma")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.qcChecksTotal.WithLabelValues("warning", "failed")))

	count, err := testutil.GatherAndCount(r.Registry(), "nsaph_interpolation_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestWriteToTextfile(t *testing.T) {
	r := New()
	r.ObserveInterpolation("fourier", 10, 0, 0.5)

	path := filepath.Join(t.TempDir(), "nsaph.prom")
	require.NoError(t, r.WriteToTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), `nsaph_interpolation_filled_values_total{method="fourier"} 10`)
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.ObserveInterpolation("ma", 1, 1, 1)
	r.RecordInterpolationError("ma")
	r.RecordQCCheck("error", true)
	require.Nil(t, r.Registry())
	require.NoError(t, r.WriteToTextfile(filepath.Join(t.TempDir(), "unused.prom")))
}
