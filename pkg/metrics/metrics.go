// Package metrics collects Prometheus counters of interpolation and
// quality-check runs.
//
// Batch jobs do not serve HTTP, so the metrics are kept on a private
// registry and dumped in the text exposition format, ready for the
// node-exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nsaph"

// Recorder is a set of metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	seriesTotal   *prometheus.CounterVec
	filledTotal   *prometheus.CounterVec
	unfilledTotal *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	qcChecksTotal *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Recorder{
		registry: registry,
		seriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "interpolation",
				Name:      "series_total",
				Help:      "Total number of interpolated series",
			},
			[]string{"method", "outcome"},
		),
		filledTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "interpolation",
				Name:      "filled_values_total",
				Help:      "Total number of missing values that got filled",
			},
			[]string{"method"},
		),
		unfilledTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "interpolation",
				Name:      "unfilled_values_total",
				Help:      "Total number of missing values left unfilled",
			},
			[]string{"method"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "interpolation",
				Name:      "duration_seconds",
				Help:      "Duration of a single series interpolation in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"method"},
		),
		qcChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "qc",
				Name:      "checks_total",
				Help:      "Total number of quality checks by severity and result",
			},
			[]string{"severity", "result"},
		),
	}
}

// Registry returns the registry the metrics are registered in.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveInterpolation records a successfully interpolated series.
func (r *Recorder) ObserveInterpolation(method string, filled, unfilled int, seconds float64) {
	if r == nil {
		return
	}
	r.seriesTotal.WithLabelValues(method, "ok").Inc()
	r.filledTotal.WithLabelValues(method).Add(float64(filled))
	r.unfilledTotal.WithLabelValues(method).Add(float64(unfilled))
	r.duration.WithLabelValues(method).Observe(seconds)
}

// RecordInterpolationError records a series that could not be interpolated.
func (r *Recorder) RecordInterpolationError(method string) {
	if r == nil {
		return
	}
	r.seriesTotal.WithLabelValues(method, "error").Inc()
}

// RecordQCCheck records the result of a single quality check.
func (r *Recorder) RecordQCCheck(severity string, passed bool) {
	if r == nil {
		return
	}
	result := "failed"
	if passed {
		result = "passed"
	}
	r.qcChecksTotal.WithLabelValues(severity, result).Inc()
}

// WriteToTextfile atomically writes the metrics to path.
func (r *Recorder) WriteToTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("unable to write the metrics to '%s': %w", path, err)
	}
	return nil
}
