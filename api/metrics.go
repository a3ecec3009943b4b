package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records calibration outcomes using Prometheus.
type Metrics struct {
	calibrations *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewMetrics creates the calibration collectors on the given registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		calibrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smile_calibrations_total",
				Help: "Total number of calibrations by outcome",
			},
			[]string{"outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smile_calibration_duration_seconds",
				Help:    "Duration of calibrations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}
}

// ObserveCalibration records one calibration attempt and its latency.
func (m *Metrics) ObserveCalibration(outcome string, elapsed time.Duration) {
	m.calibrations.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
