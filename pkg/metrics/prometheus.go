package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ticksTotal        *prometheus.CounterVec
	emissionsTotal    *prometheus.CounterVec
	suppressionsTotal *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	conviction        *prometheus.GaugeVec
	latency           *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ticksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexpulse_ticks_total",
				Help: "Total number of indicator snapshots processed",
			},
			[]string{"instrument"},
		),
		emissionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexpulse_emissions_total",
				Help: "Total number of signal transitions emitted",
			},
			[]string{"instrument", "signal"},
		),
		suppressionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexpulse_suppressions_total",
				Help: "Signal transitions held back by the emission gate",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		conviction: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "indexpulse_conviction_score",
				Help: "Last computed conviction score per instrument",
			},
			[]string{"instrument"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "indexpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordTick records one processed snapshot.
func (r *Recorder) RecordTick(instrument string) {
	r.ticksTotal.WithLabelValues(instrument).Inc()
}

// RecordEmission records an emitted signal transition.
func (r *Recorder) RecordEmission(instrument, signal string) {
	r.emissionsTotal.WithLabelValues(instrument, signal).Inc()
}

// RecordSuppression records a gated transition.
func (r *Recorder) RecordSuppression(kind string) {
	r.suppressionsTotal.WithLabelValues(kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordConviction records the last conviction score for an instrument.
func (r *Recorder) RecordConviction(instrument string, score int) {
	r.conviction.WithLabelValues(instrument).Set(float64(score))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
