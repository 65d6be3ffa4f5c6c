// Package metrics records pipeline run and stage outcomes as Prometheus
// metrics. A CLI run has no scrape endpoint, so the registry is written to a
// node_exporter textfile when the operator asks for one.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// StageDuration by stage and status (complete, failed).
	StageDuration *prometheus.HistogramVec

	// Runs by outcome (ok or the error kind) and engine version.
	Runs *prometheus.CounterVec

	// PredictedScore of successful runs.
	PredictedScore prometheus.Histogram

	// SaveRetries counts store writes retried after a transient failure.
	SaveRetries prometheus.Counter
}

// New registers the pipeline collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parcel_pipeline_stage_duration_seconds",
			Help:    "Duration of each pipeline stage by status",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"stage", "status"}),

		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "parcel_pipeline_runs_total",
			Help: "Pipeline runs by outcome and readiness engine",
		}, []string{"outcome", "engine"}),

		PredictedScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "parcel_readiness_predicted_score",
			Help:    "Calibrated readiness score of successful runs",
			Buckets: prometheus.LinearBuckets(40, 5, 12),
		}),

		SaveRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "parcel_store_save_retries_total",
			Help: "Context saves retried after a transient store error",
		}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveStage records one stage execution.
func (m *Metrics) ObserveStage(stage, status string, d time.Duration) {
	if m != nil {
		m.StageDuration.WithLabelValues(stage, status).Observe(d.Seconds())
	}
}

// IncrementRun records a finished run. outcome is "ok" or an error kind.
func (m *Metrics) IncrementRun(outcome, engine string) {
	if m != nil {
		m.Runs.WithLabelValues(outcome, engine).Inc()
	}
}

// ObserveScore records the predicted score of a successful run.
func (m *Metrics) ObserveScore(score float64) {
	if m != nil {
		m.PredictedScore.Observe(score)
	}
}

// IncrementSaveRetry records one retried store write.
func (m *Metrics) IncrementSaveRetry() {
	if m != nil {
		m.SaveRetries.Inc()
	}
}

// WriteTextfile writes every collected metric to path in the text exposition
// format, replacing the file atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
