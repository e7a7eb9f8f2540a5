package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts pipeline runs and stage executions. Each pipeline owns its registry.
type Metrics struct {
	Registry *prometheus.Registry

	Processed     *prometheus.CounterVec
	Stages        *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	LowConfidence prometheus.Counter
}

// NewMetrics creates the pipeline metrics on a new registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		Processed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hybridnlu_utterances_processed_total",
				Help: "Total number of processed utterances by entity source",
			},
			[]string{"source"},
		),
		Stages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hybridnlu_stage_runs_total",
				Help: "Total number of stage executions",
			},
			[]string{"stage"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hybridnlu_stage_duration_seconds",
				Help:    "Duration of stage execution in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"stage"},
		),
		LowConfidence: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "hybridnlu_low_confidence_total",
				Help: "Total number of results below the low confidence threshold",
			},
		),
	}
}

func (m *Metrics) observeStage(stage Stage, start time.Time) {
	m.Stages.WithLabelValues(string(stage)).Inc()
	m.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
}
