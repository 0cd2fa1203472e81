// Package metrics defines the Prometheus collectors for summarization runs
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline stages observed by StageDuration.
const (
	StageClean     = "clean"
	StageChunk     = "chunk"
	StageIndex     = "index"
	StageRetrieve  = "retrieve"
	StageSummarize = "summarize"
)

// Run statuses.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusError    = "error"
)

// Metrics holds the collectors for pipeline runs. All methods are safe on a
// nil receiver, which records nothing.
type Metrics struct {
	RunsTotal      *prometheus.CounterVec
	SummariesTotal *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	ChunksPerRun   prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ragsum_pipeline_runs_total",
				Help: "Total pipeline runs by status (ok, rejected, error).",
			},
			[]string{"status"},
		),
		SummariesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ragsum_summaries_total",
				Help: "Total summaries by producing path (abstractive, extractive, none).",
			},
			[]string{"source"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ragsum_stage_duration_seconds",
				Help:    "Pipeline stage latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"stage"},
		),
		ChunksPerRun: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ragsum_chunks_per_run",
				Help:    "Number of chunks produced per pipeline run.",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
			},
		),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.SummariesTotal,
		m.StageDuration,
		m.ChunksPerRun,
	)

	return m
}

// ObserveRun counts a finished run.
func (m *Metrics) ObserveRun(status string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}

// ObserveSummary counts a summary by its source.
func (m *Metrics) ObserveSummary(source string) {
	if m == nil {
		return
	}
	m.SummariesTotal.WithLabelValues(source).Inc()
}

// ObserveStage records the time elapsed since start for stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// ObserveChunks records the chunk count of a run.
func (m *Metrics) ObserveChunks(n int) {
	if m == nil {
		return
	}
	m.ChunksPerRun.Observe(float64(n))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
