package storybooks

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EventKind identifies a pipeline transition.
type EventKind string

const (
	EventPageStarted   EventKind = "page_started"
	EventPageSucceeded EventKind = "page_succeeded"
	EventPageFailed    EventKind = "page_failed"
	EventRunCompleted  EventKind = "run_completed"
)

// Event describes a single pipeline transition. Page is zero for run-level events.
// Elapsed is the page duration for page events and the run duration for EventRunCompleted.
type Event struct {
	Kind       EventKind
	RunID      uuid.UUID
	Title      string
	Page       int
	TotalPages int
	Succeeded  int
	Failed     int
	Elapsed    time.Duration
	Err        error
}

// Reporter receives pipeline progress events. Implementations must be safe
// for concurrent use and must not block the pipeline.
type Reporter interface {
	Report(ctx context.Context, e Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, e Event)

func (f ReporterFunc) Report(ctx context.Context, e Event) {
	f(ctx, e)
}

// Reporters fans each event out to every reporter in order.
type Reporters []Reporter

func (rs Reporters) Report(ctx context.Context, e Event) {
	for _, r := range rs {
		r.Report(ctx, e)
	}
}

// LogReporter writes progress events to a structured logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a LogReporter scoped to the pipeline.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger.With("component", "pipeline")}
}

func (l *LogReporter) Report(ctx context.Context, e Event) {
	logger := l.logger.With("run_id", e.RunID)

	switch e.Kind {
	case EventPageStarted:
		logger.InfoContext(ctx, "generating page", "page", e.Page, "total_pages", e.TotalPages)
	case EventPageSucceeded:
		logger.InfoContext(ctx, "page generated", "page", e.Page, "duration", e.Elapsed.Round(time.Millisecond))
	case EventPageFailed:
		logger.WarnContext(ctx, "page generation failed", "page", e.Page, "error", e.Err)
	case EventRunCompleted:
		logger.InfoContext(
			ctx, "storybook run complete",
			"title", e.Title,
			"succeeded", e.Succeeded,
			"failed", e.Failed,
			"duration", e.Elapsed.Round(time.Millisecond),
		)
	}
}

// Run outcome labels.
const (
	runComplete = "complete"
	runPartial  = "partial"
	runFailed   = "failed"
)

// MetricsReporter records pipeline progress as Prometheus metrics.
type MetricsReporter struct {
	pages        *prometheus.CounterVec
	pageDuration *prometheus.HistogramVec
	inFlight     prometheus.Gauge
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
}

// NewMetricsReporter registers the storybook metrics with reg.
func NewMetricsReporter(reg prometheus.Registerer) *MetricsReporter {
	factory := promauto.With(reg)

	return &MetricsReporter{
		pages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storybook",
				Name:      "pages_total",
				Help:      "Total number of pages processed by outcome",
			},
			[]string{"outcome"},
		),
		pageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "storybook",
				Name:      "page_duration_seconds",
				Help:      "Duration of a single page image generation in seconds",
				Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90},
			},
			[]string{"outcome"},
		),
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "storybook",
				Name:      "pages_in_flight",
				Help:      "Number of page images currently being generated",
			},
		),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storybook",
				Name:      "runs_total",
				Help:      "Total number of storybook runs by result",
			},
			[]string{"result"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "storybook",
				Name:      "run_duration_seconds",
				Help:      "Duration of a full storybook run in seconds",
				Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1200},
			},
		),
	}
}

func (m *MetricsReporter) Report(ctx context.Context, e Event) {
	switch e.Kind {
	case EventPageStarted:
		m.inFlight.Inc()
	case EventPageSucceeded:
		m.inFlight.Dec()
		m.pages.WithLabelValues("success").Inc()
		m.pageDuration.WithLabelValues("success").Observe(e.Elapsed.Seconds())
	case EventPageFailed:
		m.inFlight.Dec()
		m.pages.WithLabelValues("failure").Inc()
		m.pageDuration.WithLabelValues("failure").Observe(e.Elapsed.Seconds())
	case EventRunCompleted:
		m.runs.WithLabelValues(runResult(e.Succeeded, e.Failed)).Inc()
		m.runDuration.Observe(e.Elapsed.Seconds())
	}
}

func runResult(succeeded, failed int) string {
	switch {
	case succeeded == 0:
		return runFailed
	case failed > 0:
		return runPartial
	default:
		return runComplete
	}
}
