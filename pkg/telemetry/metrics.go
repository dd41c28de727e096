package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for orchestration runs. A nil or
// disabled Metrics is a no-op, so callers never need to guard their
// recording calls.
type Metrics struct {
	config MetricsConfig

	runsStarted   *prometheus.CounterVec
	runsCompleted *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec

	stepsExecuted *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec

	pollChecks   *prometheus.CounterVec
	waitOutcomes *prometheus.CounterVec
	waitDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return &Metrics{config: cfg}
	}

	registry := prometheus.NewRegistry()
	m := &Metrics{
		config:   cfg,
		registry: registry,

		runsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "runs_started_total",
				Help:      "Total number of orchestration runs started",
			},
			[]string{"mode"},
		),
		runsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "runs_completed_total",
				Help:      "Total number of orchestration runs completed",
			},
			[]string{"mode", "status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of orchestration runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"mode"},
		),
		stepsExecuted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "steps_executed_total",
				Help:      "Total number of steps executed",
			},
			[]string{"step", "status"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "step_duration_seconds",
				Help:      "Duration of step execution in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"step"},
		),
		pollChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "poll_checks_total",
				Help:      "Total number of convergence status checks",
			},
			[]string{"resource"},
		),
		waitOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "wait_outcomes_total",
				Help:      "Terminal outcomes of convergence waits",
			},
			[]string{"resource", "outcome"},
		),
		waitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "wait_duration_seconds",
				Help:      "Duration of convergence waits in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"resource"},
		),
	}

	registry.MustRegister(
		m.runsStarted, m.runsCompleted, m.runDuration,
		m.stepsExecuted, m.stepDuration,
		m.pollChecks, m.waitOutcomes, m.waitDuration,
	)

	return m
}

// enabled reports whether metrics are being collected.
func (m *Metrics) enabled() bool {
	return m != nil && m.registry != nil
}

// RecordRunStarted records the start of an orchestration run.
func (m *Metrics) RecordRunStarted(mode string) {
	if m.enabled() {
		m.runsStarted.WithLabelValues(mode).Inc()
	}
}

// RecordRunCompleted records a terminated run and its duration.
func (m *Metrics) RecordRunCompleted(mode, status string, d time.Duration) {
	if m.enabled() {
		m.runsCompleted.WithLabelValues(mode, status).Inc()
		m.runDuration.WithLabelValues(mode).Observe(d.Seconds())
	}
}

// RecordStep records one step execution.
func (m *Metrics) RecordStep(step, status string, d time.Duration) {
	if m.enabled() {
		m.stepsExecuted.WithLabelValues(step, status).Inc()
		m.stepDuration.WithLabelValues(step).Observe(d.Seconds())
	}
}

// RecordPollCheck records one convergence status check.
func (m *Metrics) RecordPollCheck(resource string) {
	if m.enabled() {
		m.pollChecks.WithLabelValues(resource).Inc()
	}
}

// RecordWaitOutcome records the terminal outcome of a convergence wait.
func (m *Metrics) RecordWaitOutcome(resource, outcome string, d time.Duration) {
	if m.enabled() {
		m.waitOutcomes.WithLabelValues(resource, outcome).Inc()
		m.waitDuration.WithLabelValues(resource).Observe(d.Seconds())
	}
}

// Handler returns an HTTP handler exposing the collected metrics, or nil
// when collection is disabled.
func (m *Metrics) Handler() http.Handler {
	if !m.enabled() {
		return nil
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts a metrics HTTP listener on the configured address. It blocks
// and is intended to run in its own goroutine for the lifetime of a run.
func (m *Metrics) Serve() error {
	if !m.enabled() || m.config.ListenAddress == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(m.config.ListenAddress, mux)
}
