package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace": zerolog.TraceLevel,
		"debug": zerolog.DebugLevel,
		"info":  zerolog.InfoLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"bogus": zerolog.InfoLevel,
		"":      zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

// Recording against a nil or disabled collector must be safe; every caller
// relies on that.
func TestMetrics_NoOpWhenDisabled(t *testing.T) {
	var nilMetrics *Metrics
	nilMetrics.RecordRunStarted("build-image")
	nilMetrics.RecordStep("login", "success", time.Second)
	nilMetrics.RecordPollCheck("backend")

	disabled := NewMetrics(MetricsConfig{Enabled: false})
	disabled.RecordRunCompleted("build-image", "failed", time.Minute)
	disabled.RecordWaitOutcome("backend", "timed_out", time.Minute)

	if disabled.Handler() != nil {
		t.Error("disabled metrics should have no handler")
	}
	if err := disabled.Serve(); err != nil {
		t.Errorf("disabled Serve should be a no-op: %v", err)
	}
}

func TestMetrics_EnabledCollects(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, Namespace: "edgedemo"})
	m.RecordRunStarted("deploy-wait")
	m.RecordStep("apply manifest", "success", 250*time.Millisecond)
	m.RecordWaitOutcome("backend", "converged", 3*time.Second)

	if m.Handler() == nil {
		t.Fatal("enabled metrics should expose a handler")
	}
}

func TestNewTracer_DisabledIsNoOp(t *testing.T) {
	tracer, err := NewTracer(TracingConfig{Enabled: false}, "edgedemo", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, span := tracer.Start(context.Background(), "step")
	EndSpan(span, nil)

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestNewTracer_UnsupportedExporter(t *testing.T) {
	_, err := NewTracer(TracingConfig{Enabled: true, Exporter: "carrier-pigeon"}, "edgedemo", "test")
	if err == nil {
		t.Fatal("expected error for unsupported exporter")
	}
}
