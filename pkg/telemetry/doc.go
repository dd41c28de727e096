// Package telemetry provides structured logging, Prometheus metrics and
// OpenTelemetry tracing for the orchestrator. Logging is always on; metrics
// and tracing are opt-in per run.
package telemetry
