package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/windguard/edgedemo/pkg/demo"
	"github.com/windguard/edgedemo/pkg/engine"
	"github.com/windguard/edgedemo/pkg/executor"
	"github.com/windguard/edgedemo/pkg/telemetry"
)

// runtime bundles the telemetry and engine a command needs for one run.
type runtime struct {
	log    zerolog.Logger
	tracer *telemetry.Tracer
	deps   demo.Deps
}

// newRuntime builds logging, metrics and tracing from the global flags and
// assembles the engine around a process-spawning runner.
func newRuntime(serviceVersion string) (*runtime, error) {
	cfg := telemetry.DefaultConfig("edgedemo", serviceVersion)
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if jsonOutput {
		cfg.Logging.Format = "json"
	}
	cfg.Tracing.Enabled = traceExporter != "none"
	cfg.Tracing.Exporter = traceExporter
	cfg.Tracing.Endpoint = traceEndpoint
	cfg.Tracing.Insecure = true
	cfg.Metrics.Enabled = metricsAddr != ""
	cfg.Metrics.ListenAddress = metricsAddr

	log := telemetry.NewLogger(cfg.Logging)

	metrics := telemetry.NewMetrics(cfg.Metrics)
	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(); err != nil {
				log.Warn().Err(err).Msg("metrics listener stopped")
			}
		}()
	}

	tracer, err := telemetry.NewTracer(cfg.Tracing, cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return nil, err
	}

	runner := executor.NewExecRunner(log, metrics)
	eng := engine.New(runner, log, metrics, tracer)

	return &runtime{
		log:    log,
		tracer: tracer,
		deps: demo.Deps{
			Engine: eng,
			Runner: runner,
			Log:    log,
		},
	}, nil
}

// shutdown flushes telemetry. Called once per command, even on failure.
func (r *runtime) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.tracer.Shutdown(ctx); err != nil {
		r.log.Warn().Err(err).Msg("trace flush failed")
	}
}
