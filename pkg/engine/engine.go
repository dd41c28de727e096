// Package engine executes a fixed, ordered plan of steps and convergence
// waits with fail-fast semantics.
//
// Plans are static: entries are declared up front and no entry ever spawns
// new entries. Execution is strictly sequential; the first failing entry
// aborts the remainder of the plan. Already-applied external effects are
// never rolled back, the operator re-runs or intervenes manually.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/windguard/edgedemo/pkg/executor"
	"github.com/windguard/edgedemo/pkg/poller"
	"github.com/windguard/edgedemo/pkg/telemetry"
)

// Entry is one position in a plan: either a step or a convergence wait.
type Entry interface {
	entryName() string
}

// StepEntry runs one external command.
type StepEntry struct {
	Step executor.Step
}

func (e StepEntry) entryName() string { return e.Step.Name }

// WaitEntry blocks the plan until the target converges. A terminal outcome
// other than Converged aborts the plan.
type WaitEntry struct {
	Target poller.Target
	Query  poller.StatusFunc
	Pred   poller.Predicate
}

func (e WaitEntry) entryName() string { return "wait for " + e.Target.Name }

// Plan is an ordered list of entries executed as one run.
type Plan struct {
	// Name identifies the plan in logs and metrics.
	Name string

	// Entries are executed in order, one at a time.
	Entries []Entry
}

// Engine executes plans. One engine serves one process invocation; there is
// no locking against concurrent runs from other processes.
type Engine struct {
	runner  executor.Runner
	log     zerolog.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
}

// New creates an engine around the given runner and telemetry.
func New(runner executor.Runner, log zerolog.Logger, metrics *telemetry.Metrics, tracer *telemetry.Tracer) *Engine {
	return &Engine{
		runner:  runner,
		log:     log,
		metrics: metrics,
		tracer:  tracer,
	}
}

// Run executes the plan entries in order and returns the first failure.
// Entries after a failing one are never executed.
func (e *Engine) Run(ctx context.Context, plan Plan) error {
	runID := uuid.NewString()
	log := e.log.With().Str("plan", plan.Name).Str("run_id", runID).Logger()
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "run "+plan.Name,
		attribute.String("run_id", runID),
		attribute.Int("entries", len(plan.Entries)),
	)

	log.Info().Int("entries", len(plan.Entries)).Msg("run started")
	e.metrics.RecordRunStarted(plan.Name)

	err := e.runEntries(ctx, log, plan)
	status := "succeeded"
	if err != nil {
		status = "failed"
	}
	e.metrics.RecordRunCompleted(plan.Name, status, time.Since(start))
	telemetry.EndSpan(span, err)

	if err != nil {
		log.Error().Err(err).Msg("run aborted")
		return err
	}
	log.Info().Dur("duration", time.Since(start)).Msg("run completed")
	return nil
}

func (e *Engine) runEntries(ctx context.Context, log zerolog.Logger, plan Plan) error {
	for i, entry := range plan.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		entryCtx, span := e.tracer.Start(ctx, entry.entryName(),
			attribute.Int("position", i),
		)

		var err error
		switch en := entry.(type) {
		case StepEntry:
			_, err = e.runner.Run(entryCtx, en.Step)
		case WaitEntry:
			err = e.wait(entryCtx, en)
		}
		telemetry.EndSpan(span, err)

		if err != nil {
			log.Error().Int("position", i).Str("entry", entry.entryName()).Msg("aborting plan")
			return err
		}
	}
	return nil
}

// wait delegates to the poller and converts a non-converged terminal
// outcome into a ConvergenceError.
func (e *Engine) wait(ctx context.Context, entry WaitEntry) error {
	p := &poller.Poller{Log: e.log}
	start := time.Now()

	query := entry.Query
	counted := func(ctx context.Context) (poller.Status, bool, error) {
		e.metrics.RecordPollCheck(entry.Target.Name)
		return query(ctx)
	}

	outcome, err := p.Wait(ctx, entry.Target, counted, entry.Pred)
	if err != nil {
		return err
	}
	e.metrics.RecordWaitOutcome(entry.Target.Name, string(outcome), time.Since(start))

	if outcome != poller.Converged {
		return &ConvergenceError{
			Resource:  entry.Target.Name,
			Namespace: entry.Target.Namespace,
			Outcome:   outcome,
		}
	}
	return nil
}

// Capture runs a single step outside a plan and returns its trimmed stdout,
// for values that later plan entries need (e.g. a route host).
func (e *Engine) Capture(ctx context.Context, step executor.Step) (string, error) {
	out, _, err := e.runner.RunCapturing(ctx, step)
	return out, err
}
