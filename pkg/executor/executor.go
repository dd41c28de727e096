// Package executor runs named external commands as structured steps.
//
// A Step carries a program name and argument vector rather than an
// interpolated shell string, so nothing here passes through a shell and
// commands are testable by substituting a fake Runner.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/windguard/edgedemo/pkg/telemetry"
)

// Step is one externally executed unit of work within a plan.
type Step struct {
	// Name identifies the step in logs and failures.
	Name string

	// Program and Args form the argv; no shell is involved.
	Program string
	Args    []string

	// Dir is the working directory; empty means the current directory.
	Dir string

	// Env is the full environment for the child process ("k=v" entries).
	// Nil inherits the parent environment.
	Env []string

	// Stdin, when non-nil, is fed to the child's standard input. Rendered
	// manifests reach "oc apply -f -" this way.
	Stdin []byte
}

// Result reports the completed execution of a step.
type Result struct {
	// Step is the step name.
	Step string

	// ExitCode is the child's exit status; 0 on success.
	ExitCode int

	// Stdout is the trimmed captured output, set only by RunCapturing.
	Stdout string
}

// StepError reports a step that ran and exited non-zero. The executor never
// retries; whether to abort is the orchestrator's policy.
type StepError struct {
	// Step is the failing step name.
	Step string

	// ExitCode is the child's exit status.
	ExitCode int

	// Stderr is a trimmed snippet of captured standard error.
	Stderr string

	// Err is the underlying process error.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("step %q exited with code %d: %s", e.Step, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("step %q exited with code %d", e.Step, e.ExitCode)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Runner executes steps. The production implementation spawns processes;
// tests substitute fakes.
type Runner interface {
	// Run executes the step, streaming its output to the run's sinks, and
	// blocks until the child exits.
	Run(ctx context.Context, step Step) (Result, error)

	// RunCapturing executes the step and returns its trimmed standard
	// output, for steps whose output feeds later steps.
	RunCapturing(ctx context.Context, step Step) (string, Result, error)
}

// ExecRunner runs steps as local child processes.
type ExecRunner struct {
	log     zerolog.Logger
	metrics *telemetry.Metrics

	// Stdout and Stderr are the sinks for non-capturing runs.
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a process-spawning runner writing child output to
// the process streams.
func NewExecRunner(log zerolog.Logger, metrics *telemetry.Metrics) *ExecRunner {
	return &ExecRunner{
		log:     log,
		metrics: metrics,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, step Step) (Result, error) {
	res, _, err := r.run(ctx, step, false)
	return res, err
}

// RunCapturing implements Runner.
func (r *ExecRunner) RunCapturing(ctx context.Context, step Step) (string, Result, error) {
	res, out, err := r.run(ctx, step, true)
	return out, res, err
}

// stderrSnippetLimit bounds how much captured stderr ends up in a StepError.
const stderrSnippetLimit = 2048

func (r *ExecRunner) run(ctx context.Context, step Step, capture bool) (Result, string, error) {
	start := time.Now()

	r.log.Info().Str("step", step.Name).Msg("step started")
	r.log.Debug().
		Str("step", step.Name).
		Str("program", step.Program).
		Strs("args", step.Args).
		Str("dir", step.Dir).
		Msg("spawning process")

	cmd := exec.CommandContext(ctx, step.Program, step.Args...)
	cmd.Dir = step.Dir
	cmd.Env = step.Env
	if step.Stdin != nil {
		cmd.Stdin = bytes.NewReader(step.Stdin)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	if capture {
		cmd.Stdout = &stdoutBuf
	} else {
		cmd.Stdout = r.Stdout
	}
	// Stderr is always mirrored into a buffer so failures carry a snippet.
	cmd.Stderr = io.MultiWriter(r.Stderr, &stderrBuf)

	runErr := cmd.Run()
	duration := time.Since(start)
	stdout := strings.TrimSpace(stdoutBuf.String())

	res := Result{Step: step.Name, ExitCode: exitCode(runErr), Stdout: stdout}

	if runErr == nil {
		r.log.Info().Str("step", step.Name).Dur("duration", duration).Msg("step succeeded")
		r.metrics.RecordStep(step.Name, "success", duration)
		return res, stdout, nil
	}

	r.metrics.RecordStep(step.Name, "failure", duration)

	if ctx.Err() != nil {
		r.log.Warn().Str("step", step.Name).Msg("step interrupted")
		return res, stdout, fmt.Errorf("step %q interrupted: %w", step.Name, ctx.Err())
	}

	stderr := strings.TrimSpace(stderrBuf.String())
	if len(stderr) > stderrSnippetLimit {
		stderr = stderr[len(stderr)-stderrSnippetLimit:]
	}

	r.log.Error().
		Str("step", step.Name).
		Int("exit_code", res.ExitCode).
		Dur("duration", duration).
		Msg("step failed")

	return res, stdout, &StepError{
		Step:     step.Name,
		ExitCode: res.ExitCode,
		Stderr:   stderr,
		Err:      runErr,
	}
}

// exitCode extracts the child's exit status, or -1 when the process never
// ran or was killed.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
