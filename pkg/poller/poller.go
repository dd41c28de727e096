// Package poller waits for an external resource's reported status to reach
// a target state, checking at a fixed cadence until a timeout elapses.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Status is the two-field status vector reported for a resource.
type Status struct {
	Sync   string
	Health string
}

// Outcome is the terminal classification of a wait.
type Outcome string

const (
	// Converged means the status satisfied the target predicate.
	Converged Outcome = "converged"

	// NotFound means the resource does not exist. Absence is terminal, not
	// a transient condition, so the wait returns immediately.
	NotFound Outcome = "not_found"

	// TimedOut means the timeout elapsed before convergence.
	TimedOut Outcome = "timed_out"
)

// Target describes one waited-on resource. Interval and timeout are
// per-target, so waits in one plan may use different cadences.
type Target struct {
	// Name identifies the resource.
	Name string

	// Namespace is the namespace the resource lives in.
	Namespace string

	// Interval is the delay between successive status checks.
	Interval time.Duration

	// Timeout bounds the whole wait, measured from the first check.
	Timeout time.Duration
}

// StatusFunc queries the latest status snapshot for a resource. found is
// false when the resource does not exist; err reports a failed query,
// distinct from absence.
type StatusFunc func(ctx context.Context) (status Status, found bool, err error)

// Predicate decides convergence from the latest snapshot alone. No history
// is accumulated and no hysteresis is applied.
type Predicate func(Status) bool

// Poller runs convergence waits, logging progress on each check.
type Poller struct {
	Log zerolog.Logger
}

// Wait polls query at the target's interval until the predicate holds, the
// resource turns out to be absent, or the timeout elapses. A query error is
// surfaced as an error rather than counted as a failed check. Cancellation
// of ctx interrupts the wait at any sleep point.
func (p *Poller) Wait(ctx context.Context, target Target, query StatusFunc, pred Predicate) (Outcome, error) {
	p.Log.Info().
		Str("resource", target.Name).
		Str("namespace", target.Namespace).
		Dur("interval", target.Interval).
		Dur("timeout", target.Timeout).
		Msg("waiting for convergence")

	start := time.Now()
	for {
		status, found, err := query(ctx)
		if err != nil {
			return "", fmt.Errorf("status query for %q: %w", target.Name, err)
		}
		if !found {
			p.Log.Error().
				Str("resource", target.Name).
				Str("namespace", target.Namespace).
				Msg("resource not found")
			return NotFound, nil
		}
		if pred(status) {
			p.Log.Info().
				Str("resource", target.Name).
				Dur("elapsed", time.Since(start)).
				Msg("converged")
			return Converged, nil
		}

		p.Log.Info().
			Str("resource", target.Name).
			Str("sync", status.Sync).
			Str("health", status.Health).
			Msg("not converged yet")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(target.Interval):
		}

		if time.Since(start) >= target.Timeout {
			p.Log.Error().
				Str("resource", target.Name).
				Dur("timeout", target.Timeout).
				Msg("timed out waiting for convergence")
			return TimedOut, nil
		}
	}
}
