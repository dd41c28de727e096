package engine

import (
	"fmt"

	"github.com/windguard/edgedemo/pkg/poller"
)

// ConvergenceError reports a convergence wait that terminated without the
// resource reaching its target state. It aborts the plan at the wait's
// position; prior steps' external effects are left in place.
type ConvergenceError struct {
	// Resource is the waited-on resource name.
	Resource string

	// Namespace is the resource's namespace.
	Namespace string

	// Outcome is the terminal poll outcome (NotFound or TimedOut).
	Outcome poller.Outcome
}

// Error implements the error interface.
func (e *ConvergenceError) Error() string {
	switch e.Outcome {
	case poller.NotFound:
		return fmt.Sprintf("resource %q not found in namespace %q", e.Resource, e.Namespace)
	case poller.TimedOut:
		return fmt.Sprintf("timed out waiting for %q in namespace %q", e.Resource, e.Namespace)
	default:
		return fmt.Sprintf("wait for %q ended with outcome %q", e.Resource, e.Outcome)
	}
}
