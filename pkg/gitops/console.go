package gitops

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/windguard/edgedemo/pkg/executor"
)

// PatchError reports a failed console plugin patch. It carries a distinct
// exit code class because it happens after all applications have already
// converged.
type PatchError struct {
	// Resource is the patched resource.
	Resource string

	// Err is the underlying step failure.
	Err error
}

// Error implements the error interface.
func (e *PatchError) Error() string {
	return fmt.Sprintf("failed to patch %s: %v", e.Resource, e.Err)
}

// Unwrap returns the underlying error.
func (e *PatchError) Unwrap() error {
	return e.Err
}

// PatchConsole adds the FlightCtl plugin to the console operator's plugin
// list. Idempotent: when the plugin is already present nothing is patched.
func PatchConsole(ctx context.Context, r executor.Runner, log zerolog.Logger) error {
	plugins, _, err := r.RunCapturing(ctx, executor.Step{
		Name:    "check console plugins",
		Program: "oc",
		Args:    []string{"get", ConsoleResource, "-o", "jsonpath={.spec.plugins}"},
	})
	if err == nil && strings.Contains(plugins, ConsolePlugin) {
		log.Info().Str("plugin", ConsolePlugin).Msg("console plugin already present")
		return nil
	}

	_, err = r.Run(ctx, executor.Step{
		Name:    "patch console plugins",
		Program: "oc",
		Args: []string{
			"patch", ConsoleResource,
			"--type=merge",
			"-p", fmt.Sprintf(`{"spec": {"plugins": [%q]}}`, ConsolePlugin),
		},
	})
	if err != nil {
		return &PatchError{Resource: ConsoleResource, Err: err}
	}
	log.Info().Str("plugin", ConsolePlugin).Msg("console plugin added")
	return nil
}
