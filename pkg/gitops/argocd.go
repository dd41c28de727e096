// Package gitops drives the cluster and fleet CLIs: Argo CD application
// status queries, cluster and FlightCtl logins, and the console plugin
// patch. Every operation shells out through an executor.Runner; nothing
// here interprets tool output beyond the narrow status fields it extracts.
package gitops

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/windguard/edgedemo/pkg/executor"
	"github.com/windguard/edgedemo/pkg/poller"
)

// DefaultNamespace is where the Argo CD applications live.
const DefaultNamespace = "openshift-gitops"

// ConsoleResource is the console operator resource patched with the plugin.
const ConsoleResource = "console.operator.openshift.io/cluster"

// ConsolePlugin is the plugin added to the console's spec.plugins.
const ConsolePlugin = "flightctl-plugin"

// AppStatus queries the sync and health status of an Argo CD application.
// found is false when the application does not exist; any other oc failure
// is returned as an error, distinct from absence.
func AppStatus(ctx context.Context, r executor.Runner, app, namespace string) (poller.Status, bool, error) {
	sync, found, err := appField(ctx, r, app, namespace, "{.status.sync.status}")
	if err != nil || !found {
		return poller.Status{}, found, err
	}
	health, found, err := appField(ctx, r, app, namespace, "{.status.health.status}")
	if err != nil || !found {
		return poller.Status{}, found, err
	}
	return poller.Status{Sync: sync, Health: health}, true, nil
}

// appField extracts one jsonpath field from an application resource.
func appField(ctx context.Context, r executor.Runner, app, namespace, jsonpath string) (string, bool, error) {
	out, _, err := r.RunCapturing(ctx, executor.Step{
		Name:    fmt.Sprintf("query application %s", app),
		Program: "oc",
		Args: []string{
			"get", "applications.argoproj.io", app,
			"-n", namespace,
			"-o", "jsonpath=" + jsonpath,
		},
	})
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return out, true, nil
}

// isNotFound distinguishes a missing resource from any other oc failure by
// the NotFound marker oc prints on stderr.
func isNotFound(err error) bool {
	var stepErr *executor.StepError
	if !errors.As(err, &stepErr) {
		return false
	}
	return strings.Contains(stepErr.Stderr, "NotFound") ||
		strings.Contains(stepErr.Stderr, "not found")
}

// Converged is the target predicate for Argo CD applications.
func Converged(s poller.Status) bool {
	return s.Sync == "Synced" && s.Health == "Healthy"
}
