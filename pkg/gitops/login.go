package gitops

import (
	"context"

	"github.com/windguard/edgedemo/pkg/executor"
)

// FleetRouteNamespace and FleetRouteName locate the FlightCtl API route on
// the hub cluster.
const (
	FleetRouteNamespace = "open-cluster-management"
	FleetRouteName      = "flightctl-api-route"
)

// ClusterLoginStep builds the password-based oc login step.
func ClusterLoginStep(apiURL, username, password string, env []string) executor.Step {
	return executor.Step{
		Name:    "log into OpenShift cluster",
		Program: "oc",
		Args: []string{
			"login",
			"-u", username,
			"-p", password,
			apiURL,
			"--insecure-skip-tls-verify=true",
		},
		Env: env,
	}
}

// TokenLoginStep builds the token-based oc login step used by deploy-wait.
func TokenLoginStep(server, token string) executor.Step {
	return executor.Step{
		Name:    "log into OpenShift cluster",
		Program: "oc",
		Args: []string{
			"login", server,
			"--token", token,
			"--insecure-skip-tls-verify=true",
		},
	}
}

// FleetLoginStep builds the flightctl login step against the fleet API host.
func FleetLoginStep(host, username, password string, env []string) executor.Step {
	return executor.Step{
		Name:    "log into FlightCtl",
		Program: "flightctl",
		Args: []string{
			"login",
			"--username=" + username,
			"--password=" + password,
			"https://" + host,
			"--insecure-skip-tls-verify",
		},
		Env: env,
	}
}

// RouteHost captures the FlightCtl API route host from the hub cluster. The
// value is appended to the execution context by the orchestrator, not by
// the environment builder.
func RouteHost(ctx context.Context, r executor.Runner, env []string) (string, error) {
	host, _, err := r.RunCapturing(ctx, executor.Step{
		Name:    "resolve FlightCtl API route",
		Program: "oc",
		Args: []string{
			"get", "route",
			"-n", FleetRouteNamespace,
			FleetRouteName,
			"-o", "jsonpath={.spec.host}",
		},
		Env: env,
	})
	return host, err
}
