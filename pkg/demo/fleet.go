package demo

import (
	"context"

	"github.com/windguard/edgedemo/pkg/config"
	"github.com/windguard/edgedemo/pkg/engine"
	"github.com/windguard/edgedemo/pkg/environ"
	"github.com/windguard/edgedemo/pkg/executor"
	"github.com/windguard/edgedemo/pkg/gitops"
	"github.com/windguard/edgedemo/pkg/manifest"
)

// fleetManifests is the fixed set of files a fleet deployment needs.
var fleetManifests = []string{
	FleetRepoManifest,
	FleetManifest,
	VMNamespaceManifest,
	VMServiceManifest,
	VMRoutesManifest,
	VMManifest,
}

// DeployFleet applies the FlightCtl repository and fleet configuration and
// deploys the virtual machines to OpenShift Virtualization. Manifests with
// image placeholders are rendered in-process and fed to the apply commands
// on stdin.
func DeployFleet(ctx context.Context, deps Deps, cfg *config.Config, env environ.Context) error {
	if err := manifest.VerifyPrereqs(fleetManifests...); err != nil {
		return err
	}

	deps.Log.Info().
		Str("ocp_domain", env.Get(environ.KeyClusterDomain)).
		Str("bootc_image", env.Get(environ.KeyBootcImage)).
		Str("qcow_image", env.Get(environ.KeyQCOWImage)).
		Msg("deploying WindGuard fleet")

	apiURL := environ.APIURL(cfg.OCPCluster.Domain)

	login := engine.Plan{
		Name: "fleet-login",
		Entries: []engine.Entry{
			engine.StepEntry{Step: gitops.ClusterLoginStep(
				apiURL, cfg.OCPCluster.Username, cfg.OCPCluster.Password, env.Environ(),
			)},
		},
	}
	if err := deps.Engine.Run(ctx, login); err != nil {
		return err
	}

	fleetHost, err := gitops.RouteHost(ctx, deps.Runner, env.Environ())
	if err != nil {
		return err
	}
	env = env.With(environ.KeyFleetAPIHost, fleetHost)
	deps.Log.Info().Str("host", fleetHost).Msg("resolved FlightCtl API")

	fleetYAML, err := manifest.Render(FleetManifest, env.Values())
	if err != nil {
		return err
	}
	vmYAML, err := manifest.Render(VMManifest, env.Values())
	if err != nil {
		return err
	}

	deploy := engine.Plan{
		Name: "fleet-deploy",
		Entries: []engine.Entry{
			engine.StepEntry{Step: gitops.FleetLoginStep(
				fleetHost, cfg.OCPCluster.Username, cfg.OCPCluster.Password, env.Environ(),
			)},
			engine.StepEntry{Step: executor.Step{
				Name:    "apply FlightCtl repository configuration",
				Program: "flightctl",
				Args:    []string{"apply", "-f", FleetRepoManifest},
				Env:     env.Environ(),
			}},
			engine.StepEntry{Step: executor.Step{
				Name:    "apply FlightCtl fleet configuration",
				Program: "flightctl",
				Args:    []string{"apply", "-f", "-"},
				Env:     env.Environ(),
				Stdin:   fleetYAML,
			}},
			engine.StepEntry{Step: executor.Step{
				Name:    "create namespace and services",
				Program: "oc",
				Args: []string{
					"apply",
					"-f", VMNamespaceManifest,
					"-f", VMServiceManifest,
					"-f", VMRoutesManifest,
				},
				Env: env.Environ(),
			}},
			engine.StepEntry{Step: executor.Step{
				Name:    "deploy virtual machine",
				Program: "oc",
				Args:    []string{"apply", "-f", "-"},
				Env:     env.Environ(),
				Stdin:   vmYAML,
			}},
		},
	}
	if err := deps.Engine.Run(ctx, deploy); err != nil {
		return err
	}

	deps.Log.Info().Msg("fleet configured; virtual machines are being deployed")
	deps.Log.Info().Msg("check VM status with: oc get vms -n windguard-demo")
	deps.Log.Info().Msg("list enrolled devices with: flightctl get devices")
	return nil
}
