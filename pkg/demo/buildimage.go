package demo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/windguard/edgedemo/pkg/config"
	"github.com/windguard/edgedemo/pkg/engine"
	"github.com/windguard/edgedemo/pkg/environ"
	"github.com/windguard/edgedemo/pkg/executor"
	"github.com/windguard/edgedemo/pkg/gitops"
)

// BuildImage builds and pushes the bootc container image and the QCOW2 disk
// image for the edge devices. The flow has three phases separated by the
// captures whose output later steps need: cluster and registry setup, fleet
// enrollment, then the image builds.
func BuildImage(ctx context.Context, deps Deps, cfg *config.Config, env environ.Context) error {
	if _, err := os.Stat(BuildDir); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("build directory %q not found", BuildDir)
	}

	deps.Log.Info().
		Str("build_dir", BuildDir).
		Str("ocp_domain", env.Get(environ.KeyClusterDomain)).
		Str("registry", env.Get(environ.KeyRegistryURL)+"/"+env.Get(environ.KeyRegistryUser)).
		Str("bootc_image", env.Get(environ.KeyBootcImage)).
		Str("qcow_image", env.Get(environ.KeyQCOWImage)).
		Msg("building WindGuard edge images")

	apiURL := environ.APIURL(cfg.OCPCluster.Domain)

	setup := engine.Plan{
		Name: "image-build-setup",
		Entries: []engine.Entry{
			engine.StepEntry{Step: executor.Step{
				Name:    "enable RHEL repositories",
				Program: "subscription-manager",
				Args:    append([]string{"repos"}, repoEnableArgs()...),
				Env:     env.Environ(),
			}},
			engine.StepEntry{Step: executor.Step{
				Name:    "install required packages",
				Program: "dnf",
				Args:    append([]string{"install", "-y"}, Packages...),
				Env:     env.Environ(),
			}},
			engine.StepEntry{Step: executor.Step{
				Name:    "log into private registry",
				Program: "podman",
				Args: []string{
					"login", cfg.PrivateRegistry.URL,
					"--username", cfg.PrivateRegistry.Username,
					"--password", cfg.PrivateRegistry.Password,
					"--authfile=" + AuthFile,
				},
				Dir: BuildDir,
				Env: env.Environ(),
			}},
			engine.StepEntry{Step: executor.Step{
				Name:    "log into " + RedHatRegistry,
				Program: "podman",
				Args: []string{
					"login", RedHatRegistry,
					"--username", cfg.RedHatRegistry.Username,
					"--password", cfg.RedHatRegistry.Password,
					"--authfile=" + AuthFile,
				},
				Dir: BuildDir,
				Env: env.Environ(),
			}},
			engine.StepEntry{Step: gitops.ClusterLoginStep(
				apiURL, cfg.OCPCluster.Username, cfg.OCPCluster.Password, env.Environ(),
			)},
		},
	}
	if err := deps.Engine.Run(ctx, setup); err != nil {
		return err
	}

	// The pull secret and enrollment certificate were shell redirects in
	// earlier tooling; here they are captured and written explicitly.
	pullSecret, err := deps.Engine.Capture(ctx, executor.Step{
		Name:    "extract OpenShift pull secret",
		Program: "oc",
		Args: []string{
			"get", "secret/pull-secret",
			"-n", "openshift-config",
			"--template={{index .data \".dockerconfigjson\" | base64decode}}",
		},
		Env: env.Environ(),
	})
	if err != nil {
		return err
	}
	if err := writeBuildFile("pull-secret", pullSecret); err != nil {
		return err
	}

	fleetHost, err := gitops.RouteHost(ctx, deps.Runner, env.Environ())
	if err != nil {
		return err
	}
	env = env.With(environ.KeyFleetAPIHost, fleetHost)
	deps.Log.Info().Str("host", fleetHost).Msg("resolved FlightCtl API")

	enroll := engine.Plan{
		Name: "fleet-enrollment",
		Entries: []engine.Entry{
			engine.StepEntry{Step: gitops.FleetLoginStep(
				fleetHost, cfg.OCPCluster.Username, cfg.OCPCluster.Password, env.Environ(),
			)},
			engine.StepEntry{Step: executor.Step{
				Name:    "verify FlightCtl version",
				Program: "flightctl",
				Args:    []string{"version"},
				Env:     env.Environ(),
			}},
		},
	}
	if err := deps.Engine.Run(ctx, enroll); err != nil {
		return err
	}

	cert, err := deps.Engine.Capture(ctx, executor.Step{
		Name:    "request FlightCtl enrollment certificate",
		Program: "flightctl",
		Args: []string{
			"certificate", "request",
			"--signer=enrollment",
			"--expiration=365d",
			"--output=embedded",
		},
		Dir: BuildDir,
		Env: env.Environ(),
	})
	if err != nil {
		return err
	}
	if err := writeBuildFile("config.yaml", cert); err != nil {
		return err
	}

	outputDir, err := filepath.Abs(filepath.Join(BuildDir, "output"))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	build := engine.Plan{
		Name: "image-build",
		Entries: []engine.Entry{
			engine.StepEntry{Step: executor.Step{
				Name:    "build bootc container image",
				Program: "podman",
				Args: []string{
					"build", "--rm", "--no-cache",
					"-t", env.Get(environ.KeyBootcImage),
					".",
				},
				Dir: BuildDir,
				Env: env.Environ(),
			}},
			engine.StepEntry{Step: executor.Step{
				Name:    "push bootc image",
				Program: "podman",
				Args: []string{
					"push", env.Get(environ.KeyBootcImage),
					"--authfile=" + AuthFile,
				},
				Dir: BuildDir,
				Env: env.Environ(),
			}},
			engine.StepEntry{Step: executor.Step{
				Name:    "build QCOW2 image",
				Program: "podman",
				Args: []string{
					"run", "--rm", "--privileged", "--pull=newer",
					"--security-opt", "label=type:unconfined_t",
					"-v", outputDir + ":/output",
					"-v", "./config.toml:/config.toml",
					"-v", "/var/lib/containers/storage:/var/lib/containers/storage",
					BootcBuilder,
					"--type", "qcow2",
					env.Get(environ.KeyBootcImage),
				},
				Dir: BuildDir,
				Env: env.Environ(),
			}},
			engine.StepEntry{Step: executor.Step{
				Name:    "build QCOW2 container image",
				Program: "podman",
				Args: []string{
					"build", "--rm", "--no-cache",
					"-t", env.Get(environ.KeyQCOWImage),
					"-f", "Containerfile.ocpvirt",
					".",
				},
				Dir: BuildDir,
				Env: env.Environ(),
			}},
			engine.StepEntry{Step: executor.Step{
				Name:    "push QCOW2 container image",
				Program: "podman",
				Args: []string{
					"push", env.Get(environ.KeyQCOWImage),
					"--authfile=" + AuthFile,
				},
				Dir: BuildDir,
				Env: env.Environ(),
			}},
		},
	}
	if err := deps.Engine.Run(ctx, build); err != nil {
		return err
	}

	deps.Log.Info().
		Str("bootc_image", env.Get(environ.KeyBootcImage)).
		Str("qcow_image", env.Get(environ.KeyQCOWImage)).
		Msg("build complete; run deploy-fleet to deploy the edge devices")
	return nil
}

// repoEnableArgs renders the --enable flag pairs for the repository list.
func repoEnableArgs() []string {
	args := make([]string, 0, len(Repositories)*2)
	for _, repo := range Repositories {
		args = append(args, "--enable", repo)
	}
	return args
}

// writeBuildFile writes captured step output into the build directory with
// credentials-appropriate permissions.
func writeBuildFile(name, content string) error {
	path := filepath.Join(BuildDir, name)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
