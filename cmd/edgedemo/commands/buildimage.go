package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/windguard/edgedemo/pkg/config"
	"github.com/windguard/edgedemo/pkg/demo"
	"github.com/windguard/edgedemo/pkg/environ"
)

func newBuildImageCommand(version string) *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "build-image [config-file]",
		Short: "Build and push the bootable edge images",
		Long: `Build the bootc container image and the QCOW2 disk image for the
WindGuard edge devices and push both to the private registry.

The build host needs subscription-manager, dnf, podman, oc and flightctl
on the PATH, and the configuration file must carry the redhat_registry,
private_registry and ocp_cluster sections.`,
		Example: `  # Use demo-config.yaml in the working directory
  edgedemo build-image

  # Use an explicit config file
  edgedemo build-image ./environments/staging.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if len(args) == 1 {
				path = args[0]
			}

			cfg, err := config.Load(path,
				config.KeyRedHatRegistry,
				config.KeyPrivateRegistry,
				config.KeyOCPCluster,
			)
			if err != nil {
				return err
			}

			rt, err := newRuntime(version)
			if err != nil {
				return err
			}
			defer rt.shutdown()

			overlay, err := environ.LoadOverlay(envFile)
			if err != nil {
				return err
			}
			env := environ.Build(cfg, os.Environ(), overlay)

			return demo.BuildImage(cmd.Context(), rt.deps, cfg, env)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional dotenv overrides for the execution context")

	return cmd
}
