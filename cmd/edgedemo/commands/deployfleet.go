package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/windguard/edgedemo/pkg/config"
	"github.com/windguard/edgedemo/pkg/demo"
	"github.com/windguard/edgedemo/pkg/environ"
)

func newDeployFleetCommand(version string) *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "deploy-fleet [config-file]",
		Short: "Deploy the FlightCtl fleet and OpenShift Virtualization VMs",
		Long: `Apply the FlightCtl repository and fleet configuration and deploy the
edge virtual machines to OpenShift Virtualization. Manifests carrying image
placeholders are rendered with the built image references before applying.

Run build-image first so the referenced images exist in the registry.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if len(args) == 1 {
				path = args[0]
			}

			cfg, err := config.Load(path,
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

			return demo.DeployFleet(cmd.Context(), rt.deps, cfg, env)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional dotenv overrides for the execution context")

	return cmd
}
