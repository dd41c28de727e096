package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/windguard/edgedemo/pkg/demo"
	"github.com/windguard/edgedemo/pkg/gitops"
)

func newDeployWaitCommand(version string) *cobra.Command {
	var (
		namespace string
		interval  int
		timeout   int
		skipLogin bool
		manifests []string
	)

	cmd := &cobra.Command{
		Use:   "deploy-wait APP...",
		Short: "Apply manifests and wait for Argo CD applications to converge",
		Long: `Apply manifests to the cluster, wait until every named Argo CD
application reports Synced and Healthy, then patch the OpenShift Console to
include the FlightCtl plugin.

Exit codes: 0 on success, 1 on a step failure, 2 when an application fails
to converge, 3 when the final console patch fails, 130 on interrupt.`,
		Example: `  edgedemo deploy-wait backend frontend database

  edgedemo deploy-wait --namespace my-gitops --timeout 900 app1 app2

  # Assume an existing oc session
  edgedemo deploy-wait --skip-login app1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(version)
			if err != nil {
				return err
			}
			defer rt.shutdown()

			opts := demo.DeployWaitOptions{
				Apps:       args,
				Namespace:  namespace,
				Interval:   time.Duration(interval) * time.Second,
				Timeout:    time.Duration(timeout) * time.Second,
				Manifests:  manifests,
				SkipLogin:  skipLogin,
				ConfigPath: configPath,
			}

			return demo.DeployWait(cmd.Context(), rt.deps, opts)
		},
	}

	cmd.Flags().StringVarP(&namespace, "namespace", "n", gitops.DefaultNamespace, "namespace where the Argo CD applications reside")
	cmd.Flags().IntVarP(&interval, "interval", "i", int(demo.DefaultInterval/time.Second), "seconds between status checks")
	cmd.Flags().IntVarP(&timeout, "timeout", "t", int(demo.DefaultTimeout/time.Second), "timeout per application in seconds")
	cmd.Flags().BoolVar(&skipLogin, "skip-login", false, "skip cluster login (assume already logged in)")
	cmd.Flags().StringArrayVarP(&manifests, "manifest", "f", nil, "manifest file to apply before waiting (repeatable)")

	return cmd
}
