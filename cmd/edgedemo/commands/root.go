// Package commands wires the edgedemo CLI: flag parsing, telemetry setup
// and the three demo workflows.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/windguard/edgedemo/pkg/config"
)

var (
	// Global flags
	configPath    string
	verbose       bool
	jsonOutput    bool
	metricsAddr   string
	traceExporter string
	traceEndpoint string
)

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "edgedemo",
		Short: "WindGuard edge demo orchestrator",
		Long: `edgedemo sequences the external tools that set up the WindGuard
edge-computing demo: it builds the bootable MicroShift images, deploys the
FlightCtl fleet and OpenShift Virtualization VMs, and waits for the
GitOps-managed applications to converge.

The heavy lifting is done by subscription-manager, dnf, podman, oc and
flightctl; edgedemo parameterizes and supervises those invocations with
fail-fast semantics.`,
		Version:       version + " (commit: " + commit + ", built: " + buildDate + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "log in JSON format")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address for the run")
	rootCmd.PersistentFlags().StringVar(&traceExporter, "trace", "none", "trace exporter (none, stdout, otlp)")
	rootCmd.PersistentFlags().StringVar(&traceEndpoint, "trace-endpoint", "localhost:4317", "OTLP collector endpoint")

	rootCmd.AddCommand(newBuildImageCommand(version))
	rootCmd.AddCommand(newDeployFleetCommand(version))
	rootCmd.AddCommand(newDeployWaitCommand(version))

	return rootCmd
}
