package demo

import (
	"context"
	"errors"
	"time"

	"github.com/windguard/edgedemo/pkg/config"
	"github.com/windguard/edgedemo/pkg/engine"
	"github.com/windguard/edgedemo/pkg/executor"
	"github.com/windguard/edgedemo/pkg/gitops"
	"github.com/windguard/edgedemo/pkg/poller"
)

// DeployWaitOptions parameterizes the deploy-wait workflow.
type DeployWaitOptions struct {
	// Apps are the Argo CD application names to wait for.
	Apps []string

	// Namespace is where the applications live.
	Namespace string

	// Interval and Timeout apply to each application's wait.
	Interval time.Duration
	Timeout  time.Duration

	// Manifests are applied to the cluster before waiting; may be empty.
	Manifests []string

	// SkipLogin assumes an existing cluster session.
	SkipLogin bool

	// ConfigPath locates the optional login configuration.
	ConfigPath string
}

// DeployWait applies manifests, waits for every named application to be
// Synced and Healthy, and then patches the console plugin list. A missing
// config file is not fatal: the cluster session is assumed to exist.
func DeployWait(ctx context.Context, deps Deps, opts DeployWaitOptions) error {
	if !opts.SkipLogin {
		if err := loginFromConfig(ctx, deps, opts.ConfigPath); err != nil {
			return err
		}
	}

	if err := applyManifests(ctx, deps, opts.Manifests); err != nil {
		return err
	}

	entries := make([]engine.Entry, 0, len(opts.Apps))
	for _, app := range opts.Apps {
		entries = append(entries, engine.WaitEntry{
			Target: poller.Target{
				Name:      app,
				Namespace: opts.Namespace,
				Interval:  opts.Interval,
				Timeout:   opts.Timeout,
			},
			Query: appQuery(deps.Runner, app, opts.Namespace),
			Pred:  gitops.Converged,
		})
	}
	if err := deps.Engine.Run(ctx, engine.Plan{Name: "deploy-wait", Entries: entries}); err != nil {
		return err
	}
	deps.Log.Info().Msg("all specified applications are Synced and Healthy")

	return gitops.PatchConsole(ctx, deps.Runner, deps.Log)
}

// loginFromConfig logs into the cluster with the server/token fields of the
// config file. No file, or a file without both fields, means the operator
// is assumed to already have a session.
func loginFromConfig(ctx context.Context, deps Deps, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		var ce *config.Error
		if errors.As(err, &ce) && ce.Kind == config.ErrorNotFound {
			deps.Log.Warn().Str("config", path).Msg("no config file found, assuming already logged in")
			return nil
		}
		return err
	}
	if cfg.Server == "" || cfg.Token == "" {
		deps.Log.Warn().Str("config", path).Msg("config missing server or token, skipping login")
		return nil
	}

	deps.Log.Info().Str("server", cfg.Server).Msg("logging into cluster")
	plan := engine.Plan{
		Name:    "cluster-login",
		Entries: []engine.Entry{engine.StepEntry{Step: gitops.TokenLoginStep(cfg.Server, cfg.Token)}},
	}
	return deps.Engine.Run(ctx, plan)
}

// applyManifests applies each manifest to the cluster in order.
func applyManifests(ctx context.Context, deps Deps, paths []string) error {
	if len(paths) == 0 {
		deps.Log.Info().Msg("no manifests configured, skipping apply")
		return nil
	}

	entries := make([]engine.Entry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, engine.StepEntry{Step: executor.Step{
			Name:    "apply manifest " + p,
			Program: "oc",
			Args:    []string{"apply", "-f", p},
		}})
	}
	return deps.Engine.Run(ctx, engine.Plan{Name: "apply-manifests", Entries: entries})
}

// appQuery adapts the Argo CD status lookup to the poller's query contract.
func appQuery(r executor.Runner, app, namespace string) poller.StatusFunc {
	return func(ctx context.Context) (poller.Status, bool, error) {
		return gitops.AppStatus(ctx, r, app, namespace)
	}
}
