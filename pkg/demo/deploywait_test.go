package demo

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/windguard/edgedemo/pkg/engine"
	"github.com/windguard/edgedemo/pkg/executor"
	"github.com/windguard/edgedemo/pkg/gitops"
	"github.com/windguard/edgedemo/pkg/telemetry"
)

// clusterFake simulates the oc CLI surface deploy-wait touches: application
// status queries, manifest applies and the console patch.
type clusterFake struct {
	executed  []string
	appSync   map[string]string
	appHealth map[string]string
	plugins   string
}

func (c *clusterFake) respond(step executor.Step) (string, error) {
	args := strings.Join(step.Args, " ")
	switch {
	case strings.Contains(args, "applications.argoproj.io"):
		app := step.Args[2]
		sync, ok := c.appSync[app]
		if !ok {
			return "", &executor.StepError{Step: step.Name, ExitCode: 1,
				Stderr: "Error from server (NotFound): applications.argoproj.io " + app + " not found"}
		}
		if strings.Contains(args, "sync.status") {
			return sync, nil
		}
		return c.appHealth[app], nil
	case strings.Contains(args, "spec.plugins"):
		return c.plugins, nil
	default:
		return "", nil
	}
}

func (c *clusterFake) Run(ctx context.Context, step executor.Step) (executor.Result, error) {
	c.executed = append(c.executed, step.Name)
	_, err := c.respond(step)
	if err != nil {
		return executor.Result{Step: step.Name, ExitCode: 1}, err
	}
	return executor.Result{Step: step.Name}, nil
}

func (c *clusterFake) RunCapturing(ctx context.Context, step executor.Step) (string, executor.Result, error) {
	c.executed = append(c.executed, step.Name)
	out, err := c.respond(step)
	if err != nil {
		return "", executor.Result{Step: step.Name, ExitCode: 1}, err
	}
	return out, executor.Result{Step: step.Name, Stdout: out}, nil
}

func testDeps(t *testing.T, runner executor.Runner) Deps {
	t.Helper()
	tracer, err := telemetry.NewTracer(telemetry.TracingConfig{}, "test", "dev")
	if err != nil {
		t.Fatal(err)
	}
	return Deps{
		Engine: engine.New(runner, zerolog.Nop(), nil, tracer),
		Runner: runner,
		Log:    zerolog.Nop(),
	}
}

func waitOpts(apps ...string) DeployWaitOptions {
	return DeployWaitOptions{
		Apps:       apps,
		Namespace:  gitops.DefaultNamespace,
		Interval:   time.Millisecond,
		Timeout:    50 * time.Millisecond,
		SkipLogin:  true,
		ConfigPath: "demo-config.yaml",
	}
}

func TestDeployWait_ConvergedAndPatched(t *testing.T) {
	fake := &clusterFake{
		appSync:   map[string]string{"backend": "Synced", "frontend": "Synced"},
		appHealth: map[string]string{"backend": "Healthy", "frontend": "Healthy"},
		plugins:   `["monitoring-plugin"]`,
	}

	if err := DeployWait(context.Background(), testDeps(t, fake), waitOpts("backend", "frontend")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := fake.executed[len(fake.executed)-1]
	if last != "patch console plugins" {
		t.Errorf("last step = %q, want the console patch", last)
	}
}

func TestDeployWait_MissingAppAborts(t *testing.T) {
	fake := &clusterFake{
		appSync:   map[string]string{"backend": "Synced"},
		appHealth: map[string]string{"backend": "Healthy"},
	}

	err := DeployWait(context.Background(), testDeps(t, fake), waitOpts("backend", "ghost"))

	var convErr *engine.ConvergenceError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConvergenceError, got %v", err)
	}
	if convErr.Resource != "ghost" {
		t.Errorf("failed resource = %q", convErr.Resource)
	}
	for _, name := range fake.executed {
		if strings.Contains(name, "patch") {
			t.Error("console patch must not run after a failed wait")
		}
	}
}

func TestDeployWait_NeverSyncedTimesOut(t *testing.T) {
	fake := &clusterFake{
		appSync:   map[string]string{"backend": "OutOfSync"},
		appHealth: map[string]string{"backend": "Progressing"},
	}

	err := DeployWait(context.Background(), testDeps(t, fake), waitOpts("backend"))

	var convErr *engine.ConvergenceError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConvergenceError, got %v", err)
	}
}

func TestDeployWait_MissingConfigAssumesSession(t *testing.T) {
	fake := &clusterFake{
		appSync:   map[string]string{"backend": "Synced"},
		appHealth: map[string]string{"backend": "Healthy"},
		plugins:   `["flightctl-plugin"]`,
	}

	opts := waitOpts("backend")
	opts.SkipLogin = false
	opts.ConfigPath = filepath.Join(t.TempDir(), "absent.yaml")

	if err := DeployWait(context.Background(), testDeps(t, fake), opts); err != nil {
		t.Fatalf("a missing config must not be fatal: %v", err)
	}
	for _, name := range fake.executed {
		if strings.Contains(name, "log into") {
			t.Error("no login step should run without server/token")
		}
	}
}

func TestDeployWait_ManifestsAppliedBeforeWaits(t *testing.T) {
	fake := &clusterFake{
		appSync:   map[string]string{"backend": "Synced"},
		appHealth: map[string]string{"backend": "Healthy"},
		plugins:   `["flightctl-plugin"]`,
	}

	opts := waitOpts("backend")
	opts.Manifests = []string{"manifests/ns.yaml", "manifests/app.yaml"}

	if err := DeployWait(context.Background(), testDeps(t, fake), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fake.executed) < 2 ||
		fake.executed[0] != "apply manifest manifests/ns.yaml" ||
		fake.executed[1] != "apply manifest manifests/app.yaml" {
		t.Errorf("manifests not applied first in order: %v", fake.executed)
	}
}
