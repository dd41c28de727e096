// Package demo holds the three fixed orchestration workflows of the
// WindGuard edge demo: building the bootable images, deploying the fleet,
// and waiting for the GitOps applications to converge. The workflows are
// static plans; the engine supplies the execution semantics.
package demo

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/windguard/edgedemo/pkg/engine"
	"github.com/windguard/edgedemo/pkg/executor"
)

// RHEL repositories and packages required on the build host.
var (
	Repositories = []string{
		"rhacm-2.15-for-rhel-9-x86_64-rpms",
		"rhocp-4.20-for-rhel-9-x86_64-rpms",
	}

	Packages = []string{
		"flightctl",
		"container-tools",
		"openshift-clients",
	}
)

const (
	// BootcBuilder produces the QCOW2 disk image from the bootc image.
	BootcBuilder = "registry.redhat.io/rhel9/bootc-image-builder:latest"

	// BuildDir is where the Containerfiles and build inputs live.
	BuildDir = "demo-environment-setup/microshift-im-build"

	// AuthFile collects registry credentials inside BuildDir.
	AuthFile = "auth.json"

	// RedHatRegistry is the fixed upstream registry for base images.
	RedHatRegistry = "registry.redhat.io"
)

// Fleet deployment manifests, relative to the repository root.
const (
	FleetRepoManifest   = "demo-environment-setup/rhem-windguard-repo.yml"
	FleetManifest       = "demo-environment-setup/rhem-windguard-fleet.yml"
	VMNamespaceManifest = "demo-environment-setup/ocpvirt-windguard-namespace.yml"
	VMServiceManifest   = "demo-environment-setup/ocpvirt-windguard-vm-service.yml"
	VMRoutesManifest    = "demo-environment-setup/ocpvirt-windguard-vm-routes.yml"
	VMManifest          = "demo-environment-setup/ocpvirt-windguard-vm-ocpvirt.yml"
)

// Deploy-wait defaults.
const (
	DefaultInterval = 10 * time.Second
	DefaultTimeout  = 600 * time.Second
)

// Deps bundles what every workflow needs: the engine for plan execution,
// the runner for captured one-off steps, and a logger.
type Deps struct {
	Engine *engine.Engine
	Runner executor.Runner
	Log    zerolog.Logger
}
