// Package environ builds the immutable execution context for a run.
//
// The context is a pure derivation of the configuration plus a snapshot of
// the base process environment. It is computed once per run and never
// mutated afterwards; steps read from it through copies handed to the
// process-spawn boundary, so the real process environment is never touched.
package environ

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/windguard/edgedemo/pkg/config"
)

// Fixed image identity for the demo. The fully qualified references are
// derived from these plus the private registry coordinates.
const (
	ImageBase = "windguard-microshift"
	BootcTag  = "demo"
	QCOW2Tag  = "demo-qcow2"
)

// Variable names published into the execution context.
const (
	KeyClusterDomain = "OCP_CLUSTER_DOMAIN"
	KeyRegistryURL   = "REGISTRY_URL"
	KeyRegistryUser  = "REGISTRY_USER"
	KeyBootcImage    = "BOOTC_IMAGE"
	KeyQCOWImage     = "QCOW_IMAGE"
	KeyFleetAPIHost  = "RHEM_API_SERVER_URL"
)

// Context is an immutable name/value mapping threaded through every step of
// a run. All accessors return copies; the zero value is usable and empty.
type Context struct {
	vals map[string]string
}

// Build derives the execution context from the configuration, layered over a
// snapshot of base (os.Environ-style "k=v" entries) and an optional overlay
// of dotenv overrides. Precedence, lowest to highest: base, overlay, derived
// values. Build is deterministic for identical inputs.
func Build(cfg *config.Config, base []string, overlay map[string]string) Context {
	vals := make(map[string]string, len(base)+len(overlay)+8)
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vals[k] = v
		}
	}
	for k, v := range overlay {
		vals[k] = v
	}

	if cfg.OCPCluster != nil {
		vals[KeyClusterDomain] = cfg.OCPCluster.Domain
	}
	if reg := cfg.PrivateRegistry; reg != nil {
		vals[KeyRegistryURL] = reg.URL
		vals[KeyRegistryUser] = reg.Username
		vals[KeyBootcImage] = fmt.Sprintf("%s/%s/%s:%s", reg.URL, reg.Username, ImageBase, BootcTag)
		vals[KeyQCOWImage] = fmt.Sprintf("%s/%s/%s:%s", reg.URL, reg.Username, ImageBase, QCOW2Tag)
	}

	return Context{vals: vals}
}

// LoadOverlay reads optional KEY=value overrides from a dotenv file. A
// missing file is not an error; the overlay is simply empty.
func LoadOverlay(path string) (map[string]string, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return godotenv.Read(path)
}

// APIURL returns the cluster API endpoint for a cluster domain.
func APIURL(domain string) string {
	return fmt.Sprintf("https://api.%s:6443", domain)
}

// Get returns the value for a name, or "" when unset.
func (c Context) Get(name string) string {
	return c.vals[name]
}

// Lookup returns the value for a name and whether it is set.
func (c Context) Lookup(name string) (string, bool) {
	v, ok := c.vals[name]
	return v, ok
}

// With returns a copy of the context with one additional value. The
// receiver is left unchanged; this is how the orchestrator appends
// externally captured values such as a freshly retrieved route host.
func (c Context) With(name, value string) Context {
	vals := make(map[string]string, len(c.vals)+1)
	for k, v := range c.vals {
		vals[k] = v
	}
	vals[name] = value
	return Context{vals: vals}
}

// Environ renders the context as a sorted "k=v" slice for process spawning.
func (c Context) Environ() []string {
	out := make([]string, 0, len(c.vals))
	for k, v := range c.vals {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// Values returns a copy of the mapping, used as template data when
// rendering manifests.
func (c Context) Values() map[string]string {
	out := make(map[string]string, len(c.vals))
	for k, v := range c.vals {
		out[k] = v
	}
	return out
}
