package environ

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/windguard/edgedemo/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		PrivateRegistry: &config.Registry{
			URL:      "registry.example.com",
			Username: "windguard",
			Password: "secret",
		},
		OCPCluster: &config.Cluster{
			Domain:   "demo.example.com",
			Username: "admin",
			Password: "hunter2",
		},
	}
}

func TestBuild_DerivedValues(t *testing.T) {
	env := Build(testConfig(), []string{"PATH=/usr/bin"}, nil)

	want := map[string]string{
		KeyClusterDomain: "demo.example.com",
		KeyRegistryURL:   "registry.example.com",
		KeyRegistryUser:  "windguard",
		KeyBootcImage:    "registry.example.com/windguard/windguard-microshift:demo",
		KeyQCOWImage:     "registry.example.com/windguard/windguard-microshift:demo-qcow2",
		"PATH":           "/usr/bin",
	}
	for k, v := range want {
		if got := env.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

// Identical inputs must yield identical contexts.
func TestBuild_Deterministic(t *testing.T) {
	base := []string{"PATH=/usr/bin", "HOME=/root"}
	a := Build(testConfig(), base, nil)
	b := Build(testConfig(), base, nil)

	if !reflect.DeepEqual(a.Values(), b.Values()) {
		t.Error("two builds from identical inputs differ")
	}
}

func TestBuild_DoesNotMutateBase(t *testing.T) {
	base := []string{"PATH=/usr/bin"}
	_ = Build(testConfig(), base, nil)

	if base[0] != "PATH=/usr/bin" {
		t.Error("base environment was mutated")
	}
}

func TestWith_CopySemantics(t *testing.T) {
	env := Build(testConfig(), nil, nil)
	derived := env.With(KeyFleetAPIHost, "fleet.apps.demo.example.com")

	if _, ok := env.Lookup(KeyFleetAPIHost); ok {
		t.Error("With mutated the original context")
	}
	if derived.Get(KeyFleetAPIHost) != "fleet.apps.demo.example.com" {
		t.Error("With did not set the value on the copy")
	}
}

func TestBuild_OverlayPrecedence(t *testing.T) {
	base := []string{"EDITOR=vi", "REGISTRY_URL=from-base"}
	overlay := map[string]string{"EDITOR": "vim", "REGISTRY_URL": "from-overlay"}

	env := Build(testConfig(), base, overlay)

	if got := env.Get("EDITOR"); got != "vim" {
		t.Errorf("overlay should override base, got EDITOR=%q", got)
	}
	// Derived values win over both.
	if got := env.Get(KeyRegistryURL); got != "registry.example.com" {
		t.Errorf("derived value should win, got %s=%q", KeyRegistryURL, got)
	}
}

func TestEnviron_SortedPairs(t *testing.T) {
	env := Context{vals: map[string]string{"B": "2", "A": "1"}}
	got := env.Environ()
	want := []string{"A=1", "B=2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Environ() = %v, want %v", got, want)
	}
}

func TestLoadOverlay_MissingFile(t *testing.T) {
	overlay, err := LoadOverlay(filepath.Join(t.TempDir(), ".env"))
	if err != nil {
		t.Fatalf("missing overlay file should not error: %v", err)
	}
	if overlay != nil {
		t.Errorf("expected nil overlay, got %v", overlay)
	}
}

func TestLoadOverlay_ReadsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("FOO=bar\n"), 0600); err != nil {
		t.Fatal(err)
	}

	overlay, err := LoadOverlay(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overlay["FOO"] != "bar" {
		t.Errorf("overlay = %v", overlay)
	}
}

func TestAPIURL(t *testing.T) {
	got := APIURL("demo.example.com")
	if got != "https://api.demo.example.com:6443" {
		t.Errorf("APIURL = %q", got)
	}
}
