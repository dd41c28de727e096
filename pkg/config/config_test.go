package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
redhat_registry:
  username: rh-user
  password: rh-pass
private_registry:
  url: registry.example.com
  username: windguard
  password: secret
ocp_cluster:
  domain: demo.example.com
  username: admin
  password: hunter2
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, validYAML)

	cfg, err := Load(path, KeyRedHatRegistry, KeyPrivateRegistry, KeyOCPCluster)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.PrivateRegistry.URL != "registry.example.com" {
		t.Errorf("private registry url = %q", cfg.PrivateRegistry.URL)
	}
	if cfg.OCPCluster.Domain != "demo.example.com" {
		t.Errorf("cluster domain = %q", cfg.OCPCluster.Domain)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var ce *Error
	if !errors.As(err, &ce) || ce.Kind != ErrorNotFound {
		t.Fatalf("expected not_found error, got %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "ocp_cluster: [unclosed")

	_, err := Load(path, KeyOCPCluster)
	var ce *Error
	if !errors.As(err, &ce) || ce.Kind != ErrorInvalidFormat {
		t.Fatalf("expected invalid_format error, got %v", err)
	}
}

// Each required key omitted from an otherwise valid document must fail with
// a missing-field error naming that key, and no config may be returned.
func TestLoad_MissingRequiredKeys(t *testing.T) {
	docs := map[string]string{
		KeyRedHatRegistry: `
private_registry:
  url: registry.example.com
  username: windguard
  password: secret
ocp_cluster:
  domain: demo.example.com
  username: admin
  password: hunter2
`,
		KeyPrivateRegistry: `
redhat_registry:
  username: rh-user
  password: rh-pass
ocp_cluster:
  domain: demo.example.com
  username: admin
  password: hunter2
`,
		KeyOCPCluster: `
redhat_registry:
  username: rh-user
  password: rh-pass
private_registry:
  url: registry.example.com
  username: windguard
  password: secret
`,
	}

	for missing, doc := range docs {
		t.Run(missing, func(t *testing.T) {
			path := writeConfig(t, doc)

			cfg, err := Load(path, KeyRedHatRegistry, KeyPrivateRegistry, KeyOCPCluster)
			if cfg != nil {
				t.Fatal("expected no config to be returned")
			}

			field, ok := IsMissingField(err)
			if !ok {
				t.Fatalf("expected missing_field error, got %v", err)
			}
			if field != missing {
				t.Errorf("missing field = %q, want %q", field, missing)
			}
		})
	}
}

func TestLoad_BlankCredentialFails(t *testing.T) {
	path := writeConfig(t, `
private_registry:
  url: registry.example.com
  username: windguard
  password: ""
`)

	cfg, err := Load(path, KeyPrivateRegistry)
	if cfg != nil {
		t.Fatal("expected no config to be returned")
	}
	var ce *Error
	if !errors.As(err, &ce) || ce.Kind != ErrorMissingField {
		t.Fatalf("expected missing_field error, got %v", err)
	}
}

func TestLoad_UnrequiredSectionsOptional(t *testing.T) {
	path := writeConfig(t, `
server: https://api.demo.example.com:6443
token: sha256~abc
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server == "" || cfg.Token == "" {
		t.Error("expected server and token to be populated")
	}
}
