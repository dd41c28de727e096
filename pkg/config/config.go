// Package config loads and validates the demo configuration document.
//
// Validation is all-or-nothing: Load either returns a fully validated
// Configuration or a classified *Error, never a partial result. Required
// top-level keys vary by run mode, so callers name the sections they need.
package config

import (
	"errors"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration path used when none is given.
const DefaultFile = "demo-config.yaml"

// Section names for the required-key sets passed to Load.
const (
	KeyRedHatRegistry  = "redhat_registry"
	KeyPrivateRegistry = "private_registry"
	KeyOCPCluster      = "ocp_cluster"
)

// RegistryAuth holds credentials for a registry that needs no URL
// (registry.redhat.io is fixed).
type RegistryAuth struct {
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password" validate:"required"`
}

// Registry holds the private registry endpoint and credentials.
type Registry struct {
	URL      string `yaml:"url" validate:"required"`
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password" validate:"required"`
}

// Cluster holds the OpenShift cluster endpoint and credentials.
type Cluster struct {
	Domain   string `yaml:"domain" validate:"required"`
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password" validate:"required"`
}

// Config is the immutable demo configuration document.
type Config struct {
	// RedHatRegistry authenticates pulls from registry.redhat.io.
	RedHatRegistry *RegistryAuth `yaml:"redhat_registry"`

	// PrivateRegistry receives the built bootc and QCOW2 images.
	PrivateRegistry *Registry `yaml:"private_registry"`

	// OCPCluster is the target OpenShift cluster.
	OCPCluster *Cluster `yaml:"ocp_cluster"`

	// Server and Token support token-based cluster login for the
	// deploy-wait mode; both are optional.
	Server string `yaml:"server"`
	Token  string `yaml:"token"`
}

// Load reads, parses and validates the configuration file at path. The
// required list names the top-level sections that must be present for the
// caller's run mode; absence of any is an ErrorMissingField. Fields inside a
// present section are validated with struct tags, so a section with a blank
// password also fails closed.
func Load(path string, required ...string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: ErrorNotFound, Path: path, Err: err}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Kind: ErrorInvalidFormat, Path: path, Err: err}
	}

	for _, key := range required {
		if !cfg.has(key) {
			return nil, &Error{Kind: ErrorMissingField, Path: path, Field: key}
		}
	}

	if err := validator.New().Struct(&cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, &Error{
				Kind:  ErrorMissingField,
				Path:  path,
				Field: verrs[0].Namespace(),
				Err:   err,
			}
		}
		return nil, &Error{Kind: ErrorInvalidFormat, Path: path, Err: err}
	}

	return &cfg, nil
}

// has reports whether the named top-level section is present.
func (c *Config) has(key string) bool {
	switch key {
	case KeyRedHatRegistry:
		return c.RedHatRegistry != nil
	case KeyPrivateRegistry:
		return c.PrivateRegistry != nil
	case KeyOCPCluster:
		return c.OCPCluster != nil
	default:
		return false
	}
}
