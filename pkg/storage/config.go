package storage

import (
	"fmt"

	"github.com/JaimeStill/proctor/pkg/environ"
)

// Config holds Azure Blob Storage connection parameters.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ContainerName    string
	ConnectionString string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.ContainerName == "" {
		c.ContainerName = "reports"
	}
	if env != nil {
		environ.String(env.ContainerName, &c.ContainerName)
		environ.String(env.ConnectionString, &c.ConnectionString)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.ConnectionString == "" {
		return fmt.Errorf("connection_string required")
	}
	return nil
}
