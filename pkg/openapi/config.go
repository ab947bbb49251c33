package openapi

import "github.com/JaimeStill/proctor/pkg/environ"

// Config holds OpenAPI metadata for spec generation.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// ConfigEnv maps config fields to environment variable names for override injection.
type ConfigEnv struct {
	Title       string
	Description string
}

// Finalize applies defaults and environment variable overrides.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		environ.String(env.Title, &c.Title)
		environ.String(env.Description, &c.Description)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
}

func (c *Config) loadDefaults() {
	if c.Title == "" {
		c.Title = "Proctor API"
	}
	if c.Description == "" {
		c.Description = "Live proctoring session monitoring and integrity reporting."
	}
}
