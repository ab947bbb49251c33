package config

import (
	"fmt"
	"time"

	"github.com/JaimeStill/proctor/pkg/environ"
)

const (
	EnvServerHost            = "PROCTOR_SERVER_HOST"
	EnvServerPort            = "PROCTOR_SERVER_PORT"
	EnvServerReadTimeout     = "PROCTOR_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "PROCTOR_SERVER_WRITE_TIMEOUT"
	EnvServerShutdownTimeout = "PROCTOR_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ReadTimeoutDuration returns ReadTimeout as a time.Duration.
func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	return d
}

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()

	environ.String(EnvServerHost, &c.Host)
	environ.Int(EnvServerPort, &c.Port)
	environ.String(EnvServerReadTimeout, &c.ReadTimeout)
	environ.String(EnvServerWriteTimeout, &c.WriteTimeout)
	environ.String(EnvServerShutdownTimeout, &c.ShutdownTimeout)

	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.ReadTimeout != "" {
		c.ReadTimeout = overlay.ReadTimeout
	}
	if overlay.WriteTimeout != "" {
		c.WriteTimeout = overlay.WriteTimeout
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "30s"
	}
	// hijacked WebSocket connections are not bound by WriteTimeout
	if c.WriteTimeout == "" {
		c.WriteTimeout = "30s"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "15s"
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for name, v := range map[string]string{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}
