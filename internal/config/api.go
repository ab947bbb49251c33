package config

import (
	"fmt"

	"github.com/JaimeStill/proctor/pkg/environ"
	"github.com/JaimeStill/proctor/pkg/formatting"
	"github.com/JaimeStill/proctor/pkg/middleware"
	"github.com/JaimeStill/proctor/pkg/openapi"
	"github.com/JaimeStill/proctor/pkg/pagination"
)

const (
	EnvAPIBasePath       = "PROCTOR_API_BASE_PATH"
	EnvAPIMaxMessageSize = "PROCTOR_API_MAX_MESSAGE_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "PROCTOR_CORS_ENABLED",
	Origins:          "PROCTOR_CORS_ORIGINS",
	AllowedMethods:   "PROCTOR_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "PROCTOR_CORS_ALLOWED_HEADERS",
	AllowCredentials: "PROCTOR_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "PROCTOR_CORS_MAX_AGE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "PROCTOR_OPENAPI_TITLE",
	Description: "PROCTOR_OPENAPI_DESCRIPTION",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "PROCTOR_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "PROCTOR_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, request limits, CORS, OpenAPI, and pagination settings.
type APIConfig struct {
	BasePath       string                `toml:"base_path"`
	MaxMessageSize string                `toml:"max_message_size"`
	CORS           middleware.CORSConfig `toml:"cors"`
	OpenAPI        openapi.Config        `toml:"openapi"`
	Pagination     pagination.Config     `toml:"pagination"`
}

// MaxMessageSizeBytes returns the largest accepted tick body or WebSocket
// message in bytes. Finalize guarantees the value parses.
func (c *APIConfig) MaxMessageSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxMessageSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxMessageSize == "" {
		c.MaxMessageSize = "64KB"
	}
	environ.String(EnvAPIBasePath, &c.BasePath)
	environ.String(EnvAPIMaxMessageSize, &c.MaxMessageSize)

	size, err := formatting.ParseBytes(c.MaxMessageSize)
	if err != nil {
		return fmt.Errorf("invalid max_message_size: %w", err)
	}
	if size < 1 {
		return fmt.Errorf("max_message_size must be positive")
	}

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxMessageSize != "" {
		c.MaxMessageSize = overlay.MaxMessageSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
	c.Pagination.Merge(&overlay.Pagination)
}
