// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/proctor/internal/config"
	"github.com/JaimeStill/proctor/internal/infrastructure"
	"github.com/JaimeStill/proctor/pkg/middleware"
	"github.com/JaimeStill/proctor/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	n, err := registerRoutes(mux, domain, cfg)
	if err != nil {
		return nil, err
	}
	runtime.Logger.Debug("routes registered", "count", n)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
