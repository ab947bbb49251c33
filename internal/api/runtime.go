package api

import (
	"github.com/JaimeStill/proctor/internal/config"
	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/internal/infrastructure"
	"github.com/JaimeStill/proctor/internal/monitor"
	"github.com/JaimeStill/proctor/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Monitor    monitor.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
		Monitor: monitor.Config{
			Rules: cfg.Monitor.Rules(),
			Notifier: engine.NotifierConfig{
				Buffer:  cfg.Monitor.SinkBuffer,
				Timeout: cfg.Monitor.SinkTimeoutDuration(),
			},
			Retention: cfg.Monitor.RetentionDuration(),
		},
	}
}
