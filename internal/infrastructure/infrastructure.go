// Package infrastructure assembles the shared systems (lifecycle, logging,
// database, blob storage) that the domain packages are built on.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/proctor/internal/config"
	"github.com/JaimeStill/proctor/pkg/database"
	"github.com/JaimeStill/proctor/pkg/lifecycle"
	"github.com/JaimeStill/proctor/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).
		With("service", "proctor", "env", cfg.Env())

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Database:  db,
		Storage:   store,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}

// Ready reports whether startup finished and every backing system is reachable.
func (i *Infrastructure) Ready() bool {
	checks := []lifecycle.ReadinessChecker{i.Lifecycle, i.Database, i.Storage}
	for _, c := range checks {
		if !c.Ready() {
			return false
		}
	}
	return true
}
