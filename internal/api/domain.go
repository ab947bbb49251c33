package api

import (
	"context"

	"github.com/JaimeStill/proctor/internal/monitor"
	"github.com/JaimeStill/proctor/internal/reports"
	"github.com/JaimeStill/proctor/internal/sessions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Sessions sessions.System
	Monitor  monitor.System
	Reports  reports.System
}

// NewDomain creates all domain systems from the API runtime. The monitor
// registry persists through the sessions system and is drained before the
// database closes.
func NewDomain(runtime *Runtime) *Domain {
	sessionsSystem := sessions.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	monitorSystem := monitor.New(
		sessionsSystem,
		runtime.Monitor,
		runtime.Logger,
	)

	reportsSystem := reports.New(
		sessionsSystem,
		runtime.Storage,
		runtime.Monitor.Clock,
		runtime.Logger,
	)

	runtime.Lifecycle.OnDrain(func(ctx context.Context) {
		if err := monitorSystem.Shutdown(ctx); err != nil {
			runtime.Logger.Error("monitor drain incomplete", "error", err)
		}
	})

	return &Domain{
		Sessions: sessionsSystem,
		Monitor:  monitorSystem,
		Reports:  reportsSystem,
	}
}
