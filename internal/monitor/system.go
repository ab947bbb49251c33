// Package monitor hosts the live proctoring sessions of this process. Each
// session is driven by its own engine.Monitor; all of them publish through one
// shared notifier into the durable sink.
package monitor

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/proctor/internal/engine"
)

// StartCommand opens a new session.
type StartCommand struct {
	CandidateName string `json:"candidate_name"`
}

// Status is a point-in-time view of a live monitor.
type Status struct {
	Session engine.Session `json:"session"`
	State   engine.State   `json:"state"`
	Score   int            `json:"score"`
	Events  int            `json:"events"`
}

// TickResult reports the events a tick produced and the score after it.
type TickResult struct {
	Events []engine.Event `json:"events"`
	Score  int            `json:"score"`
	State  engine.State   `json:"state"`
}

// System defines the public contract for live monitor operations.
type System interface {
	Handler(maxMessageSize int64) *Handler

	Start(ctx context.Context, cmd StartCommand) (*Status, error)
	Status(id uuid.UUID) (*Status, error)
	Tick(ctx context.Context, id uuid.UUID, tick engine.Tick) (*TickResult, error)
	Events(id uuid.UUID) ([]engine.Event, error)
	Done(id uuid.UUID) (<-chan struct{}, error)
	End(ctx context.Context, id uuid.UUID) (*Status, error)
	Stats() engine.NotifierStats

	// Shutdown ends every active session and waits for pending
	// notifications to reach the sink.
	Shutdown(ctx context.Context) error
}
