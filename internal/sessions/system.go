package sessions

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/pkg/pagination"
)

// System defines the public contract for persisted session records.
// It is also the engine's durable sink.
type System interface {
	engine.Sink

	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[engine.Session], error)

	Find(ctx context.Context, id uuid.UUID) (*engine.Session, error)

	// Events returns a session's events in ascending timestamp order.
	Events(ctx context.Context, id uuid.UUID, filters EventFilters) ([]engine.Event, error)
}
