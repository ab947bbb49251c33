package reports

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/internal/sessions"
	"github.com/JaimeStill/proctor/pkg/storage"
)

// Records is the read side of persisted sessions that reports draw from.
type Records interface {
	Find(ctx context.Context, id uuid.UUID) (*engine.Session, error)
	Events(ctx context.Context, id uuid.UUID, filters sessions.EventFilters) ([]engine.Event, error)
}

// Archived identifies a report stored in blob storage.
type Archived struct {
	Key    string `json:"key"`
	Report Report `json:"report"`
}

// System defines the public contract for report operations.
type System interface {
	Handler() *Handler

	Generate(ctx context.Context, id uuid.UUID) (*Report, error)

	// Archive generates the report of an ended session and uploads it as JSON.
	Archive(ctx context.Context, id uuid.UUID) (*Archived, error)

	// Download returns the archived report blob. The caller must close its Body.
	Download(ctx context.Context, id uuid.UUID) (*storage.Blob, error)
}
