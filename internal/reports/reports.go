package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/internal/sessions"
	"github.com/JaimeStill/proctor/pkg/storage"
)

const contentType = "application/json"

type service struct {
	records Records
	storage storage.System
	clock   engine.Clock
	logger  *slog.Logger
}

// New creates a report system reading from records and archiving to store.
// A nil clock stamps reports with the wall clock.
func New(records Records, store storage.System, clock engine.Clock, logger *slog.Logger) System {
	if clock == nil {
		clock = engine.SystemClock
	}
	return &service{
		records: records,
		storage: store,
		clock:   clock,
		logger:  logger.With("system", "reports"),
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *service) Generate(ctx context.Context, id uuid.UUID) (*Report, error) {
	var (
		session *engine.Session
		events  []engine.Event
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		session, err = s.records.Find(gctx, id)
		return err
	})

	g.Go(func() error {
		var err error
		events, err = s.records.Events(gctx, id, sessions.EventFilters{})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	r := Build(*session, events)
	r.GeneratedAt = s.clock.Now().UTC()

	if !r.Summary.Verified {
		s.logger.Warn("stored score diverges from events",
			"session_id", id,
			"stored", r.Summary.IntegrityScore,
			"recomputed", r.Summary.RecomputedScore,
		)
	}

	return &r, nil
}

func (s *service) Archive(ctx context.Context, id uuid.UUID) (*Archived, error) {
	r, err := s.Generate(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Session.Active() {
		return nil, fmt.Errorf("%w: %s", ErrSessionActive, id)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	key := storageKey(id)
	if err := s.storage.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return nil, fmt.Errorf("upload report: %w", err)
	}

	s.logger.Info("report archived", "session_id", id, "key", key, "score", r.Summary.IntegrityScore)
	return &Archived{Key: key, Report: *r}, nil
}

func (s *service) Download(ctx context.Context, id uuid.UUID) (*storage.Blob, error) {
	b, err := s.storage.Download(ctx, storageKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotArchived, id)
		}
		return nil, err
	}
	return b, nil
}

func storageKey(id uuid.UUID) string {
	return fmt.Sprintf("reports/%s.json", id)
}
