package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/proctor/internal/engine"
)

// Config tunes the registry. Zero rule fields and a nil Clock fall back to the engine defaults.
type Config struct {
	Rules     engine.Rules
	Clock     engine.Clock
	Notifier  engine.NotifierConfig
	Retention time.Duration
}

type entry struct {
	monitor *engine.Monitor
	evict   *time.Timer
}

type registry struct {
	cfg      Config
	notifier *engine.Notifier
	logger   *slog.Logger

	mu       sync.RWMutex
	monitors map[uuid.UUID]*entry
	closed   bool
}

// New creates a registry publishing every session's notifications to sink.
func New(sink engine.Sink, cfg Config, logger *slog.Logger) System {
	return &registry{
		cfg:      cfg,
		notifier: engine.NewNotifier(sink, cfg.Notifier, logger),
		logger:   logger.With("system", "monitor"),
		monitors: make(map[uuid.UUID]*entry),
	}
}

func (r *registry) Handler(maxMessageSize int64) *Handler {
	return NewHandler(r, r.logger, maxMessageSize)
}

func (r *registry) Start(ctx context.Context, cmd StartCommand) (*Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := engine.NewMonitor(engine.Config{
		Rules:     r.cfg.Rules,
		Clock:     r.cfg.Clock,
		Publisher: r.notifier,
		Logger:    r.logger,
	})

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrShuttingDown
	}

	s, err := m.Start(cmd.CandidateName)
	if err != nil {
		return nil, err
	}
	r.monitors[s.ID] = &entry{monitor: m}

	return status(m), nil
}

func (r *registry) Status(id uuid.UUID) (*Status, error) {
	m, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return status(m), nil
}

func (r *registry) Tick(ctx context.Context, id uuid.UUID, tick engine.Tick) (*TickResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	events, err := m.Process(tick)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []engine.Event{}
	}

	return &TickResult{
		Events: events,
		Score:  m.Score(),
		State:  m.State(),
	}, nil
}

func (r *registry) Events(id uuid.UUID) ([]engine.Event, error) {
	m, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return m.Events(), nil
}

func (r *registry) Done(id uuid.UUID) (<-chan struct{}, error) {
	m, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return m.Done(), nil
}

func (r *registry) End(ctx context.Context, id uuid.UUID) (*Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.monitors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if _, err := e.monitor.End(); err != nil {
		return nil, err
	}

	if r.cfg.Retention > 0 {
		e.evict = time.AfterFunc(r.cfg.Retention, func() { r.evict(id, e) })
	}

	return status(e.monitor), nil
}

func (r *registry) Stats() engine.NotifierStats {
	return r.notifier.Stats()
}

func (r *registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	ended := 0
	for _, e := range r.monitors {
		if e.evict != nil {
			e.evict.Stop()
		}
		if _, err := e.monitor.End(); err == nil {
			ended++
		} else if !errors.Is(err, engine.ErrInvalidState) {
			r.logger.Error("failed to end session at shutdown", "error", err)
		}
	}
	r.mu.Unlock()

	r.logger.Info("monitors drained", "ended", ended)

	return r.notifier.Close(ctx)
}

func (r *registry) lookup(id uuid.UUID) (*engine.Monitor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.monitors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.monitor, nil
}

func (r *registry) evict(id uuid.UUID, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.monitors[id] == e {
		delete(r.monitors, id)
		r.logger.Debug("ended monitor evicted", "session_id", id)
	}
}

func status(m *engine.Monitor) *Status {
	return &Status{
		Session: m.Session(),
		State:   m.State(),
		Score:   m.Score(),
		Events:  len(m.Events()),
	}
}
