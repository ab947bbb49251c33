package monitor_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/internal/monitor"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type memorySink struct {
	mu       sync.Mutex
	started  []engine.Session
	recorded []engine.Event
	ended    []engine.Session
}

func (s *memorySink) SessionStarted(_ context.Context, rec engine.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, rec)
	return nil
}

func (s *memorySink) EventRecorded(_ context.Context, e engine.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = append(s.recorded, e)
	return nil
}

func (s *memorySink) SessionEnded(_ context.Context, rec engine.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = append(s.ended, rec)
	return nil
}

func (s *memorySink) endedSessions() []engine.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]engine.Session(nil), s.ended...)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRegistry(t *testing.T, clock *fakeClock, sink engine.Sink, retention time.Duration) monitor.System {
	t.Helper()
	sys := monitor.New(sink, monitor.Config{
		Clock:     clock,
		Retention: retention,
		Notifier:  engine.NotifierConfig{Buffer: 64, Timeout: time.Second},
	}, discard())

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, sys.Shutdown(ctx))
	})
	return sys
}
