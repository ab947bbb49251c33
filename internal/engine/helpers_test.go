package engine_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/JaimeStill/proctor/internal/engine"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: epoch}
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

type recorder struct {
	mu    sync.Mutex
	notes []engine.Notification
}

func (r *recorder) Publish(n engine.Notification) {
	r.mu.Lock()
	r.notes = append(r.notes, n)
	r.mu.Unlock()
}

func (r *recorder) ops() []engine.Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]engine.Op, len(r.notes))
	for i, n := range r.notes {
		ops[i] = n.Op
	}
	return ops
}

type memorySink struct {
	mu     sync.Mutex
	calls  []engine.Op
	failOn engine.Op
	block  chan struct{}
}

func (s *memorySink) record(ctx context.Context, op engine.Op) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, op)
	if op == s.failOn {
		return errors.New("database unreachable")
	}
	return nil
}

func (s *memorySink) SessionStarted(ctx context.Context, _ engine.Session) error {
	return s.record(ctx, engine.OpSessionStarted)
}

func (s *memorySink) EventRecorded(ctx context.Context, _ engine.Event) error {
	return s.record(ctx, engine.OpEventRecorded)
}

func (s *memorySink) SessionEnded(ctx context.Context, _ engine.Session) error {
	return s.record(ctx, engine.OpSessionEnded)
}

func (s *memorySink) recorded() []engine.Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]engine.Op(nil), s.calls...)
}

func countKind(events []engine.Event, kind engine.Kind) int {
	n := 0
	for _, e := range events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
