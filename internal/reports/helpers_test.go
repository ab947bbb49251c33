package reports_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/internal/reports"
	"github.com/JaimeStill/proctor/internal/sessions"
	"github.com/JaimeStill/proctor/pkg/lifecycle"
	"github.com/JaimeStill/proctor/pkg/storage"
)

type fakeRecords struct {
	sessions map[uuid.UUID]engine.Session
	events   map[uuid.UUID][]engine.Event

	mu          sync.Mutex
	findCalls   int
	eventsCalls int
}

func (f *fakeRecords) Find(_ context.Context, id uuid.UUID) (*engine.Session, error) {
	f.mu.Lock()
	f.findCalls++
	f.mu.Unlock()

	s, ok := f.sessions[id]
	if !ok {
		return nil, sessions.ErrNotFound
	}
	return &s, nil
}

func (f *fakeRecords) Events(_ context.Context, id uuid.UUID, _ sessions.EventFilters) ([]engine.Event, error) {
	f.mu.Lock()
	f.eventsCalls++
	f.mu.Unlock()

	if _, ok := f.sessions[id]; !ok {
		return nil, sessions.ErrNotFound
	}
	return f.events[id], nil
}

type blob struct {
	data        []byte
	contentType string
}

type memoryStore struct {
	mu        sync.Mutex
	blobs     map[string]blob
	uploadErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{blobs: make(map[string]blob)}
}

func (m *memoryStore) Start(*lifecycle.Coordinator) error { return nil }

func (m *memoryStore) Ready() bool { return true }

func (m *memoryStore) Upload(_ context.Context, key string, r io.Reader, contentType string) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = blob{data: data, contentType: contentType}
	return nil
}

func (m *memoryStore) Download(_ context.Context, key string) (*storage.Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{
		Body:          io.NopCloser(bytes.NewReader(b.data)),
		ContentType:   b.contentType,
		ContentLength: int64(len(b.data)),
	}, nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.blobs, key)
	return nil
}

func (m *memoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok, nil
}

var errUnavailable = errors.New("storage unavailable")

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture holds one ended session with two events and one active session.
var generatedAt = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

type fixture struct {
	records *fakeRecords
	store   *memoryStore
	ended   engine.Session
	active  engine.Session
}

func newFixture() *fixture {
	ended := endedSession(75, 30*time.Minute)
	active := engine.Session{ID: uuid.New(), CandidateName: "Bob", StartTime: epoch, IntegrityScore: 100}

	return &fixture{
		records: &fakeRecords{
			sessions: map[uuid.UUID]engine.Session{ended.ID: ended, active.ID: active},
			events: map[uuid.UUID][]engine.Event{
				ended.ID: {
					event(ended.ID, engine.FocusLost, epoch.Add(time.Minute)),
					event(ended.ID, engine.MultipleFaces, epoch.Add(2*time.Minute)),
				},
			},
		},
		store:  newMemoryStore(),
		ended:  ended,
		active: active,
	}
}

func (f *fixture) system() reports.System {
	return reports.New(f.records, f.store, engine.ClockFunc(func() time.Time { return generatedAt }), discard())
}
