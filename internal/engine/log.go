package engine

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Log is the append-only event store of a single session.
// Reads return copies so callers never observe a partially applied append.
type Log struct {
	mu        sync.RWMutex
	sessionID uuid.UUID
	events    []Event
	sealed    bool
}

// NewLog creates an empty log owned by sessionID.
func NewLog(sessionID uuid.UUID) *Log {
	return &Log{sessionID: sessionID}
}

// SessionID returns the owning session.
func (l *Log) SessionID() uuid.UUID {
	return l.sessionID
}

// Append adds events atomically. Either every event is appended or none is.
func (l *Log) Append(events ...Event) error {
	for _, e := range events {
		if e.SessionID != l.sessionID {
			return fmt.Errorf("%w: event %s belongs to session %s", ErrInvalidInput, e.ID, e.SessionID)
		}
		if !e.Kind.Valid() {
			return fmt.Errorf("%w: unknown event kind %q", ErrInvalidInput, e.Kind)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sealed {
		return fmt.Errorf("%w: event log is sealed", ErrInvalidState)
	}
	l.events = append(l.events, events...)
	return nil
}

// Query returns events of kind with a timestamp strictly after since.
func (l *Log) Query(kind Kind, since time.Time) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Events(l.events).Query(kind, since)
}

// All returns every event ordered by timestamp ascending.
func (l *Log) All() []Event {
	l.mu.RLock()
	out := slices.Clone(l.events)
	l.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b Event) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	if out == nil {
		out = []Event{}
	}
	return out
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Score recomputes the integrity score from the full log.
func (l *Log) Score() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Score(l.events)
}

// Seal makes the log read-only.
func (l *Log) Seal() {
	l.mu.Lock()
	l.sealed = true
	l.mu.Unlock()
}

// Sealed reports whether the log accepts further appends.
func (l *Log) Sealed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sealed
}
