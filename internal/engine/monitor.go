// Package engine implements the proctoring session event engine: the session
// state machine, the tick classifier with per-kind suppression windows, the
// append-only event log, and the dispatch of persistence notifications.
//
// The engine owns no timers and no I/O. Callers deliver ticks through
// Monitor.Process and supply a Clock; persistence is reached through a
// non-blocking Publisher.
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/proctor/pkg/integrity"
)

// State is the lifecycle phase of a Monitor.
type State string

const (
	Idle   State = "idle"
	Active State = "active"
	Ended  State = "ended"
)

// Session is the record of one candidate's monitored attempt.
type Session struct {
	ID             uuid.UUID  `json:"id"`
	CandidateName  string     `json:"candidate_name"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	IntegrityScore int        `json:"integrity_score"`
}

// Active reports whether the session has not ended.
func (s Session) Active() bool {
	return s.EndTime == nil
}

func (s Session) clone() Session {
	if s.EndTime != nil {
		end := *s.EndTime
		s.EndTime = &end
	}
	return s
}

// Config supplies a Monitor's collaborators. Zero rule fields fall back to
// their DefaultRules values; a nil Clock, Publisher, or Logger falls back to
// SystemClock, Discard, and a discarding logger.
type Config struct {
	Rules     Rules
	Clock     Clock
	Publisher Publisher
	Logger    *slog.Logger
}

// Monitor is the state machine for a single proctoring session.
// Process, Start, and End are mutually exclusive, so a classification pass
// always sees the log exactly as the previous pass left it.
type Monitor struct {
	mu         sync.Mutex
	state      State
	session    Session
	log        *Log
	classifier *Classifier
	clock      Clock
	publisher  Publisher
	logger     *slog.Logger
	done       chan struct{}
}

// NewMonitor creates an Idle monitor.
func NewMonitor(cfg Config) *Monitor {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if cfg.Publisher == nil {
		cfg.Publisher = Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Monitor{
		state:      Idle,
		classifier: NewClassifier(cfg.Rules),
		clock:      cfg.Clock,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
		done:       make(chan struct{}),
	}
}

// Start opens a session for candidateName and begins accepting ticks.
func (m *Monitor) Start(candidateName string) (Session, error) {
	name := strings.TrimSpace(candidateName)
	if name == "" {
		return Session{}, fmt.Errorf("%w: candidate name required", ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Idle {
		return Session{}, fmt.Errorf("%w: cannot start a session that is %s", ErrInvalidState, m.state)
	}

	m.session = Session{
		ID:             uuid.New(),
		CandidateName:  name,
		StartTime:      m.clock.Now(),
		IntegrityScore: integrity.MaxScore,
	}
	m.log = NewLog(m.session.ID)
	m.state = Active
	m.logger = m.logger.With("session_id", m.session.ID)

	m.publisher.Publish(Notification{Op: OpSessionStarted, Session: m.session.clone()})
	m.logger.Info("session started", "candidate", name)

	return m.session.clone(), nil
}

// Process classifies one tick and appends the resulting events.
// Ticks delivered while Idle or Ended are ignored without error.
func (m *Monitor) Process(tick Tick) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Active {
		return nil, nil
	}
	if err := tick.Validate(); err != nil {
		return nil, err
	}

	events := m.classifier.Classify(m.session.ID, tick, m.log, m.clock.Now())
	if len(events) == 0 {
		return nil, nil
	}

	if err := m.log.Append(events...); err != nil {
		return nil, err
	}
	m.session.IntegrityScore = m.log.Score()

	snapshot := m.session.clone()
	for _, e := range events {
		m.publisher.Publish(Notification{Op: OpEventRecorded, Session: snapshot, Event: e})
		m.logger.Info("event recorded",
			"kind", e.Kind,
			"severity", e.Severity,
			"score", snapshot.IntegrityScore,
		)
	}

	return events, nil
}

// End closes the session, freezes its score, and seals the log.
func (m *Monitor) End() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Active {
		return Session{}, fmt.Errorf("%w: cannot end a session that is %s", ErrInvalidState, m.state)
	}

	end := m.clock.Now()
	if end.Before(m.session.StartTime) {
		end = m.session.StartTime
	}

	m.log.Seal()
	m.session.IntegrityScore = m.log.Score()
	m.session.EndTime = &end
	m.state = Ended
	close(m.done)

	m.publisher.Publish(Notification{Op: OpSessionEnded, Session: m.session.clone()})
	m.logger.Info("session ended",
		"score", m.session.IntegrityScore,
		"events", m.log.Len(),
		"duration", end.Sub(m.session.StartTime),
	)

	return m.session.clone(), nil
}

// State returns the current lifecycle phase.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Done returns a channel closed once the session has ended.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// Session returns a snapshot of the session record. The zero Session is
// returned while Idle.
func (m *Monitor) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.clone()
}

// Score recomputes the integrity score from the event log.
func (m *Monitor) Score() int {
	m.mu.Lock()
	l := m.log
	m.mu.Unlock()

	if l == nil {
		return integrity.MaxScore
	}
	return l.Score()
}

// Events returns the session's events ordered by timestamp.
func (m *Monitor) Events() []Event {
	m.mu.Lock()
	l := m.log
	m.mu.Unlock()

	if l == nil {
		return []Event{}
	}
	return l.All()
}
