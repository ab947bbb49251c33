package engine

import "context"

// Op names a persistence notification.
type Op string

const (
	OpSessionStarted Op = "session_started"
	OpEventRecorded  Op = "event_recorded"
	OpSessionEnded   Op = "session_ended"
)

// Sink receives durable copies of session state. Implementations may block;
// the engine only ever calls them from the Notifier worker.
type Sink interface {
	SessionStarted(ctx context.Context, s Session) error
	EventRecorded(ctx context.Context, e Event) error
	SessionEnded(ctx context.Context, s Session) error
}

// Notification is one queued sink call.
type Notification struct {
	Op      Op
	Session Session
	Event   Event
}

// Publisher accepts notifications without blocking the caller.
type Publisher interface {
	Publish(n Notification)
}

type discard struct{}

func (discard) Publish(Notification) {}

// Discard is a Publisher that drops every notification.
var Discard Publisher = discard{}
