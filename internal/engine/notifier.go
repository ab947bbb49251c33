package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// NotifierConfig tunes the asynchronous sink dispatcher.
type NotifierConfig struct {
	// Buffer is the number of notifications held before new ones are dropped.
	Buffer int
	// Timeout bounds each sink call.
	Timeout time.Duration
	// OnFailure receives every failed delivery. Optional.
	OnFailure func(*SinkFailure)
}

// NotifierStats reports delivery counters.
type NotifierStats struct {
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
}

// Notifier forwards notifications to a Sink on a single worker goroutine,
// preserving publish order. Publish never blocks; a full queue drops.
type Notifier struct {
	sink      Sink
	queue     chan Notification
	timeout   time.Duration
	onFailure func(*SinkFailure)
	logger    *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}

	delivered atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewNotifier starts a dispatcher delivering to sink.
func NewNotifier(sink Sink, cfg NotifierConfig, logger *slog.Logger) *Notifier {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	n := &Notifier{
		sink:      sink,
		queue:     make(chan Notification, cfg.Buffer),
		timeout:   cfg.Timeout,
		onFailure: cfg.OnFailure,
		logger:    logger.With("system", "notifier"),
		done:      make(chan struct{}),
	}

	go n.run()
	return n
}

// Publish queues n for delivery.
func (n *Notifier) Publish(note Notification) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		n.dropped.Add(1)
		n.logger.Warn("notification after close dropped", "op", note.Op, "session_id", note.Session.ID)
		return
	}

	select {
	case n.queue <- note:
	default:
		n.dropped.Add(1)
		n.logger.Warn("notification queue full", "op", note.Op, "session_id", note.Session.ID)
	}
}

// Close stops accepting notifications and waits for the queue to drain.
func (n *Notifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notifier drain: %w", ctx.Err())
	}
}

// Stats returns the delivery counters.
func (n *Notifier) Stats() NotifierStats {
	return NotifierStats{
		Delivered: n.delivered.Load(),
		Failed:    n.failed.Load(),
		Dropped:   n.dropped.Load(),
	}
}

func (n *Notifier) run() {
	defer close(n.done)
	for note := range n.queue {
		n.deliver(note)
	}
}

func (n *Notifier) deliver(note Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	var err error
	switch note.Op {
	case OpSessionStarted:
		err = n.sink.SessionStarted(ctx, note.Session)
	case OpEventRecorded:
		err = n.sink.EventRecorded(ctx, note.Event)
	case OpSessionEnded:
		err = n.sink.SessionEnded(ctx, note.Session)
	default:
		err = errors.New("unknown notification op")
	}

	if err == nil {
		n.delivered.Add(1)
		return
	}

	n.failed.Add(1)
	failure := &SinkFailure{Op: note.Op, SessionID: note.Session.ID, Err: err}
	n.logger.Error("sink notification failed",
		"op", note.Op,
		"session_id", note.Session.ID,
		"error", err,
	)
	if n.onFailure != nil {
		n.onFailure(failure)
	}
}
