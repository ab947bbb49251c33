package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// History is the read side of an event log used for suppression decisions.
type History interface {
	// Query returns events of kind with a timestamp strictly after since.
	Query(kind Kind, since time.Time) []Event
}

// Classifier turns perception snapshots into classified events.
// It holds no mutable state; all memory lives in the History it is given.
type Classifier struct {
	rules Rules
}

// NewClassifier creates a Classifier for the given rules. Zero fields take
// their DefaultRules values.
func NewClassifier(rules Rules) *Classifier {
	return &Classifier{rules: rules.WithDefaults()}
}

// Rules returns the classifier's rule set.
func (c *Classifier) Rules() Rules {
	return c.rules
}

// Classify evaluates the focus, presence, and item rules against tick at now.
// An event is suppressed when one of the same kind (and label, for items)
// exists in history with an elapsed time below the kind's window.
func (c *Classifier) Classify(sessionID uuid.UUID, tick Tick, history History, now time.Time) []Event {
	tick = tick.normalize()
	var out []Event

	if tick.Focus == Lost && !c.suppressed(history, FocusLost, "", now) {
		e := c.event(sessionID, FocusLost, "Candidate lost focus - looking away from screen", now)
		if tick.FocusLostSeconds > 0 {
			d := tick.FocusLostSeconds
			e.Metadata.Duration = &d
		}
		out = append(out, e)
	}

	switch {
	case tick.FaceCount == 0:
		if !c.suppressed(history, CandidateAbsent, "", now) {
			e := c.event(sessionID, CandidateAbsent, "No face detected - candidate may have left", now)
			e.Metadata.FaceCount = intPtr(0)
			out = append(out, e)
		}
	case tick.FaceCount > 1:
		if !c.suppressed(history, MultipleFaces, "", now) {
			desc := fmt.Sprintf("Multiple faces detected (%d)", tick.FaceCount)
			e := c.event(sessionID, MultipleFaces, desc, now)
			e.Metadata.FaceCount = intPtr(tick.FaceCount)
			out = append(out, e)
		}
	}

	seen := make(map[string]bool)
	for _, detected := range tick.Labels {
		label, ok := c.rules.Match(detected)
		if !ok || seen[label] {
			continue
		}
		seen[label] = true

		if c.suppressed(history, UnauthorizedItem, label, now) {
			continue
		}

		raw := strings.TrimSpace(detected)
		e := c.event(sessionID, UnauthorizedItem, "Unauthorized item detected: "+raw, now)
		e.Label = label
		e.Metadata.ObjectType = raw
		if conf, ok := tick.Confidence[detected]; ok {
			e.Metadata.Confidence = &conf
		}
		out = append(out, e)
	}

	return out
}

func (c *Classifier) suppressed(history History, kind Kind, label string, now time.Time) bool {
	if history == nil {
		return false
	}
	since := now.Add(-c.rules.Window(kind))
	for _, e := range history.Query(kind, since) {
		if kind != UnauthorizedItem || e.Label == label {
			return true
		}
	}
	return false
}

func (c *Classifier) event(sessionID uuid.UUID, kind Kind, desc string, now time.Time) Event {
	return Event{
		ID:          uuid.New(),
		SessionID:   sessionID,
		Kind:        kind,
		Severity:    kind.Severity(),
		Description: desc,
		Timestamp:   now,
	}
}

func intPtr(v int) *int {
	return &v
}
