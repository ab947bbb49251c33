package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/proctor/pkg/integrity"
)

// Kind classifies an integrity-relevant event.
type Kind string

const (
	FocusLost        Kind = "focus_lost"
	CandidateAbsent  Kind = "candidate_absent"
	MultipleFaces    Kind = "multiple_faces"
	UnauthorizedItem Kind = "unauthorized_item"
)

// Kinds lists every event kind in rule evaluation order.
var Kinds = []Kind{FocusLost, CandidateAbsent, MultipleFaces, UnauthorizedItem}

var severities = map[Kind]integrity.Severity{
	FocusLost:        integrity.Major,
	CandidateAbsent:  integrity.Critical,
	MultipleFaces:    integrity.Critical,
	UnauthorizedItem: integrity.Major,
}

// Severity returns the fixed severity for the kind.
func (k Kind) Severity() integrity.Severity {
	return severities[k]
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := severities[k]
	return ok
}

// ParseKind converts a stored or user-supplied value into a Kind.
func ParseKind(v string) (Kind, error) {
	k := Kind(v)
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown event kind %q", ErrInvalidInput, v)
	}
	return k, nil
}

// Metadata carries informational extras. It never affects classification.
type Metadata struct {
	FaceCount  *int     `json:"face_count,omitempty"`
	ObjectType string   `json:"object_type,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Duration   *int     `json:"duration,omitempty"`
}

// Empty reports whether no metadata field is set.
func (m Metadata) Empty() bool {
	return m.FaceCount == nil && m.ObjectType == "" && m.Confidence == nil && m.Duration == nil
}

// Event is an immutable classified occurrence within a session.
// Label holds the normalized restricted label for unauthorized_item events.
type Event struct {
	ID          uuid.UUID          `json:"id"`
	SessionID   uuid.UUID          `json:"session_id"`
	Kind        Kind               `json:"kind"`
	Severity    integrity.Severity `json:"severity"`
	Label       string             `json:"label,omitempty"`
	Description string             `json:"description"`
	Timestamp   time.Time          `json:"timestamp"`
	Metadata    Metadata           `json:"metadata"`
}

// Events adapts a plain slice to the History contract used by the classifier.
type Events []Event

// Query returns events of kind with a timestamp strictly after since.
func (es Events) Query(kind Kind, since time.Time) []Event {
	var out []Event
	for _, e := range es {
		if e.Kind == kind && e.Timestamp.After(since) {
			out = append(out, e)
		}
	}
	return out
}

// Score folds the events into an integrity score.
func Score(events []Event) int {
	sev := make([]integrity.Severity, len(events))
	for i, e := range events {
		sev[i] = e.Severity
	}
	return integrity.Score(sev...)
}
