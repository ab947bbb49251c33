// Package integrity computes the bounded trust score of a proctoring session
// from the severities of its recorded events.
//
// The score is a pure fold with no hidden state, so any consumer holding the
// persisted event rows can reproduce the live value exactly.
package integrity

import "fmt"

// Severity grades how strongly an event counts against a session.
type Severity string

const (
	Minor    Severity = "minor"
	Major    Severity = "major"
	Critical Severity = "critical"
)

const (
	// MaxScore is the score of a session with no recorded events.
	MaxScore = 100
	// MinScore is the floor the score is clamped to.
	MinScore = 0
)

var penalties = map[Severity]int{
	Minor:    5,
	Major:    10,
	Critical: 15,
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	_, ok := penalties[s]
	return ok
}

// ParseSeverity converts a stored or user-supplied value into a Severity.
func ParseSeverity(v string) (Severity, error) {
	s := Severity(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown severity %q", v)
	}
	return s, nil
}

// Penalty returns the deduction applied for one event of severity s.
// Unknown severities deduct nothing.
func Penalty(s Severity) int {
	return penalties[s]
}

// Score returns max(0, 100 - sum of penalties).
func Score(severities ...Severity) int {
	score := MaxScore
	for _, s := range severities {
		score -= Penalty(s)
		if score <= MinScore {
			return MinScore
		}
	}
	return score
}
