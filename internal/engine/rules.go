package engine

import (
	"fmt"
	"strings"
	"time"
)

// Rules holds the suppression windows and the restricted item labels.
type Rules struct {
	FocusWindow         time.Duration
	AbsenceWindow       time.Duration
	MultipleFacesWindow time.Duration
	ItemWindow          time.Duration
	Restricted          []string
}

// DefaultRestricted is the restricted item set applied when none is configured.
var DefaultRestricted = []string{"phone", "book", "laptop", "tablet"}

// DefaultRules returns the standard suppression policy.
func DefaultRules() Rules {
	return Rules{
		FocusWindow:         10 * time.Second,
		AbsenceWindow:       15 * time.Second,
		MultipleFacesWindow: 10 * time.Second,
		ItemWindow:          30 * time.Second,
		Restricted:          append([]string(nil), DefaultRestricted...),
	}
}

// Window returns the suppression window for kind.
func (r Rules) Window(kind Kind) time.Duration {
	switch kind {
	case FocusLost:
		return r.FocusWindow
	case CandidateAbsent:
		return r.AbsenceWindow
	case MultipleFaces:
		return r.MultipleFacesWindow
	case UnauthorizedItem:
		return r.ItemWindow
	}
	return 0
}

// WithDefaults fills every zero window and an empty restricted set from
// DefaultRules, leaving configured fields untouched.
func (r Rules) WithDefaults() Rules {
	d := DefaultRules()
	if r.FocusWindow == 0 {
		r.FocusWindow = d.FocusWindow
	}
	if r.AbsenceWindow == 0 {
		r.AbsenceWindow = d.AbsenceWindow
	}
	if r.MultipleFacesWindow == 0 {
		r.MultipleFacesWindow = d.MultipleFacesWindow
	}
	if r.ItemWindow == 0 {
		r.ItemWindow = d.ItemWindow
	}
	if len(r.Restricted) == 0 {
		r.Restricted = d.Restricted
	}
	return r
}

// Validate checks that every window is positive and the restricted set is usable.
func (r Rules) Validate() error {
	for _, k := range Kinds {
		if r.Window(k) <= 0 {
			return fmt.Errorf("%w: %s window must be positive", ErrInvalidInput, k)
		}
	}
	if len(r.Restricted) == 0 {
		return fmt.Errorf("%w: restricted labels required", ErrInvalidInput)
	}
	for _, label := range r.Restricted {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("%w: restricted label must not be blank", ErrInvalidInput)
		}
	}
	return nil
}

// Match maps a detector label onto the first restricted label it contains,
// ignoring case. The returned label is lower-cased.
func (r Rules) Match(detected string) (string, bool) {
	d := strings.ToLower(strings.TrimSpace(detected))
	if d == "" {
		return "", false
	}
	for _, restricted := range r.Restricted {
		label := strings.ToLower(strings.TrimSpace(restricted))
		if label != "" && strings.Contains(d, label) {
			return label, true
		}
	}
	return "", false
}
