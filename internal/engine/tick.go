package engine

import "fmt"

// FocusState is the gaze state reported by the signal source.
type FocusState string

const (
	Focused FocusState = "focused"
	Lost    FocusState = "lost"
	Unknown FocusState = "unknown"
)

// ParseFocusState converts a reported value into a FocusState.
// An empty value is treated as Unknown.
func ParseFocusState(v string) (FocusState, error) {
	switch FocusState(v) {
	case Focused, Lost, Unknown:
		return FocusState(v), nil
	case "":
		return Unknown, nil
	}
	return "", fmt.Errorf("%w: unknown focus state %q", ErrInvalidInput, v)
}

// Tick is one perception snapshot delivered by the signal source.
// Confidence and FocusLostSeconds are informational and only flow into event metadata.
type Tick struct {
	FaceCount        int                `json:"face_count"`
	Focus            FocusState         `json:"focus_state"`
	Labels           []string           `json:"detected_objects"`
	Confidence       map[string]float64 `json:"confidence,omitempty"`
	FocusLostSeconds int                `json:"focus_lost_seconds,omitempty"`
}

// Validate rejects snapshots that cannot describe a real observation.
func (t Tick) Validate() error {
	if t.FaceCount < 0 {
		return fmt.Errorf("%w: face count must be non-negative, got %d", ErrInvalidInput, t.FaceCount)
	}
	if t.FocusLostSeconds < 0 {
		return fmt.Errorf("%w: focus lost duration must be non-negative", ErrInvalidInput)
	}
	if _, err := ParseFocusState(string(t.Focus)); err != nil {
		return err
	}
	return nil
}

func (t Tick) normalize() Tick {
	if t.Focus == "" {
		t.Focus = Unknown
	}
	return t
}
