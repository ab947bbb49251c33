package sessions

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/pkg/integrity"
	"github.com/JaimeStill/proctor/pkg/query"
	"github.com/JaimeStill/proctor/pkg/repository"
)

var sessionProjection = query.
	NewProjectionMap("public", "sessions", "s").
	Project("id", "ID").
	Project("candidate_name", "CandidateName").
	Project("start_time", "StartTime").
	Project("end_time", "EndTime").
	Project("integrity_score", "IntegrityScore")

var eventProjection = query.
	NewProjectionMap("public", "events", "e").
	Project("id", "ID").
	Project("session_id", "SessionID").
	Project("kind", "Kind").
	Project("severity", "Severity").
	Project("label", "Label").
	Project("description", "Description").
	Project("occurred_at", "Timestamp").
	Project("metadata", "Metadata")

var defaultSessionSort = query.SortField{Field: "StartTime", Descending: true}

var eventOrder = []query.SortField{{Field: "Timestamp"}, {Field: "ID"}}

// Filters contains optional filtering criteria for session queries.
// Nil fields are ignored. CandidateName uses case-insensitive contains matching;
// Active selects sessions without (true) or with (false) an end time.
type Filters struct {
	CandidateName *string `json:"candidate_name,omitempty"`
	Active        *bool   `json:"active,omitempty"`
	MinScore      *int    `json:"min_score,omitempty"`
	MaxScore      *int    `json:"max_score,omitempty"`
}

// Validate rejects score bounds outside 0..100 and inverted ranges.
func (f Filters) Validate() error {
	for _, s := range []*int{f.MinScore, f.MaxScore} {
		if s != nil && (*s < integrity.MinScore || *s > integrity.MaxScore) {
			return fmt.Errorf("%w: score bound %d outside %d..%d", ErrInvalidFilter, *s, integrity.MinScore, integrity.MaxScore)
		}
	}
	if f.MinScore != nil && f.MaxScore != nil && *f.MinScore > *f.MaxScore {
		return fmt.Errorf("%w: min_score exceeds max_score", ErrInvalidFilter)
	}
	return nil
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("CandidateName", f.CandidateName).
		WhereNull("EndTime", f.Active).
		WhereAtLeast("IntegrityScore", f.MinScore).
		WhereAtMost("IntegrityScore", f.MaxScore)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unparseable numeric or boolean values are reported as ErrInvalidFilter.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if name := values.Get("candidate_name"); name != "" {
		f.CandidateName = &name
	}

	if v := values.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("%w: active must be a boolean", ErrInvalidFilter)
		}
		f.Active = &active
	}

	var err error
	if f.MinScore, err = parseScore(values, "min_score"); err != nil {
		return f, err
	}
	if f.MaxScore, err = parseScore(values, "max_score"); err != nil {
		return f, err
	}

	return f, f.Validate()
}

func parseScore(values url.Values, param string) (*int, error) {
	v := values.Get(param)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", ErrInvalidFilter, param)
	}
	return &n, nil
}

// EventFilters narrows a session's event listing by kind and severity.
type EventFilters struct {
	Kind     *engine.Kind        `json:"kind,omitempty"`
	Severity *integrity.Severity `json:"severity,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f EventFilters) Apply(b *query.Builder) *query.Builder {
	var kind, severity *string
	if f.Kind != nil {
		k := string(*f.Kind)
		kind = &k
	}
	if f.Severity != nil {
		s := string(*f.Severity)
		severity = &s
	}
	return b.
		WhereEquals("Kind", kind).
		WhereEquals("Severity", severity)
}

// EventFiltersFromQuery parses the kind and severity query parameters.
func EventFiltersFromQuery(values url.Values) (EventFilters, error) {
	var f EventFilters

	if v := values.Get("kind"); v != "" {
		k, err := engine.ParseKind(v)
		if err != nil {
			return f, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		f.Kind = &k
	}

	if v := values.Get("severity"); v != "" {
		s, err := integrity.ParseSeverity(v)
		if err != nil {
			return f, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		f.Severity = &s
	}

	return f, nil
}

func scanSession(s repository.Scanner) (engine.Session, error) {
	var rec engine.Session
	err := s.Scan(
		&rec.ID,
		&rec.CandidateName,
		&rec.StartTime,
		&rec.EndTime,
		&rec.IntegrityScore,
	)
	return rec, err
}

func scanEvent(s repository.Scanner) (engine.Event, error) {
	var (
		e        engine.Event
		metadata []byte
	)
	err := s.Scan(
		&e.ID,
		&e.SessionID,
		&e.Kind,
		&e.Severity,
		&e.Label,
		&e.Description,
		&e.Timestamp,
		&metadata,
	)
	if err != nil {
		return e, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return e, fmt.Errorf("decode event metadata: %w", err)
		}
	}
	return e, nil
}
