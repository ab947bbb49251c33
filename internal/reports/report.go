// Package reports derives integrity reports from persisted sessions and
// archives them to blob storage.
package reports

import (
	"fmt"
	"math"
	"time"

	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/pkg/integrity"
)

// Summary holds the headline figures of a report.
type Summary struct {
	DurationMinutes   int  `json:"duration_minutes"`
	TotalEvents       int  `json:"total_events"`
	FocusLost         int  `json:"focus_lost"`
	CandidateAbsent   int  `json:"candidate_absent"`
	MultipleFaces     int  `json:"multiple_faces"`
	UnauthorizedItems int  `json:"unauthorized_items"`
	IntegrityScore    int  `json:"integrity_score"`
	RecomputedScore   int  `json:"recomputed_score"`
	Verified          bool `json:"verified"`
}

// HourBucket counts events whose timestamp falls in one UTC hour of the day.
type HourBucket struct {
	Hour   string `json:"hour"`
	Events int    `json:"events"`
}

// SeverityCount counts events of one severity.
type SeverityCount struct {
	Severity integrity.Severity `json:"severity"`
	Count    int                `json:"count"`
}

// Charts holds the distributions of a report. Empty buckets are omitted.
type Charts struct {
	EventsByHour         []HourBucket    `json:"events_by_hour"`
	SeverityDistribution []SeverityCount `json:"severity_distribution"`
}

// Report is the exportable account of one session.
type Report struct {
	Session     engine.Session `json:"session"`
	Summary     Summary        `json:"summary"`
	Charts      Charts         `json:"charts"`
	Events      []engine.Event `json:"events"`
	GeneratedAt time.Time      `json:"generated_at"`
}

var severityOrder = []integrity.Severity{integrity.Critical, integrity.Major, integrity.Minor}

// Build derives a report from a session record and its events.
// The score is recomputed from the events and compared with the stored value.
func Build(session engine.Session, events []engine.Event) Report {
	if events == nil {
		events = []engine.Event{}
	}

	kinds := make(map[engine.Kind]int)
	severities := make(map[integrity.Severity]int)
	var hours [24]int

	for _, e := range events {
		kinds[e.Kind]++
		severities[e.Severity]++
		hours[e.Timestamp.UTC().Hour()]++
	}

	recomputed := engine.Score(events)

	r := Report{
		Session: session,
		Summary: Summary{
			DurationMinutes:   durationMinutes(session),
			TotalEvents:       len(events),
			FocusLost:         kinds[engine.FocusLost],
			CandidateAbsent:   kinds[engine.CandidateAbsent],
			MultipleFaces:     kinds[engine.MultipleFaces],
			UnauthorizedItems: kinds[engine.UnauthorizedItem],
			IntegrityScore:    session.IntegrityScore,
			RecomputedScore:   recomputed,
			Verified:          recomputed == session.IntegrityScore,
		},
		Charts: Charts{
			EventsByHour:         []HourBucket{},
			SeverityDistribution: []SeverityCount{},
		},
		Events: events,
	}

	for h, n := range hours {
		if n > 0 {
			r.Charts.EventsByHour = append(r.Charts.EventsByHour, HourBucket{
				Hour:   fmt.Sprintf("%02d:00", h),
				Events: n,
			})
		}
	}

	for _, s := range severityOrder {
		if n := severities[s]; n > 0 {
			r.Charts.SeverityDistribution = append(r.Charts.SeverityDistribution, SeverityCount{Severity: s, Count: n})
		}
	}

	return r
}

// durationMinutes is zero while the session is active.
func durationMinutes(s engine.Session) int {
	if s.EndTime == nil {
		return 0
	}
	return int(math.Round(s.EndTime.Sub(s.StartTime).Minutes()))
}
