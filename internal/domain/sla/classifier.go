// internal/domain/sla/classifier.go
package sla

import (
	"math"
	"time"
)

// Compliance is the derived SLA standing of a tracked item. It is never
// stored; it is recomputed from the due date every time "now" is evaluated.
type Compliance string

const (
	ComplianceOnTrack    Compliance = "ON_TRACK"
	ComplianceNearBreach Compliance = "NEAR_BREACH"
	ComplianceBreached   Compliance = "BREACHED"
	ComplianceExempt     Compliance = "EXEMPT"
)

// Classify determines the SLA standing of a tracked item against the supplied
// clock. "now" is always passed in by the caller so classification stays
// deterministic under test.
//
// A closed item, or one with no due date, is compliance-exempt and never
// counts toward breach totals. Otherwise both dates are truncated to day
// granularity before comparison, so an item does not flap between states
// as the time of day changes: overdue by at least a full day is a breach,
// due today or tomorrow is a near-breach, anything later is on track.
func Classify(dueDate *time.Time, closed bool, now time.Time) Compliance {
	if closed || dueDate == nil {
		return ComplianceExempt
	}

	days := daysUntil(*dueDate, now)
	switch {
	case days < 0:
		return ComplianceBreached
	case days <= 1:
		return ComplianceNearBreach
	default:
		return ComplianceOnTrack
	}
}

// ComplianceRate computes the percentage of active (non-exempt) items that
// are not breached, rounded to the nearest integer. With no active items the
// collection is vacuously compliant and the rate is 100.
func ComplianceRate(results []Compliance) int {
	active, breached := 0, 0
	for _, c := range results {
		if c == ComplianceExempt {
			continue
		}
		active++
		if c == ComplianceBreached {
			breached++
		}
	}
	if active == 0 {
		return 100
	}
	return int(math.Round(100 * float64(active-breached) / float64(active)))
}

// daysUntil returns the whole number of calendar days from now until due,
// negative when due is in the past. Both timestamps are reduced to their
// date components first, so the result is independent of time of day and of
// the locations the two values carry.
func daysUntil(due, now time.Time) int {
	d := dateOnly(due)
	n := dateOnly(now)
	return int(d.Sub(n).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
