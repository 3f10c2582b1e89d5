// internal/domain/sla/policy.go
package sla

import "fmt"

// Priority is the work-order priority level. The catalog is fixed: every
// priority maps 1:1 to an SLA policy and no new levels are created at runtime.
type Priority string

const (
	PriorityEmergency Priority = "EMERGENCY"
	PriorityCritical  Priority = "CRITICAL"
	PriorityStandard  Priority = "STANDARD"
	PriorityMinor     Priority = "MINOR"
)

// ErrUnknownPriority is returned by LookupPolicy for any priority outside the
// fixed catalog. Callers must not fall back to a default policy.
var ErrUnknownPriority = fmt.Errorf("unknown priority level")

// Policy binds a priority level to its response and resolution targets.
// Policies are immutable reference data; they are only ever read.
type Policy struct {
	Priority         Priority
	Definition       string
	ResponseTarget   string
	ResolutionTarget string
}

var policyCatalog = map[Priority]Policy{
	PriorityEmergency: {
		Priority:         PriorityEmergency,
		Definition:       "Immediate threat to life, safety, or critical facility operations.",
		ResponseTarget:   "Immediate",
		ResolutionTarget: "24 Hours",
	},
	PriorityCritical: {
		Priority:         PriorityCritical,
		Definition:       "Major service disruption affecting a whole site or core system.",
		ResponseTarget:   "1 Day",
		ResolutionTarget: "48-96 Hours",
	},
	PriorityStandard: {
		Priority:         PriorityStandard,
		Definition:       "Routine repair or maintenance with limited operational impact.",
		ResponseTarget:   "1 Day",
		ResolutionTarget: "167 Hours",
	},
	PriorityMinor: {
		Priority:         PriorityMinor,
		Definition:       "Cosmetic or low-impact issue with no operational urgency.",
		ResponseTarget:   "1 Day",
		ResolutionTarget: "14-30 Days",
	},
}

// Priorities returns the fixed catalog order, most urgent first.
func Priorities() []Priority {
	return []Priority{PriorityEmergency, PriorityCritical, PriorityStandard, PriorityMinor}
}

// IsValid reports whether p is one of the four catalog priorities.
func (p Priority) IsValid() bool {
	_, ok := policyCatalog[p]
	return ok
}

// LookupPolicy returns the SLA policy for the given priority level.
// Any priority outside the fixed catalog is a caller error.
func LookupPolicy(p Priority) (Policy, error) {
	policy, ok := policyCatalog[p]
	if !ok {
		return Policy{}, fmt.Errorf("lookup policy for %q: %w", p, ErrUnknownPriority)
	}
	return policy, nil
}
