// internal/domain/workorder/workorder.go
package workorder

import (
	"time"

	"github.com/google/uuid"

	"facility_compliance_bot/internal/domain/sla"
)

// Status is the lifecycle state of a work order. Work orders are created and
// advanced by collaborator systems; this service only reads them.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusClosed     Status = "CLOSED"
	StatusCancelled  Status = "CANCELLED"
	StatusRejected   Status = "REJECTED"
)

// IsTerminal reports whether the work order is no longer actionable.
// Terminal work orders are compliance-exempt: a closed, cancelled, or
// rejected order is never counted as breached.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusClosed, StatusCancelled, StatusRejected:
		return true
	default:
		return false
	}
}

// IsCompleted reports whether the work order counts as completed work for
// vendor scoring. Cancelled and rejected orders do not.
func (s Status) IsCompleted() bool {
	return s == StatusCompleted || s == StatusClosed
}

// WorkOrder represents a maintenance work order assigned to a vendor.
// VendorName is denormalized onto the record so scoring and alert text do
// not need a vendor lookup.
type WorkOrder struct {
	ID         uuid.UUID
	VendorID   uuid.UUID
	VendorName string
	Title      string
	BranchSite string
	Priority   sla.Priority
	Status     Status
	DueDate    *time.Time // optional; no due date means compliance-exempt
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Compliance returns the work order's SLA standing at the supplied time.
// The result is derived, never stored.
func (w *WorkOrder) Compliance(now time.Time) sla.Compliance {
	return sla.Classify(w.DueDate, w.Status.IsTerminal(), now)
}
