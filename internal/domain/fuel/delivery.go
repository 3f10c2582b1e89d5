// internal/domain/fuel/delivery.go
package fuel

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Errors shared by the fuel classifiers and state machines.
var (
	// ErrInvalidInput marks malformed or out-of-domain arguments, such as
	// negative quantities. Bad input is rejected, never defaulted.
	ErrInvalidInput = fmt.Errorf("invalid input")
	// ErrInvalidTransition marks a state-machine action attempted from a
	// state that does not permit it. The action is rejected and the record
	// is left untouched.
	ErrInvalidTransition = fmt.Errorf("invalid state transition")
	// ErrMissingRequiredField marks a transition whose required free-text
	// field (reason, notes, verifier) is empty or absent.
	ErrMissingRequiredField = fmt.Errorf("missing required field")
)

// EscalationStatus tracks whether a discrepant delivery has been raised to a
// higher authority. It starts at NONE and only ever advances forward.
type EscalationStatus string

const (
	EscalationNone     EscalationStatus = "NONE"
	EscalationPending  EscalationStatus = "PENDING"
	EscalationResolved EscalationStatus = "RESOLVED"
)

// Delivery is a recorded fuel delivery from the OMC to a branch site.
//
// DiscrepancyStatus is a denormalized cache of the classification of the raw
// quantities, kept for display ordering. It is only ever produced by
// NewDelivery, so it cannot be constructed out of step with its inputs; any
// correctness-sensitive decision recomputes from the quantities instead of
// trusting it.
type Delivery struct {
	ID                uuid.UUID
	VendorName        string // the supplying OMC
	BranchSite        string
	DeliveryDate      time.Time
	ApprovedQuantity  decimal.Decimal // litres
	DeliveredQuantity decimal.Decimal // litres
	DiscrepancyStatus DiscrepancyStatus
	EscalationStatus  EscalationStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewDelivery constructs a delivery record, deriving its discrepancy status
// from the raw quantities. Negative quantities are rejected.
func NewDelivery(id uuid.UUID, vendorName, branchSite string, deliveryDate time.Time, approved, delivered decimal.Decimal) (Delivery, error) {
	if approved.IsNegative() {
		return Delivery{}, fmt.Errorf("approved quantity %s is negative: %w", approved, ErrInvalidInput)
	}
	if delivered.IsNegative() {
		return Delivery{}, fmt.Errorf("delivered quantity %s is negative: %w", delivered, ErrInvalidInput)
	}
	return Delivery{
		ID:                id,
		VendorName:        vendorName,
		BranchSite:        branchSite,
		DeliveryDate:      deliveryDate,
		ApprovedQuantity:  approved,
		DeliveredQuantity: delivered,
		DiscrepancyStatus: ClassifyDiscrepancy(approved, delivered),
		EscalationStatus:  EscalationNone,
	}, nil
}

// QuantityDelta returns delivered minus approved litres.
func (d *Delivery) QuantityDelta() decimal.Decimal {
	return d.DeliveredQuantity.Sub(d.ApprovedQuantity)
}

// AuditEntry is one append-only line in a delivery's escalation audit trail.
// Entries are only ever added, never overwritten.
type AuditEntry struct {
	ID         int64
	DeliveryID uuid.UUID
	Status     EscalationStatus
	Actor      string
	Notes      string
	RecordedAt time.Time
}
