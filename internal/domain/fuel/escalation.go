// internal/domain/fuel/escalation.go
//
// The escalation state machine for discrepant deliveries:
// NONE -> PENDING -> RESOLVED, forward only, driven by explicit
// administrative actions. Transitions take the record by value and return
// an updated copy together with the audit entry to append, so a rejected
// action can never leave a half-mutated record behind.
package fuel

import (
	"fmt"
	"strings"
	"time"
)

// Escalate raises a discrepant delivery to PENDING. It is only valid on a
// record still at NONE whose quantities genuinely disagree: the discrepancy
// is recomputed from the raw quantities, so a stale stored status cannot let
// a matched delivery through. A non-empty reason is required and becomes the
// first audit entry.
func Escalate(d Delivery, reason, actor string, now time.Time) (Delivery, AuditEntry, error) {
	if d.EscalationStatus != EscalationNone {
		return d, AuditEntry{}, fmt.Errorf("escalate delivery %s from %s: %w", d.ID, d.EscalationStatus, ErrInvalidTransition)
	}
	if ClassifyDiscrepancy(d.ApprovedQuantity, d.DeliveredQuantity) == DiscrepancyMatched {
		return d, AuditEntry{}, fmt.Errorf("escalate delivery %s with matched quantities: %w", d.ID, ErrInvalidTransition)
	}
	if strings.TrimSpace(reason) == "" {
		return d, AuditEntry{}, fmt.Errorf("escalation reason: %w", ErrMissingRequiredField)
	}

	d.EscalationStatus = EscalationPending
	d.UpdatedAt = now
	entry := AuditEntry{
		DeliveryID: d.ID,
		Status:     EscalationPending,
		Actor:      actor,
		Notes:      reason,
		RecordedAt: now,
	}
	return d, entry, nil
}

// ResolveEscalation closes a PENDING escalation. Resolution notes are
// mandatory; resolving from NONE or RESOLVED is rejected.
func ResolveEscalation(d Delivery, notes, actor string, now time.Time) (Delivery, AuditEntry, error) {
	if d.EscalationStatus != EscalationPending {
		return d, AuditEntry{}, fmt.Errorf("resolve delivery %s from %s: %w", d.ID, d.EscalationStatus, ErrInvalidTransition)
	}
	if strings.TrimSpace(notes) == "" {
		return d, AuditEntry{}, fmt.Errorf("resolution notes: %w", ErrMissingRequiredField)
	}

	d.EscalationStatus = EscalationResolved
	d.UpdatedAt = now
	entry := AuditEntry{
		DeliveryID: d.ID,
		Status:     EscalationResolved,
		Actor:      actor,
		Notes:      notes,
		RecordedAt: now,
	}
	return d, entry, nil
}
