// internal/domain/fuel/reconciliation.go
//
// The monthly reconciliation state machine:
// PENDING -> BALANCED           (reconcile, variance exactly zero)
// PENDING -> DISCREPANCY        (flag issue, variance nonzero)
// DISCREPANCY -> RESOLVED       (reconcile, after the variance is corrected)
// BALANCED and RESOLVED are terminal for a record instance; history is
// never overwritten, a verification is only ever appended.
package fuel

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconciliationStatus is the lifecycle state of a monthly reconciliation.
type ReconciliationStatus string

const (
	ReconciliationPending     ReconciliationStatus = "PENDING"
	ReconciliationBalanced    ReconciliationStatus = "BALANCED"
	ReconciliationDiscrepancy ReconciliationStatus = "DISCREPANCY"
	ReconciliationResolved    ReconciliationStatus = "RESOLVED"
)

// MonthlyReconciliation compares a month's internally tracked fuel totals for
// one branch site against the OMC's statement. The variance is always
// recomputed from the current quantities via Variance(); it is never stored
// or trusted as a cached value.
type MonthlyReconciliation struct {
	ID             uuid.UUID
	Month          time.Time // first day of the month
	BranchSite     string
	TotalApproved  decimal.Decimal
	TotalDelivered decimal.Decimal
	OMCStatement   decimal.Decimal
	Status         ReconciliationStatus
	VerifiedBy     string     // empty until verified
	DateVerified   *time.Time // nil until verified
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewMonthlyReconciliation opens a pending reconciliation for a site and
// month. Negative quantities are rejected.
func NewMonthlyReconciliation(id uuid.UUID, month time.Time, branchSite string, totalApproved, totalDelivered, omcStatement decimal.Decimal) (MonthlyReconciliation, error) {
	for _, q := range []decimal.Decimal{totalApproved, totalDelivered, omcStatement} {
		if q.IsNegative() {
			return MonthlyReconciliation{}, fmt.Errorf("reconciliation quantity %s is negative: %w", q, ErrInvalidInput)
		}
	}
	return MonthlyReconciliation{
		ID:             id,
		Month:          month,
		BranchSite:     branchSite,
		TotalApproved:  totalApproved,
		TotalDelivered: totalDelivered,
		OMCStatement:   omcStatement,
		Status:         ReconciliationPending,
	}, nil
}

// Variance is the OMC-reported quantity minus the internally tracked
// delivered total. The statement is reconciled against delivered litres;
// approved totals are carried for audit but do not enter the variance.
func (r *MonthlyReconciliation) Variance() decimal.Decimal {
	return r.OMCStatement.Sub(r.TotalDelivered)
}

// IsTerminal reports whether the record can no longer change state.
func (r *MonthlyReconciliation) IsTerminal() bool {
	return r.Status == ReconciliationBalanced || r.Status == ReconciliationResolved
}

// SetStatement replaces the OMC statement quantity on a non-terminal record,
// for when a corrected statement arrives. The variance shifts with it.
func SetStatement(r MonthlyReconciliation, statement decimal.Decimal, now time.Time) (MonthlyReconciliation, error) {
	if statement.IsNegative() {
		return r, fmt.Errorf("statement quantity %s is negative: %w", statement, ErrInvalidInput)
	}
	if r.IsTerminal() {
		return r, fmt.Errorf("update statement on %s record %s: %w", r.Status, r.ID, ErrInvalidTransition)
	}
	r.OMCStatement = statement
	r.UpdatedAt = now
	return r, nil
}

// Reconcile closes out a reconciliation whose variance is exactly zero,
// stamping the verifier and verification time. From PENDING it lands on
// BALANCED; from DISCREPANCY, once the variance has been corrected to zero,
// it lands on RESOLVED. Reconciling with a nonzero variance is an error, not
// an override.
func Reconcile(r MonthlyReconciliation, verifier, notes string, now time.Time) (MonthlyReconciliation, error) {
	if r.IsTerminal() {
		return r, fmt.Errorf("reconcile %s record %s: %w", r.Status, r.ID, ErrInvalidTransition)
	}
	if r.Variance().Sign() != 0 {
		return r, fmt.Errorf("reconcile record %s with variance %s: %w", r.ID, r.Variance(), ErrInvalidTransition)
	}
	if strings.TrimSpace(verifier) == "" {
		return r, fmt.Errorf("verifier: %w", ErrMissingRequiredField)
	}

	switch r.Status {
	case ReconciliationPending:
		r.Status = ReconciliationBalanced
	case ReconciliationDiscrepancy:
		r.Status = ReconciliationResolved
	}
	r.VerifiedBy = verifier
	verifiedAt := now
	r.DateVerified = &verifiedAt
	if strings.TrimSpace(notes) != "" {
		r.Notes = appendNote(r.Notes, notes)
	}
	r.UpdatedAt = now
	return r, nil
}

// FlagIssue moves a PENDING reconciliation with a nonzero variance to
// DISCREPANCY, recording the issue and its proposed resolution in the notes.
func FlagIssue(r MonthlyReconciliation, issue, proposedResolution string, now time.Time) (MonthlyReconciliation, error) {
	if r.Status != ReconciliationPending {
		return r, fmt.Errorf("flag issue on %s record %s: %w", r.Status, r.ID, ErrInvalidTransition)
	}
	if r.Variance().Sign() == 0 {
		return r, fmt.Errorf("flag issue on record %s with zero variance: %w", r.ID, ErrInvalidTransition)
	}
	if strings.TrimSpace(issue) == "" {
		return r, fmt.Errorf("issue description: %w", ErrMissingRequiredField)
	}
	if strings.TrimSpace(proposedResolution) == "" {
		return r, fmt.Errorf("proposed resolution: %w", ErrMissingRequiredField)
	}

	r.Status = ReconciliationDiscrepancy
	r.Notes = appendNote(r.Notes, fmt.Sprintf("Issue: %s | Proposed resolution: %s", issue, proposedResolution))
	r.UpdatedAt = now
	return r, nil
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
