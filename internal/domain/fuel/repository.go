// internal/domain/fuel/repository.go
package fuel

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines operations for Delivery, escalation audit, and
// MonthlyReconciliation records.
type Repository interface {
	// Delivery methods
	CreateDelivery(ctx context.Context, d *Delivery) error
	GetDeliveryByID(ctx context.Context, id uuid.UUID) (*Delivery, error)
	UpdateDelivery(ctx context.Context, d *Delivery) error
	// ListDeliveriesForMonth returns every delivery dated within the month
	// containing the given day, across all branch sites.
	ListDeliveriesForMonth(ctx context.Context, month time.Time) ([]*Delivery, error)
	ListDeliveriesByEscalation(ctx context.Context, status EscalationStatus) ([]*Delivery, error)

	// Escalation audit trail: append-only, never updated or deleted.
	AppendAudit(ctx context.Context, entry *AuditEntry) error
	ListAudit(ctx context.Context, deliveryID uuid.UUID) ([]*AuditEntry, error)

	// MonthlyReconciliation methods
	CreateReconciliation(ctx context.Context, r *MonthlyReconciliation) error
	GetReconciliationByID(ctx context.Context, id uuid.UUID) (*MonthlyReconciliation, error)
	GetReconciliationByMonthAndSite(ctx context.Context, month time.Time, branchSite string) (*MonthlyReconciliation, error)
	UpdateReconciliation(ctx context.Context, r *MonthlyReconciliation) error
	ListReconciliationsByStatus(ctx context.Context, status ReconciliationStatus) ([]*MonthlyReconciliation, error)
}
