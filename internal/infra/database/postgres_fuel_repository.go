// internal/infra/database/postgres_fuel_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"facility_compliance_bot/internal/domain/fuel"
)

// Custom errors specific to the fuel repository
var ErrDeliveryNotFound = fmt.Errorf("fuel delivery not found")
var ErrReconciliationNotFound = fmt.Errorf("monthly reconciliation not found")
var ErrDuplicateReconciliation = fmt.Errorf("duplicate monthly reconciliation (month, branch_site)")

type PostgresFuelRepository struct {
	db *sql.DB
}

func NewPostgresFuelRepository(db *sql.DB) *PostgresFuelRepository {
	return &PostgresFuelRepository{db: db}
}

// --- Delivery Methods ---

func (r *PostgresFuelRepository) CreateDelivery(ctx context.Context, d *fuel.Delivery) error {
	query := `INSERT INTO fuel_deliveries (id, vendor_name, branch_site, delivery_date, approved_quantity, delivered_quantity, discrepancy_status, escalation_status)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		d.ID, d.VendorName, d.BranchSite, d.DeliveryDate, d.ApprovedQuantity, d.DeliveredQuantity, d.DiscrepancyStatus, d.EscalationStatus,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating fuel delivery: %w", err)
	}
	return nil
}

func (r *PostgresFuelRepository) GetDeliveryByID(ctx context.Context, id uuid.UUID) (*fuel.Delivery, error) {
	query := `SELECT id, vendor_name, branch_site, delivery_date, approved_quantity, delivered_quantity, discrepancy_status, escalation_status, created_at, updated_at
               FROM fuel_deliveries WHERE id = $1`
	d := &fuel.Delivery{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.VendorName, &d.BranchSite, &d.DeliveryDate, &d.ApprovedQuantity, &d.DeliveredQuantity, &d.DiscrepancyStatus, &d.EscalationStatus, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDeliveryNotFound
		}
		return nil, fmt.Errorf("error getting fuel delivery by ID: %w", err)
	}
	return d, nil
}

func (r *PostgresFuelRepository) UpdateDelivery(ctx context.Context, d *fuel.Delivery) error {
	query := `UPDATE fuel_deliveries
               SET approved_quantity = $2, delivered_quantity = $3, discrepancy_status = $4, escalation_status = $5, updated_at = NOW()
               WHERE id = $1
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, d.ID, d.ApprovedQuantity, d.DeliveredQuantity, d.DiscrepancyStatus, d.EscalationStatus).Scan(&d.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrDeliveryNotFound
		}
		return fmt.Errorf("error updating fuel delivery: %w", err)
	}
	return nil
}

func (r *PostgresFuelRepository) ListDeliveriesForMonth(ctx context.Context, month time.Time) ([]*fuel.Delivery, error) {
	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)
	query := `SELECT id, vendor_name, branch_site, delivery_date, approved_quantity, delivered_quantity, discrepancy_status, escalation_status, created_at, updated_at
               FROM fuel_deliveries WHERE delivery_date >= $1 AND delivery_date < $2 ORDER BY delivery_date`
	return r.listDeliveries(ctx, query, monthStart, nextMonth)
}

func (r *PostgresFuelRepository) ListDeliveriesByEscalation(ctx context.Context, status fuel.EscalationStatus) ([]*fuel.Delivery, error) {
	query := `SELECT id, vendor_name, branch_site, delivery_date, approved_quantity, delivered_quantity, discrepancy_status, escalation_status, created_at, updated_at
               FROM fuel_deliveries WHERE escalation_status = $1 ORDER BY delivery_date`
	return r.listDeliveries(ctx, query, status)
}

func (r *PostgresFuelRepository) listDeliveries(ctx context.Context, query string, args ...interface{}) ([]*fuel.Delivery, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing fuel deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*fuel.Delivery
	for rows.Next() {
		d := &fuel.Delivery{}
		err := rows.Scan(&d.ID, &d.VendorName, &d.BranchSite, &d.DeliveryDate, &d.ApprovedQuantity, &d.DeliveredQuantity, &d.DiscrepancyStatus, &d.EscalationStatus, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning fuel delivery row: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fuel delivery rows: %w", err)
	}
	return deliveries, nil
}

// --- Escalation Audit Methods ---

// AppendAudit inserts one audit entry. There is deliberately no update or
// delete counterpart: the escalation trail is append-only.
func (r *PostgresFuelRepository) AppendAudit(ctx context.Context, entry *fuel.AuditEntry) error {
	query := `INSERT INTO escalation_audit (delivery_id, status, actor, notes, recorded_at)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query, entry.DeliveryID, entry.Status, entry.Actor, entry.Notes, entry.RecordedAt).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("error appending escalation audit entry: %w", err)
	}
	return nil
}

func (r *PostgresFuelRepository) ListAudit(ctx context.Context, deliveryID uuid.UUID) ([]*fuel.AuditEntry, error) {
	query := `SELECT id, delivery_id, status, actor, notes, recorded_at
               FROM escalation_audit WHERE delivery_id = $1 ORDER BY recorded_at, id`
	rows, err := r.db.QueryContext(ctx, query, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("error listing escalation audit: %w", err)
	}
	defer rows.Close()

	var entries []*fuel.AuditEntry
	for rows.Next() {
		e := &fuel.AuditEntry{}
		if err := rows.Scan(&e.ID, &e.DeliveryID, &e.Status, &e.Actor, &e.Notes, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("error scanning escalation audit row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating escalation audit rows: %w", err)
	}
	return entries, nil
}

// --- MonthlyReconciliation Methods ---

func (r *PostgresFuelRepository) CreateReconciliation(ctx context.Context, rec *fuel.MonthlyReconciliation) error {
	query := `INSERT INTO monthly_reconciliations (id, month, branch_site, total_approved, total_delivered, omc_statement, status, verified_by, date_verified, notes)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
               RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		rec.ID, rec.Month, rec.BranchSite, rec.TotalApproved, rec.TotalDelivered, rec.OMCStatement, rec.Status,
		nullableString(rec.VerifiedBy), nullableTime(rec.DateVerified), rec.Notes,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "reconciliation_month_site_unique") {
			return ErrDuplicateReconciliation
		}
		return fmt.Errorf("error creating monthly reconciliation: %w", err)
	}
	return nil
}

func (r *PostgresFuelRepository) GetReconciliationByID(ctx context.Context, id uuid.UUID) (*fuel.MonthlyReconciliation, error) {
	query := reconciliationSelect + ` WHERE id = $1`
	rec, err := scanReconciliation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReconciliationNotFound
		}
		return nil, fmt.Errorf("error getting reconciliation by ID: %w", err)
	}
	return rec, nil
}

func (r *PostgresFuelRepository) GetReconciliationByMonthAndSite(ctx context.Context, month time.Time, branchSite string) (*fuel.MonthlyReconciliation, error) {
	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	query := reconciliationSelect + ` WHERE month = $1 AND branch_site = $2`
	rec, err := scanReconciliation(r.db.QueryRowContext(ctx, query, monthStart, branchSite))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReconciliationNotFound
		}
		return nil, fmt.Errorf("error getting reconciliation by month and site: %w", err)
	}
	return rec, nil
}

func (r *PostgresFuelRepository) UpdateReconciliation(ctx context.Context, rec *fuel.MonthlyReconciliation) error {
	query := `UPDATE monthly_reconciliations
               SET total_approved = $2, total_delivered = $3, omc_statement = $4, status = $5, verified_by = $6, date_verified = $7, notes = $8, updated_at = NOW()
               WHERE id = $1
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		rec.ID, rec.TotalApproved, rec.TotalDelivered, rec.OMCStatement, rec.Status,
		nullableString(rec.VerifiedBy), nullableTime(rec.DateVerified), rec.Notes,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrReconciliationNotFound
		}
		return fmt.Errorf("error updating monthly reconciliation: %w", err)
	}
	return nil
}

func (r *PostgresFuelRepository) ListReconciliationsByStatus(ctx context.Context, status fuel.ReconciliationStatus) ([]*fuel.MonthlyReconciliation, error) {
	query := reconciliationSelect + ` WHERE status = $1 ORDER BY month, branch_site`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("error listing reconciliations: %w", err)
	}
	defer rows.Close()

	var recs []*fuel.MonthlyReconciliation
	for rows.Next() {
		rec, err := scanReconciliation(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning reconciliation row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reconciliation rows: %w", err)
	}
	return recs, nil
}

const reconciliationSelect = `SELECT id, month, branch_site, total_approved, total_delivered, omc_statement, status, verified_by, date_verified, notes, created_at, updated_at
               FROM monthly_reconciliations`

func scanReconciliation(row rowScanner) (*fuel.MonthlyReconciliation, error) {
	rec := &fuel.MonthlyReconciliation{}
	var verifiedBy sql.NullString
	var dateVerified sql.NullTime
	err := row.Scan(&rec.ID, &rec.Month, &rec.BranchSite, &rec.TotalApproved, &rec.TotalDelivered, &rec.OMCStatement, &rec.Status, &verifiedBy, &dateVerified, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if verifiedBy.Valid {
		rec.VerifiedBy = verifiedBy.String
	}
	if dateVerified.Valid {
		t := dateVerified.Time
		rec.DateVerified = &t
	}
	return rec, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
