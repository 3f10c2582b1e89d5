// internal/infra/database/postgres_workorder_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"facility_compliance_bot/internal/domain/workorder"
)

// Custom errors
var ErrWorkOrderNotFound = fmt.Errorf("work order not found")

// Terminal statuses are excluded from ListActive. Kept in SQL as a constant
// so the query and workorder.Status.IsTerminal stay in step.
const terminalStatuses = `('COMPLETED', 'CLOSED', 'CANCELLED', 'REJECTED')`

type PostgresWorkOrderRepository struct {
	db *sql.DB
}

func NewPostgresWorkOrderRepository(db *sql.DB) *PostgresWorkOrderRepository {
	return &PostgresWorkOrderRepository{db: db}
}

func (r *PostgresWorkOrderRepository) Create(ctx context.Context, wo *workorder.WorkOrder) error {
	query := `INSERT INTO work_orders (id, vendor_id, vendor_name, title, branch_site, priority, status, due_date)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		wo.ID, wo.VendorID, wo.VendorName, wo.Title, wo.BranchSite, wo.Priority, wo.Status, nullableTime(wo.DueDate),
	).Scan(&wo.CreatedAt, &wo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating work order: %w", err)
	}
	return nil
}

func (r *PostgresWorkOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	query := `SELECT id, vendor_id, vendor_name, title, branch_site, priority, status, due_date, created_at, updated_at
               FROM work_orders WHERE id = $1`
	wo, err := scanWorkOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrWorkOrderNotFound
		}
		return nil, fmt.Errorf("error getting work order by ID: %w", err)
	}
	return wo, nil
}

func (r *PostgresWorkOrderRepository) Update(ctx context.Context, wo *workorder.WorkOrder) error {
	query := `UPDATE work_orders
               SET vendor_id = $2, vendor_name = $3, title = $4, branch_site = $5, priority = $6, status = $7, due_date = $8, updated_at = NOW()
               WHERE id = $1
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		wo.ID, wo.VendorID, wo.VendorName, wo.Title, wo.BranchSite, wo.Priority, wo.Status, nullableTime(wo.DueDate),
	).Scan(&wo.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrWorkOrderNotFound
		}
		return fmt.Errorf("error updating work order: %w", err)
	}
	return nil
}

func (r *PostgresWorkOrderRepository) ListActive(ctx context.Context) ([]*workorder.WorkOrder, error) {
	query := `SELECT id, vendor_id, vendor_name, title, branch_site, priority, status, due_date, created_at, updated_at
               FROM work_orders WHERE status NOT IN ` + terminalStatuses + ` ORDER BY due_date NULLS LAST, created_at`
	return r.list(ctx, query)
}

func (r *PostgresWorkOrderRepository) ListCreatedSince(ctx context.Context, cutoff time.Time) ([]*workorder.WorkOrder, error) {
	query := `SELECT id, vendor_id, vendor_name, title, branch_site, priority, status, due_date, created_at, updated_at
               FROM work_orders WHERE created_at >= $1 ORDER BY created_at`
	return r.list(ctx, query, cutoff)
}

func (r *PostgresWorkOrderRepository) list(ctx context.Context, query string, args ...interface{}) ([]*workorder.WorkOrder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing work orders: %w", err)
	}
	defer rows.Close()

	var orders []*workorder.WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning work order row: %w", err)
		}
		orders = append(orders, wo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating work order rows: %w", err)
	}
	return orders, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkOrder(row rowScanner) (*workorder.WorkOrder, error) {
	wo := &workorder.WorkOrder{}
	var due sql.NullTime
	err := row.Scan(&wo.ID, &wo.VendorID, &wo.VendorName, &wo.Title, &wo.BranchSite, &wo.Priority, &wo.Status, &due, &wo.CreatedAt, &wo.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time
		wo.DueDate = &d
	}
	return wo, nil
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
