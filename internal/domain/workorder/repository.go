package workorder

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the operations for persisting and retrieving WorkOrder records.
type Repository interface {
	Create(ctx context.Context, wo *WorkOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*WorkOrder, error)
	Update(ctx context.Context, wo *WorkOrder) error
	// ListActive returns work orders in a non-terminal status, for the
	// daily compliance sweep.
	ListActive(ctx context.Context) ([]*WorkOrder, error)
	// ListCreatedSince returns all work orders created at or after the
	// cutoff, for vendor scoring over a time window.
	ListCreatedSince(ctx context.Context, cutoff time.Time) ([]*WorkOrder, error)
}
