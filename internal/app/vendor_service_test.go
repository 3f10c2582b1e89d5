package app

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facility_compliance_bot/internal/domain/workorder"
)

func TestScoreboard(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	acmeID, boltID := uuid.New(), uuid.New()

	order := func(vendorID uuid.UUID, name string, status workorder.Status, ageDays int) *workorder.WorkOrder {
		return &workorder.WorkOrder{
			ID:         uuid.New(),
			VendorID:   vendorID,
			VendorName: name,
			Status:     status,
			CreatedAt:  now.AddDate(0, 0, -ageDays),
		}
	}

	woRepo := &fakeWorkOrderRepo{orders: []*workorder.WorkOrder{
		order(acmeID, "Acme", workorder.StatusCompleted, 10),
		order(acmeID, "Acme", workorder.StatusOpen, 20),
		order(boltID, "Bolt", workorder.StatusCompleted, 5),
		order(boltID, "Bolt", workorder.StatusCompleted, 15),
		// Outside the window; must not count.
		order(acmeID, "Acme", workorder.StatusRejected, 120),
	}}

	svc := NewVendorService(woRepo, testLogger())
	ranked, err := svc.Scoreboard(context.Background(), 90*24*time.Hour, now)
	require.NoError(t, err)

	require.Len(t, ranked, 2)
	assert.Equal(t, "Bolt", ranked[0].VendorName) // 100% beats 50%
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 100, ranked[0].CompletionRate)
	assert.Equal(t, "Acme", ranked[1].VendorName)
	assert.Equal(t, 50, ranked[1].CompletionRate)
	assert.Equal(t, 2, ranked[1].TotalWorkOrders, "the rejected order outside the window is excluded")
}

func TestFormatScoreboard(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	vid := uuid.New()
	woRepo := &fakeWorkOrderRepo{orders: []*workorder.WorkOrder{
		{ID: uuid.New(), VendorID: vid, VendorName: "Acme", Status: workorder.StatusCompleted, CreatedAt: now},
	}}
	svc := NewVendorService(woRepo, testLogger())
	ranked, err := svc.Scoreboard(context.Background(), 90*24*time.Hour, now)
	require.NoError(t, err)

	text := FormatScoreboard(ranked, 90)
	assert.Contains(t, text, "1. Acme — 100%")
	assert.Contains(t, text, "Top performer: Acme")
}

func TestFormatScoreboardNoTopPerformer(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	vid := uuid.New()
	woRepo := &fakeWorkOrderRepo{orders: []*workorder.WorkOrder{
		{ID: uuid.New(), VendorID: vid, VendorName: "Acme", Status: workorder.StatusOpen, CreatedAt: now},
	}}
	svc := NewVendorService(woRepo, testLogger())
	ranked, err := svc.Scoreboard(context.Background(), 90*24*time.Hour, now)
	require.NoError(t, err)

	assert.Contains(t, FormatScoreboard(ranked, 90), "Top performer: none")
}

func TestFormatScoreboardEmpty(t *testing.T) {
	assert.Contains(t, FormatScoreboard(nil, 30), "No vendor work orders")
}
