package fuel

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shortDelivery(t *testing.T) Delivery {
	t.Helper()
	d, err := NewDelivery(uuid.New(), "GOIL", "Tema Depot", time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(10000), decimal.NewFromInt(9500))
	require.NoError(t, err)
	return d
}

func matchedDelivery(t *testing.T) Delivery {
	t.Helper()
	d, err := NewDelivery(uuid.New(), "GOIL", "Tema Depot", time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(10000), decimal.NewFromInt(10000))
	require.NoError(t, err)
	return d
}

func TestEscalateDiscrepantDelivery(t *testing.T) {
	d := shortDelivery(t)
	now := time.Date(2026, time.March, 6, 9, 0, 0, 0, time.UTC)

	updated, entry, err := Escalate(d, "short by 500 litres", "K. Mensah", now)
	require.NoError(t, err)

	assert.Equal(t, EscalationPending, updated.EscalationStatus)
	assert.Equal(t, now, updated.UpdatedAt)
	assert.Equal(t, d.ID, entry.DeliveryID)
	assert.Equal(t, EscalationPending, entry.Status)
	assert.Equal(t, "K. Mensah", entry.Actor)
	assert.Equal(t, "short by 500 litres", entry.Notes)

	// The input record is untouched; the transition returned a copy.
	assert.Equal(t, EscalationNone, d.EscalationStatus)
}

func TestEscalateMatchedDeliveryRejected(t *testing.T) {
	d := matchedDelivery(t)

	updated, _, err := Escalate(d, "looks off", "K. Mensah", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, d, updated, "a rejected transition must not change the record")
}

// A stale cached discrepancy status cannot authorize an escalation: the
// quantities are what decide.
func TestEscalateRecomputesDiscrepancyFromQuantities(t *testing.T) {
	d := matchedDelivery(t)
	d.DiscrepancyStatus = DiscrepancyShortSupplied // drifted cache

	_, _, err := Escalate(d, "cache says short", "K. Mensah", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEscalateTwiceRejected(t *testing.T) {
	d := shortDelivery(t)
	now := time.Now()

	pending, _, err := Escalate(d, "short by 500 litres", "K. Mensah", now)
	require.NoError(t, err)

	_, _, err = Escalate(pending, "still short", "K. Mensah", now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEscalateRequiresReason(t *testing.T) {
	d := shortDelivery(t)

	_, _, err := Escalate(d, "   ", "K. Mensah", time.Now())
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}

func TestResolveEscalation(t *testing.T) {
	d := shortDelivery(t)
	now := time.Date(2026, time.March, 8, 11, 0, 0, 0, time.UTC)

	pending, _, err := Escalate(d, "short by 500 litres", "K. Mensah", now)
	require.NoError(t, err)

	resolved, entry, err := ResolveEscalation(pending, "OMC credited 500 litres on next delivery", "A. Boateng", now)
	require.NoError(t, err)
	assert.Equal(t, EscalationResolved, resolved.EscalationStatus)
	assert.Equal(t, EscalationResolved, entry.Status)
	assert.Equal(t, "A. Boateng", entry.Actor)
}

func TestResolveFromNoneRejected(t *testing.T) {
	d := shortDelivery(t)

	_, _, err := ResolveEscalation(d, "nothing to resolve", "A. Boateng", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestResolveRequiresNotes(t *testing.T) {
	d := shortDelivery(t)
	pending, _, err := Escalate(d, "short by 500 litres", "K. Mensah", time.Now())
	require.NoError(t, err)

	_, _, err = ResolveEscalation(pending, "", "A. Boateng", time.Now())
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}

func TestResolvedEscalationIsTerminal(t *testing.T) {
	d := shortDelivery(t)
	now := time.Now()

	pending, _, err := Escalate(d, "short by 500 litres", "K. Mensah", now)
	require.NoError(t, err)
	resolved, _, err := ResolveEscalation(pending, "credited", "A. Boateng", now)
	require.NoError(t, err)

	_, _, err = Escalate(resolved, "again", "K. Mensah", now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, _, err = ResolveEscalation(resolved, "again", "A. Boateng", now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
