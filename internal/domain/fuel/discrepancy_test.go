package fuel

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestClassifyDiscrepancy(t *testing.T) {
	tests := []struct {
		name      string
		approved  string
		delivered string
		expected  DiscrepancyStatus
	}{
		{"exact match", "10000", "10000", DiscrepancyMatched},
		{"short supplied", "10000", "9500", DiscrepancyShortSupplied},
		{"over supplied", "10000", "10200", DiscrepancyOverSupplied},
		{"zero on both sides", "0", "0", DiscrepancyMatched},
		{"fractional shortfall is still a discrepancy", "10000", "9999.99", DiscrepancyShortSupplied},
		{"fractional surplus is still a discrepancy", "10000", "10000.01", DiscrepancyOverSupplied},
		{"equal values with different scale", "10000", "10000.00", DiscrepancyMatched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approved := decimal.RequireFromString(tt.approved)
			delivered := decimal.RequireFromString(tt.delivered)
			if got := ClassifyDiscrepancy(approved, delivered); got != tt.expected {
				t.Errorf("ClassifyDiscrepancy(%s, %s) = %q, want %q", tt.approved, tt.delivered, got, tt.expected)
			}
		})
	}
}

func TestNewDeliveryDerivesDiscrepancyStatus(t *testing.T) {
	d, err := NewDelivery(uuid.New(), "GOIL", "Tema Depot", time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(10000), decimal.NewFromInt(9500))
	if err != nil {
		t.Fatalf("NewDelivery returned error: %v", err)
	}
	if d.DiscrepancyStatus != DiscrepancyShortSupplied {
		t.Errorf("DiscrepancyStatus = %q, want %q", d.DiscrepancyStatus, DiscrepancyShortSupplied)
	}
	if d.EscalationStatus != EscalationNone {
		t.Errorf("EscalationStatus = %q, want %q", d.EscalationStatus, EscalationNone)
	}
	if !d.QuantityDelta().Equal(decimal.NewFromInt(-500)) {
		t.Errorf("QuantityDelta = %s, want -500", d.QuantityDelta())
	}
}

func TestNewDeliveryRejectsNegativeQuantities(t *testing.T) {
	date := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)

	_, err := NewDelivery(uuid.New(), "GOIL", "Tema Depot", date, decimal.NewFromInt(-1), decimal.NewFromInt(100))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative approved quantity: error = %v, want ErrInvalidInput", err)
	}

	_, err = NewDelivery(uuid.New(), "GOIL", "Tema Depot", date, decimal.NewFromInt(100), decimal.NewFromInt(-1))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative delivered quantity: error = %v, want ErrInvalidInput", err)
	}
}
