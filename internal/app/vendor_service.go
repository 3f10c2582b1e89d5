// internal/app/vendor_service.go
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"facility_compliance_bot/internal/domain/vendor"
	"facility_compliance_bot/internal/domain/workorder"
)

// VendorService computes vendor performance scorecards on demand. Nothing
// here is persisted: scores and ranks are derived fresh from the work-order
// set on every query.
type VendorService struct {
	workOrderRepo workorder.Repository
	logger        *logrus.Entry
}

func NewVendorService(wr workorder.Repository, logger *logrus.Entry) *VendorService {
	return &VendorService{workOrderRepo: wr, logger: logger}
}

// Scoreboard scores and ranks every vendor with work orders created inside
// the trailing window ending at "now".
func (s *VendorService) Scoreboard(ctx context.Context, window time.Duration, now time.Time) ([]vendor.Performance, error) {
	cutoff := now.Add(-window)
	orders, err := s.workOrderRepo.ListCreatedSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list work orders since %s: %w", cutoff.Format("2006-01-02"), err)
	}

	ranked := vendor.Rank(vendor.ScoreVendors(orders))

	s.logger.WithFields(logrus.Fields{
		"window_days": int(window.Hours() / 24),
		"work_orders": len(orders),
		"vendors":     len(ranked),
	}).Info("Vendor scoreboard computed")

	return ranked, nil
}

// FormatScoreboard renders a ranked scoreboard as a Telegram-friendly
// message, naming the top performer when one exists.
func FormatScoreboard(ranked []vendor.Performance, windowDays int) string {
	if len(ranked) == 0 {
		return fmt.Sprintf("No vendor work orders in the last %d days.", windowDays)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Vendor performance, last %d days\n", windowDays)
	for _, p := range ranked {
		fmt.Fprintf(&b, "%d. %s — %d%% (%d completed / %d total, %d rejected, %d open)\n",
			p.Rank, p.VendorName, p.CompletionRate, p.CompletedWorkOrders, p.TotalWorkOrders, p.RejectedWorkOrders, p.OpenWorkOrders)
	}
	if top, ok := vendor.TopPerformer(ranked); ok {
		fmt.Fprintf(&b, "Top performer: %s", top.VendorName)
	} else {
		b.WriteString("Top performer: none (no completed work orders)")
	}
	return b.String()
}
