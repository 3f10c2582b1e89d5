// internal/app/compliance_service.go
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"facility_compliance_bot/internal/domain/fuel"
	"facility_compliance_bot/internal/domain/sla"
	domainTelegram "facility_compliance_bot/internal/domain/telegram"
	"facility_compliance_bot/internal/domain/workorder"
)

// ComplianceService runs SLA classification over the current work-order set
// and reports the results. Classification itself is pure; the service reads
// "now" once per sweep and threads it through, so a single sweep is evaluated
// against a single instant.
type ComplianceService struct {
	workOrderRepo workorder.Repository
	fuelRepo      fuel.Repository
	alertClient   domainTelegram.Client
	logger        *logrus.Entry
	managerChatID int64
}

func NewComplianceService(
	wr workorder.Repository,
	fr fuel.Repository,
	ac domainTelegram.Client,
	logger *logrus.Entry,
	managerChatID int64,
) *ComplianceService {
	return &ComplianceService{
		workOrderRepo: wr,
		fuelRepo:      fr,
		alertClient:   ac,
		logger:        logger,
		managerChatID: managerChatID,
	}
}

// BreachItem is one breached or near-breach work order in a sweep report,
// with its SLA resolution target attached for the digest.
type BreachItem struct {
	WorkOrder        *workorder.WorkOrder
	Compliance       sla.Compliance
	ResolutionTarget string
}

// SweepReport summarizes one compliance sweep.
type SweepReport struct {
	SweptAt            time.Time
	Total              int
	Breached           int
	NearBreach         int
	OnTrack            int
	Exempt             int
	ComplianceRate     int
	PendingEscalations int
	Items              []BreachItem // breached and near-breach orders only
}

// RunSweep classifies every active work order against "now", computes the
// overall compliance rate, and counts unresolved fuel escalations. The
// caller decides what to do with the report; RunDailySweep pushes it to the
// facilities manager.
func (s *ComplianceService) RunSweep(ctx context.Context, now time.Time) (*SweepReport, error) {
	orders, err := s.workOrderRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active work orders: %w", err)
	}

	report := &SweepReport{SweptAt: now, Total: len(orders)}
	results := make([]sla.Compliance, 0, len(orders))
	for _, wo := range orders {
		c := wo.Compliance(now)
		results = append(results, c)
		switch c {
		case sla.ComplianceBreached:
			report.Breached++
		case sla.ComplianceNearBreach:
			report.NearBreach++
		case sla.ComplianceOnTrack:
			report.OnTrack++
		case sla.ComplianceExempt:
			report.Exempt++
		}
		if c == sla.ComplianceBreached || c == sla.ComplianceNearBreach {
			item := BreachItem{WorkOrder: wo, Compliance: c}
			if policy, err := sla.LookupPolicy(wo.Priority); err == nil {
				item.ResolutionTarget = policy.ResolutionTarget
			} else {
				s.logger.WithError(err).WithField("work_order_id", wo.ID).Warn("Work order carries a priority outside the SLA catalog")
			}
			report.Items = append(report.Items, item)
		}
	}
	report.ComplianceRate = sla.ComplianceRate(results)

	pending, err := s.fuelRepo.ListDeliveriesByEscalation(ctx, fuel.EscalationPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending escalations: %w", err)
	}
	report.PendingEscalations = len(pending)

	s.logger.WithFields(logrus.Fields{
		"total":               report.Total,
		"breached":            report.Breached,
		"near_breach":         report.NearBreach,
		"on_track":            report.OnTrack,
		"compliance_rate":     report.ComplianceRate,
		"pending_escalations": report.PendingEscalations,
	}).Info("Compliance sweep completed")

	return report, nil
}

// RunDailySweep runs a sweep and, when anything needs attention, sends the
// digest to the facilities manager chat.
func (s *ComplianceService) RunDailySweep(ctx context.Context, now time.Time) error {
	report, err := s.RunSweep(ctx, now)
	if err != nil {
		return err
	}

	if len(report.Items) == 0 && report.PendingEscalations == 0 {
		s.logger.Info("Nothing to report; daily digest not sent")
		return nil
	}

	if s.managerChatID == 0 {
		s.logger.Warn("Manager chat ID not configured; daily digest not sent")
		return nil
	}

	if err := s.alertClient.SendMessage(s.managerChatID, FormatSweepDigest(report), nil); err != nil {
		return fmt.Errorf("failed to send daily compliance digest: %w", err)
	}
	s.logger.WithField("manager_chat_id", s.managerChatID).Info("Daily compliance digest sent")
	return nil
}

// FormatSweepDigest renders a sweep report as a Telegram-friendly message.
func FormatSweepDigest(report *SweepReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SLA compliance digest for %s\n", report.SweptAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Compliance rate: %d%% (%d active work orders, %d breached, %d near breach)\n",
		report.ComplianceRate, report.Total-report.Exempt, report.Breached, report.NearBreach)
	if report.PendingEscalations > 0 {
		fmt.Fprintf(&b, "Unresolved fuel escalations: %d\n", report.PendingEscalations)
	}
	for _, item := range report.Items {
		label := "NEAR BREACH"
		if item.Compliance == sla.ComplianceBreached {
			label = "BREACHED"
		}
		due := "no due date"
		if item.WorkOrder.DueDate != nil {
			due = "due " + item.WorkOrder.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "[%s] %s — %s (%s, %s, resolution target %s)\n",
			label, item.WorkOrder.Title, item.WorkOrder.BranchSite, item.WorkOrder.Priority, due, item.ResolutionTarget)
	}
	return strings.TrimRight(b.String(), "\n")
}
