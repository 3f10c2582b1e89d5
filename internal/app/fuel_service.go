// internal/app/fuel_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"facility_compliance_bot/internal/domain/fuel"
	domainTelegram "facility_compliance_bot/internal/domain/telegram"
	idb "facility_compliance_bot/internal/infra/database"
)

// FuelService orchestrates the fuel workflows: delivery intake, the
// escalation state machine for discrepant deliveries, and the monthly OMC
// reconciliation. The state machines themselves live in the fuel domain
// package; this service loads records, applies the pure transitions, and
// persists and announces the results.
type FuelService struct {
	fuelRepo      fuel.Repository
	alertClient   domainTelegram.Client
	logger        *logrus.Entry
	managerChatID int64
	nowFunc       func() time.Time
}

func NewFuelService(
	fr fuel.Repository,
	ac domainTelegram.Client,
	logger *logrus.Entry,
	managerChatID int64,
) *FuelService {
	return &FuelService{
		fuelRepo:      fr,
		alertClient:   ac,
		logger:        logger,
		managerChatID: managerChatID,
		nowFunc:       time.Now,
	}
}

// RecordDeliveryInput carries the collaborator-entered fields of a delivery.
type RecordDeliveryInput struct {
	VendorName        string
	BranchSite        string
	DeliveryDate      time.Time
	ApprovedQuantity  decimal.Decimal
	DeliveredQuantity decimal.Decimal
}

// RecordDelivery persists a new delivery with its discrepancy status derived
// from the raw quantities, and alerts the facilities manager when the
// quantities disagree.
func (s *FuelService) RecordDelivery(ctx context.Context, input RecordDeliveryInput) (*fuel.Delivery, error) {
	delivery, err := fuel.NewDelivery(uuid.New(), input.VendorName, input.BranchSite, input.DeliveryDate, input.ApprovedQuantity, input.DeliveredQuantity)
	if err != nil {
		return nil, err
	}

	if err := s.fuelRepo.CreateDelivery(ctx, &delivery); err != nil {
		return nil, fmt.Errorf("failed to create delivery: %w", err)
	}

	deliveryLogger := s.logger.WithFields(logrus.Fields{
		"delivery_id":        delivery.ID,
		"branch_site":        delivery.BranchSite,
		"discrepancy_status": delivery.DiscrepancyStatus,
	})
	deliveryLogger.Info("Fuel delivery recorded")

	if delivery.DiscrepancyStatus != fuel.DiscrepancyMatched && s.managerChatID != 0 {
		msg := fmt.Sprintf("Fuel delivery discrepancy at %s: approved %s L, delivered %s L (%s). Delivery ID: %s",
			delivery.BranchSite, delivery.ApprovedQuantity, delivery.DeliveredQuantity, delivery.DiscrepancyStatus, delivery.ID)
		if err := s.alertClient.SendMessage(s.managerChatID, msg, nil); err != nil {
			deliveryLogger.WithError(err).Error("Failed to send discrepancy alert")
		}
	}

	return &delivery, nil
}

// EscalateDelivery raises a discrepant delivery's escalation from NONE to
// PENDING and appends the audit entry. The transition is all-or-nothing:
// nothing is persisted when the state machine rejects the action.
func (s *FuelService) EscalateDelivery(ctx context.Context, deliveryID uuid.UUID, reason, actor string) (*fuel.Delivery, error) {
	delivery, err := s.fuelRepo.GetDeliveryByID(ctx, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery %s: %w", deliveryID, err)
	}

	updated, entry, err := fuel.Escalate(*delivery, reason, actor, s.nowFunc())
	if err != nil {
		return nil, err
	}

	if err := s.fuelRepo.UpdateDelivery(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update delivery %s: %w", deliveryID, err)
	}
	if err := s.fuelRepo.AppendAudit(ctx, &entry); err != nil {
		return nil, fmt.Errorf("failed to append escalation audit for delivery %s: %w", deliveryID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"delivery_id": deliveryID,
		"actor":       actor,
	}).Info("Delivery escalated")

	if s.managerChatID != 0 {
		msg := fmt.Sprintf("Delivery %s at %s escalated by %s: %s", updated.ID, updated.BranchSite, actor, reason)
		if err := s.alertClient.SendMessage(s.managerChatID, msg, nil); err != nil {
			s.logger.WithError(err).WithField("delivery_id", deliveryID).Error("Failed to send escalation alert")
		}
	}

	return &updated, nil
}

// ResolveEscalation closes a pending escalation with mandatory resolution
// notes, appending the audit entry.
func (s *FuelService) ResolveEscalation(ctx context.Context, deliveryID uuid.UUID, notes, actor string) (*fuel.Delivery, error) {
	delivery, err := s.fuelRepo.GetDeliveryByID(ctx, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery %s: %w", deliveryID, err)
	}

	updated, entry, err := fuel.ResolveEscalation(*delivery, notes, actor, s.nowFunc())
	if err != nil {
		return nil, err
	}

	if err := s.fuelRepo.UpdateDelivery(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update delivery %s: %w", deliveryID, err)
	}
	if err := s.fuelRepo.AppendAudit(ctx, &entry); err != nil {
		return nil, fmt.Errorf("failed to append resolution audit for delivery %s: %w", deliveryID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"delivery_id": deliveryID,
		"actor":       actor,
	}).Info("Escalation resolved")

	return &updated, nil
}

// OpenMonthlyReconciliations aggregates the month's deliveries per branch
// site into pending reconciliation records. The OMC statement quantity
// starts at zero and is entered via SetStatementQuantity once the statement
// arrives. Already-open (month, site) pairs are skipped, so the job is safe
// to re-run.
func (s *FuelService) OpenMonthlyReconciliations(ctx context.Context, month time.Time) error {
	deliveries, err := s.fuelRepo.ListDeliveriesForMonth(ctx, month)
	if err != nil {
		return fmt.Errorf("failed to list deliveries for %s: %w", month.Format("2006-01"), err)
	}
	if len(deliveries) == 0 {
		s.logger.WithField("month", month.Format("2006-01")).Info("No deliveries this month; no reconciliations opened")
		return nil
	}

	type totals struct {
		approved  decimal.Decimal
		delivered decimal.Decimal
	}
	bySite := make(map[string]*totals)
	for _, d := range deliveries {
		t, ok := bySite[d.BranchSite]
		if !ok {
			t = &totals{}
			bySite[d.BranchSite] = t
		}
		t.approved = t.approved.Add(d.ApprovedQuantity)
		t.delivered = t.delivered.Add(d.DeliveredQuantity)
	}

	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	opened := 0
	for site, t := range bySite {
		siteLogger := s.logger.WithFields(logrus.Fields{"month": monthStart.Format("2006-01"), "branch_site": site})

		_, err := s.fuelRepo.GetReconciliationByMonthAndSite(ctx, monthStart, site)
		if err == nil {
			siteLogger.Info("Reconciliation already open; skipping")
			continue
		}
		if err != idb.ErrReconciliationNotFound {
			return fmt.Errorf("failed to check existing reconciliation for %s: %w", site, err)
		}

		rec, err := fuel.NewMonthlyReconciliation(uuid.New(), monthStart, site, t.approved, t.delivered, decimal.Zero)
		if err != nil {
			return fmt.Errorf("failed to build reconciliation for %s: %w", site, err)
		}
		if err := s.fuelRepo.CreateReconciliation(ctx, &rec); err != nil {
			return fmt.Errorf("failed to create reconciliation for %s: %w", site, err)
		}
		opened++
		siteLogger.WithField("reconciliation_id", rec.ID).Info("Monthly reconciliation opened")
	}

	s.logger.WithFields(logrus.Fields{"month": monthStart.Format("2006-01"), "opened": opened}).Info("Monthly reconciliation run finished")
	return nil
}

// SetStatementQuantity records the OMC-reported quantity on a non-terminal
// reconciliation once the statement arrives.
func (s *FuelService) SetStatementQuantity(ctx context.Context, reconciliationID uuid.UUID, statement decimal.Decimal) (*fuel.MonthlyReconciliation, error) {
	rec, err := s.fuelRepo.GetReconciliationByID(ctx, reconciliationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reconciliation %s: %w", reconciliationID, err)
	}

	updated, err := fuel.SetStatement(*rec, statement, s.nowFunc())
	if err != nil {
		return nil, err
	}

	if err := s.fuelRepo.UpdateReconciliation(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update reconciliation %s: %w", reconciliationID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"reconciliation_id": reconciliationID,
		"omc_statement":     statement,
		"variance":          updated.Variance(),
	}).Info("OMC statement recorded")

	return &updated, nil
}

// ReconcileMonth closes out a zero-variance reconciliation, stamping the
// verifier. A nonzero variance is rejected by the state machine, never
// forced through.
func (s *FuelService) ReconcileMonth(ctx context.Context, reconciliationID uuid.UUID, verifier, notes string) (*fuel.MonthlyReconciliation, error) {
	rec, err := s.fuelRepo.GetReconciliationByID(ctx, reconciliationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reconciliation %s: %w", reconciliationID, err)
	}

	updated, err := fuel.Reconcile(*rec, verifier, notes, s.nowFunc())
	if err != nil {
		return nil, err
	}

	if err := s.fuelRepo.UpdateReconciliation(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update reconciliation %s: %w", reconciliationID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"reconciliation_id": reconciliationID,
		"status":            updated.Status,
		"verified_by":       verifier,
	}).Info("Reconciliation verified")

	return &updated, nil
}

// FlagReconciliationIssue moves a pending, nonzero-variance reconciliation
// to DISCREPANCY with the issue and proposed resolution on record, and
// alerts the facilities manager.
func (s *FuelService) FlagReconciliationIssue(ctx context.Context, reconciliationID uuid.UUID, issue, proposedResolution string) (*fuel.MonthlyReconciliation, error) {
	rec, err := s.fuelRepo.GetReconciliationByID(ctx, reconciliationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reconciliation %s: %w", reconciliationID, err)
	}

	updated, err := fuel.FlagIssue(*rec, issue, proposedResolution, s.nowFunc())
	if err != nil {
		return nil, err
	}

	if err := s.fuelRepo.UpdateReconciliation(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update reconciliation %s: %w", reconciliationID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"reconciliation_id": reconciliationID,
		"variance":          updated.Variance(),
	}).Info("Reconciliation issue flagged")

	if s.managerChatID != 0 {
		msg := fmt.Sprintf("Reconciliation discrepancy flagged for %s, %s: variance %s L. Issue: %s",
			updated.BranchSite, updated.Month.Format("January 2006"), updated.Variance(), issue)
		if err := s.alertClient.SendMessage(s.managerChatID, msg, nil); err != nil {
			s.logger.WithError(err).WithField("reconciliation_id", reconciliationID).Error("Failed to send reconciliation alert")
		}
	}

	return &updated, nil
}
