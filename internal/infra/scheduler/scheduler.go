package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"facility_compliance_bot/internal/app"
)

// ComplianceScheduler owns the recurring jobs: the daily SLA sweep over
// active work orders, and a daily check that opens the monthly fuel
// reconciliations on the last day of each month.
type ComplianceScheduler struct {
	cronEngine            *cron.Cron
	complianceSvc         *app.ComplianceService
	fuelSvc               *app.FuelService
	logger                *logrus.Entry
	cronSpecSweep         string
	cronSpecMonthEndCheck string
}

func NewComplianceScheduler(
	complianceSvc *app.ComplianceService,
	fuelSvc *app.FuelService,
	logger *logrus.Entry,
	cronSpecSweep string, // e.g. "0 8 * * *" (8:00 AM daily)
	cronSpecMonthEndCheck string, // e.g. "0 18 * * *" (6:00 PM daily, fires on last day only)
) *ComplianceScheduler {
	return &ComplianceScheduler{
		cronEngine:            cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		complianceSvc:         complianceSvc,
		fuelSvc:               fuelSvc,
		logger:                logger,
		cronSpecSweep:         cronSpecSweep,
		cronSpecMonthEndCheck: cronSpecMonthEndCheck,
	}
}

func (s *ComplianceScheduler) Start() {
	s.logger.Info("Starting compliance scheduler...")

	// Daily SLA compliance sweep. "now" is read once per run and threaded
	// through so the whole sweep is evaluated against one instant.
	_, err := s.cronEngine.AddFunc(s.cronSpecSweep, func() {
		s.logger.Info("Cron job triggered for daily compliance sweep")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.complianceSvc.RunDailySweep(ctx, time.Now()); err != nil {
			s.logger.WithError(err).Error("Daily compliance sweep failed")
		}
	})
	if err != nil {
		s.logger.WithError(err).Fatal("Could not add compliance sweep cron job")
	}

	// Job that runs daily but only proceeds if it's the last day of the month.
	_, err = s.cronEngine.AddFunc(s.cronSpecMonthEndCheck, func() {
		s.logger.Info("Daily cron job triggered for month-end check")
		now := time.Now()
		// First day of the next month minus one day is the last day of the current month.
		firstOfNextMonth := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
		lastDayOfCurrentMonth := firstOfNextMonth.AddDate(0, 0, -1)

		if now.Day() != lastDayOfCurrentMonth.Day() {
			s.logger.WithFields(logrus.Fields{
				"today":    now.Day(),
				"last_day": lastDayOfCurrentMonth.Day(),
			}).Info("Not the last day of the month; skipping reconciliation open")
			return
		}

		s.logger.Info("Last day of the month; opening monthly fuel reconciliations")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.fuelSvc.OpenMonthlyReconciliations(ctx, now); err != nil {
			s.logger.WithError(err).Error("Monthly reconciliation open failed")
		}
	})
	if err != nil {
		s.logger.WithError(err).Fatal("Could not add month-end cron job")
	}

	s.cronEngine.Start()
	s.logger.Info("Compliance scheduler started with jobs")
}

func (s *ComplianceScheduler) Stop() {
	s.logger.Info("Stopping compliance scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Compliance scheduler gracefully stopped")
}
