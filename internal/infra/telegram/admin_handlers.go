package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"facility_compliance_bot/internal/app"
	"facility_compliance_bot/internal/domain/fuel"
	idb "facility_compliance_bot/internal/infra/database"
)

// RegisterAdminHandlers registers the admin command surface: escalation and
// reconciliation transitions plus the read-only digests. Every command is
// restricted to the configured admin Telegram ID.
func RegisterAdminHandlers(
	ctx context.Context,
	b *telebot.Bot,
	complianceSvc *app.ComplianceService,
	fuelSvc *app.FuelService,
	vendorSvc *app.VendorService,
	adminTelegramID int64,
	vendorWindowDays int,
	baseLogger *logrus.Entry,
) {
	adminOnly := func(handler string, c telebot.Context) (*logrus.Entry, bool) {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   handler,
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return handlerLogger, false
		}
		return handlerLogger, true
	}

	b.Handle("/escalate", func(c telebot.Context) error {
		handlerLogger, ok := adminOnly("/escalate", c)
		if !ok {
			return c.Send("Error: you are not authorized to run this command.")
		}

		// Format: /escalate <deliveryID> <reason...>
		args := c.Args()
		if len(args) < 2 {
			return c.Send("Usage: /escalate <delivery ID> <reason>")
		}
		deliveryID, err := uuid.Parse(args[0])
		if err != nil {
			return c.Send("Error: delivery ID must be a valid UUID.")
		}
		reason := strings.Join(args[1:], " ")
		actor := senderName(c)

		delivery, err := fuelSvc.EscalateDelivery(ctx, deliveryID, reason, actor)
		if err != nil {
			return replyTransitionError(c, handlerLogger, err, "escalate delivery")
		}

		handlerLogger.WithField("delivery_id", deliveryID).Info("Delivery escalated")
		return c.Send(fmt.Sprintf("Delivery %s escalated (%s at %s). Escalation is now %s.",
			delivery.ID, delivery.DiscrepancyStatus, delivery.BranchSite, delivery.EscalationStatus))
	})

	b.Handle("/resolve_escalation", func(c telebot.Context) error {
		handlerLogger, ok := adminOnly("/resolve_escalation", c)
		if !ok {
			return c.Send("Error: you are not authorized to run this command.")
		}

		// Format: /resolve_escalation <deliveryID> <resolution notes...>
		args := c.Args()
		if len(args) < 2 {
			return c.Send("Usage: /resolve_escalation <delivery ID> <resolution notes>")
		}
		deliveryID, err := uuid.Parse(args[0])
		if err != nil {
			return c.Send("Error: delivery ID must be a valid UUID.")
		}
		notes := strings.Join(args[1:], " ")

		delivery, err := fuelSvc.ResolveEscalation(ctx, deliveryID, notes, senderName(c))
		if err != nil {
			return replyTransitionError(c, handlerLogger, err, "resolve escalation")
		}

		handlerLogger.WithField("delivery_id", deliveryID).Info("Escalation resolved")
		return c.Send(fmt.Sprintf("Escalation for delivery %s resolved.", delivery.ID))
	})

	b.Handle("/set_statement", func(c telebot.Context) error {
		handlerLogger, ok := adminOnly("/set_statement", c)
		if !ok {
			return c.Send("Error: you are not authorized to run this command.")
		}

		// Format: /set_statement <reconciliationID> <litres>
		args := c.Args()
		if len(args) != 2 {
			return c.Send("Usage: /set_statement <reconciliation ID> <OMC statement litres>")
		}
		recID, err := uuid.Parse(args[0])
		if err != nil {
			return c.Send("Error: reconciliation ID must be a valid UUID.")
		}
		statement, err := decimal.NewFromString(args[1])
		if err != nil {
			return c.Send("Error: statement quantity must be a number of litres.")
		}

		rec, err := fuelSvc.SetStatementQuantity(ctx, recID, statement)
		if err != nil {
			return replyTransitionError(c, handlerLogger, err, "set statement")
		}

		handlerLogger.WithField("reconciliation_id", recID).Info("Statement recorded")
		return c.Send(fmt.Sprintf("Statement recorded for %s, %s: %s L against %s L delivered. Variance: %s L.",
			rec.BranchSite, rec.Month.Format("January 2006"), rec.OMCStatement, rec.TotalDelivered, rec.Variance()))
	})

	b.Handle("/reconcile", func(c telebot.Context) error {
		handlerLogger, ok := adminOnly("/reconcile", c)
		if !ok {
			return c.Send("Error: you are not authorized to run this command.")
		}

		// Format: /reconcile <reconciliationID> <verifier> [notes...]
		args := c.Args()
		if len(args) < 2 {
			return c.Send("Usage: /reconcile <reconciliation ID> <verifier> [notes]")
		}
		recID, err := uuid.Parse(args[0])
		if err != nil {
			return c.Send("Error: reconciliation ID must be a valid UUID.")
		}
		verifier := args[1]
		notes := strings.Join(args[2:], " ")

		rec, err := fuelSvc.ReconcileMonth(ctx, recID, verifier, notes)
		if err != nil {
			return replyTransitionError(c, handlerLogger, err, "reconcile")
		}

		handlerLogger.WithFields(logrus.Fields{"reconciliation_id": recID, "status": rec.Status}).Info("Reconciliation verified")
		return c.Send(fmt.Sprintf("Reconciliation for %s, %s is now %s. Verified by %s.",
			rec.BranchSite, rec.Month.Format("January 2006"), rec.Status, rec.VerifiedBy))
	})

	b.Handle("/flag_issue", func(c telebot.Context) error {
		handlerLogger, ok := adminOnly("/flag_issue", c)
		if !ok {
			return c.Send("Error: you are not authorized to run this command.")
		}

		// Format: /flag_issue <reconciliationID> <issue> | <proposed resolution>
		args := c.Args()
		if len(args) < 2 {
			return c.Send("Usage: /flag_issue <reconciliation ID> <issue> | <proposed resolution>")
		}
		recID, err := uuid.Parse(args[0])
		if err != nil {
			return c.Send("Error: reconciliation ID must be a valid UUID.")
		}
		rest := strings.Join(args[1:], " ")
		issue, proposed, found := strings.Cut(rest, "|")
		if !found {
			return c.Send("Usage: /flag_issue <reconciliation ID> <issue> | <proposed resolution>")
		}

		rec, err := fuelSvc.FlagReconciliationIssue(ctx, recID, strings.TrimSpace(issue), strings.TrimSpace(proposed))
		if err != nil {
			return replyTransitionError(c, handlerLogger, err, "flag issue")
		}

		handlerLogger.WithField("reconciliation_id", recID).Info("Issue flagged")
		return c.Send(fmt.Sprintf("Issue flagged for %s, %s. Variance %s L; status is now %s.",
			rec.BranchSite, rec.Month.Format("January 2006"), rec.Variance(), rec.Status))
	})

	b.Handle("/sla", func(c telebot.Context) error {
		handlerLogger, ok := adminOnly("/sla", c)
		if !ok {
			return c.Send("Error: you are not authorized to run this command.")
		}

		report, err := complianceSvc.RunSweep(ctx, time.Now())
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to run compliance sweep")
			return c.Send("An error occurred while computing the SLA digest.")
		}
		return c.Send(app.FormatSweepDigest(report))
	})

	b.Handle("/vendors", func(c telebot.Context) error {
		handlerLogger, ok := adminOnly("/vendors", c)
		if !ok {
			return c.Send("Error: you are not authorized to run this command.")
		}

		window := time.Duration(vendorWindowDays) * 24 * time.Hour
		ranked, err := vendorSvc.Scoreboard(ctx, window, time.Now())
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to compute vendor scoreboard")
			return c.Send("An error occurred while computing the vendor scoreboard.")
		}
		return c.Send(app.FormatScoreboard(ranked, vendorWindowDays))
	})
}

// replyTransitionError maps engine and repository errors to user-facing
// replies, logging the ones that indicate a real fault.
func replyTransitionError(c telebot.Context, logger *logrus.Entry, err error, action string) error {
	logWithError := logger.WithError(err)
	switch {
	case errors.Is(err, fuel.ErrInvalidTransition):
		logWithError.Warn("Rejected state transition")
		return c.Send(fmt.Sprintf("Rejected: %v", err))
	case errors.Is(err, fuel.ErrMissingRequiredField):
		logWithError.Warn("Missing required field")
		return c.Send(fmt.Sprintf("Rejected: %v", err))
	case errors.Is(err, fuel.ErrInvalidInput):
		logWithError.Warn("Invalid input")
		return c.Send(fmt.Sprintf("Rejected: %v", err))
	case errors.Is(err, idb.ErrDeliveryNotFound), errors.Is(err, idb.ErrReconciliationNotFound):
		logWithError.Warn("Record not found")
		return c.Send("Error: no record with that ID.")
	default:
		logWithError.Errorf("Failed to %s", action)
		return c.Send(fmt.Sprintf("An error occurred: %s", err.Error()))
	}
}

func senderName(c telebot.Context) string {
	sender := c.Sender()
	name := strings.TrimSpace(sender.FirstName + " " + sender.LastName)
	if name == "" {
		name = fmt.Sprintf("telegram:%d", sender.ID)
	}
	return name
}
