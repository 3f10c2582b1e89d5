package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/telebot.v3"

	"facility_compliance_bot/internal/app"
	"facility_compliance_bot/internal/infra/config"
	idb "facility_compliance_bot/internal/infra/database"
	"facility_compliance_bot/internal/infra/logger"
	"facility_compliance_bot/internal/infra/scheduler"
	"facility_compliance_bot/internal/infra/telegram"
)

func main() {
	fmt.Println("Facility compliance service starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg)
	mainLogger := log.WithField("component", "main")
	mainLogger.WithFields(map[string]interface{}{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Configuration loaded")

	// Database
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	mainLogger.Info("Database connection established")

	// Repositories
	workOrderRepo := idb.NewPostgresWorkOrderRepository(db)
	fuelRepo := idb.NewPostgresFuelRepository(db)
	mainLogger.Info("Repositories initialized")

	// Telegram bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := log.WithField("component", "telebot").WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Bot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}
	alertClient := telegram.NewTelebotAdapter(bot)

	// Application services
	complianceSvc := app.NewComplianceService(workOrderRepo, fuelRepo, alertClient,
		log.WithField("component", "compliance_service"), cfg.ManagerTelegramID)
	fuelSvc := app.NewFuelService(fuelRepo, alertClient,
		log.WithField("component", "fuel_service"), cfg.ManagerTelegramID)
	vendorSvc := app.NewVendorService(workOrderRepo,
		log.WithField("component", "vendor_service"))
	mainLogger.Info("Application services initialized")

	// Scheduler
	complianceScheduler := scheduler.NewComplianceScheduler(
		complianceSvc,
		fuelSvc,
		log.WithField("component", "scheduler"),
		cfg.CronSpecComplianceSweep,
		cfg.CronSpecMonthEndCheck,
	)
	complianceScheduler.Start()

	// Admin command handlers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	telegram.RegisterAdminHandlers(ctx, bot, complianceSvc, fuelSvc, vendorSvc,
		cfg.AdminTelegramID, cfg.VendorScoreWindowDays, log.WithField("component", "admin_handlers"))
	mainLogger.Info("Admin command handlers registered")

	mainLogger.Info("Application setup complete. Bot and scheduler are starting...")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	cancel()
	complianceScheduler.Stop()
	bot.Stop()
	mainLogger.Info("Application shut down gracefully")
}
