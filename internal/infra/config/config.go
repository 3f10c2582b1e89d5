package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken           string
	DatabaseURL             string
	AdminTelegramID         int64 // the only account allowed to run state-changing commands
	ManagerTelegramID       int64 // chat that receives breach and discrepancy alerts
	LogLevel                string
	Environment             string
	CronSpecComplianceSweep string // daily SLA classification of active work orders
	CronSpecMonthEndCheck   string // daily check that opens reconciliations on the last day of month
	VendorScoreWindowDays   int    // trailing window for the vendor scoreboard
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	managerIDStr := os.Getenv("MANAGER_TELEGRAM_ID")
	if managerIDStr == "" {
		return nil, fmt.Errorf("MANAGER_TELEGRAM_ID is not set")
	}
	cfg.ManagerTelegramID, err = strconv.ParseInt(managerIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MANAGER_TELEGRAM_ID: %w", err)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecComplianceSweep = os.Getenv("CRON_SPEC_COMPLIANCE_SWEEP")
	if cfg.CronSpecComplianceSweep == "" {
		cfg.CronSpecComplianceSweep = "0 8 * * *" // Default: 8:00 AM daily
	}

	cfg.CronSpecMonthEndCheck = os.Getenv("CRON_SPEC_MONTH_END_CHECK")
	if cfg.CronSpecMonthEndCheck == "" {
		cfg.CronSpecMonthEndCheck = "0 18 * * *" // Default: 6:00 PM daily
	}

	windowStr := os.Getenv("VENDOR_SCORE_WINDOW_DAYS")
	if windowStr == "" {
		cfg.VendorScoreWindowDays = 90
	} else {
		cfg.VendorScoreWindowDays, err = strconv.Atoi(windowStr)
		if err != nil || cfg.VendorScoreWindowDays <= 0 {
			return nil, fmt.Errorf("invalid VENDOR_SCORE_WINDOW_DAYS: %q", windowStr)
		}
	}

	return cfg, nil
}
