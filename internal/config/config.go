package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Frappe    FrappeConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	Dashboard DashboardConfig
	MongoDB   MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// FrappeConfig contains credentials and options for the backing document store.
type FrappeConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
	// SessionUser is the operator identity used as the default inspector when
	// a row carries none.
	SessionUser string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// DashboardConfig tunes the audit dashboard controller.
type DashboardConfig struct {
	// SearchDebounce is the trailing-edge quiescence window applied to search
	// input before a reload fires.
	SearchDebounce time.Duration
	// ReloadSchedule is the cron expression for the periodic list refresh.
	ReloadSchedule string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	debounceMs, err := strconv.Atoi(getenvWithDefault("SEARCH_DEBOUNCE_MS", "300"))
	if err != nil {
		return nil, fmt.Errorf("SEARCH_DEBOUNCE_MS must be an integer: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Frappe: FrappeConfig{
			BaseURL:     getenvWithDefault("FRAPPE_BASE_URL", "http://localhost:8000"),
			APIKey:      os.Getenv("FRAPPE_API_KEY"),
			APISecret:   os.Getenv("FRAPPE_API_SECRET"),
			SessionUser: getenvWithDefault("FRAPPE_SESSION_USER", "Administrator"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Colombo"),
		},
		Dashboard: DashboardConfig{
			SearchDebounce: time.Duration(debounceMs) * time.Millisecond,
			ReloadSchedule: getenvWithDefault("DASHBOARD_RELOAD_SCHEDULE", "*/5 * * * *"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "trackerx"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.Frappe.BaseURL == "":
		return errors.New("FRAPPE_BASE_URL must be provided")
	case c.Frappe.APIKey == "":
		return errors.New("FRAPPE_API_KEY must be provided")
	case c.Frappe.APISecret == "":
		return errors.New("FRAPPE_API_SECRET must be provided")
	}

	if c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
	}

	if c.Sheets.SpreadsheetID == "" {
		return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Dashboard.ReloadSchedule == "" {
		return errors.New("DASHBOARD_RELOAD_SCHEDULE must be provided")
	}

	if c.Dashboard.SearchDebounce <= 0 {
		return errors.New("SEARCH_DEBOUNCE_MS must be positive")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
