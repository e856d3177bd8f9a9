package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseURL string

	// JWT
	JWTSecret string

	// Background Workers
	WorkerCount         int
	DispatchConcurrency int

	// CORS
	AllowedOrigins []string

	// Email (Resend)
	ResendAPIKey             string
	FromEmail                string
	EnableEmailNotifications bool
	AppURL                   string

	// Sentry
	SentryDSN string

	// ReportArchivePath is where digest workbooks are kept. Empty disables
	// archiving.
	ReportArchivePath string

	// Lifecycle jobs
	ExpiryJob  JobConfig
	RenewalJob JobConfig

	// ExpiryLookAhead is the window before expiry in which an active
	// contract is moved to near_expiry.
	ExpiryLookAhead time.Duration
	// RenewNearExpiry lets the renewal job pick up near_expiry contracts
	// as well as expired ones.
	RenewNearExpiry bool

	// Timezone names the zone whose calendar days expiry dates refer to. Job
	// cron expressions are evaluated in it too. Location is resolved from it
	// at load; nil means UTC.
	Timezone string
	Location *time.Location
}

// JobConfig describes one scheduled job registration
type JobConfig struct {
	Enabled bool
	Cron    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                     getEnv("PORT", "8080"),
		Environment:              getEnv("ENVIRONMENT", "development"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		JWTSecret:                getEnv("JWT_SECRET", ""),
		WorkerCount:              getEnvAsInt("WORKER_COUNT", 5),
		DispatchConcurrency:      getEnvAsInt("DISPATCH_CONCURRENCY", 4),
		AllowedOrigins:           getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		ResendAPIKey:             getEnv("RESEND_API_KEY", ""),
		FromEmail:                getEnv("FROM_EMAIL", "noreply@registro.app"),
		EnableEmailNotifications: getEnvAsBool("ENABLE_EMAIL_NOTIFICATIONS", true),
		AppURL:                   getEnv("APP_URL", "http://localhost:8080"),
		SentryDSN:                getEnv("SENTRY_DSN", ""),
		ReportArchivePath:        getEnv("REPORT_ARCHIVE_PATH", ""),
		ExpiryJob: JobConfig{
			Enabled: getEnvAsBool("JOB_EXPIRY_ENABLED", true),
			Cron:    getEnv("JOB_EXPIRY_CRON", "0 2 * * *"),
		},
		RenewalJob: JobConfig{
			Enabled: getEnvAsBool("JOB_RENEWAL_ENABLED", true),
			Cron:    getEnv("JOB_RENEWAL_CRON", "30 2 * * *"),
		},
		ExpiryLookAhead: time.Duration(getEnvAsInt("EXPIRY_LOOKAHEAD_DAYS", 30)) * 24 * time.Hour,
		RenewNearExpiry: getEnvAsBool("RENEWAL_INCLUDE_NEAR_EXPIRY", false),
		Timezone:        getEnv("REGISTRY_TIMEZONE", "UTC"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

// Validate checks required settings. Scheduling problems are reported here so
// they surface at startup rather than when a job fires.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWTSecret == "" && c.Environment == "production" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}

	if c.ExpiryJob.Enabled && strings.TrimSpace(c.ExpiryJob.Cron) == "" {
		return fmt.Errorf("JOB_EXPIRY_CRON is required when JOB_EXPIRY_ENABLED is true")
	}

	if c.RenewalJob.Enabled && strings.TrimSpace(c.RenewalJob.Cron) == "" {
		return fmt.Errorf("JOB_RENEWAL_CRON is required when JOB_RENEWAL_ENABLED is true")
	}

	if c.ExpiryLookAhead < 0 {
		return fmt.Errorf("EXPIRY_LOOKAHEAD_DAYS must not be negative")
	}

	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1")
	}

	if c.Timezone != "" {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("REGISTRY_TIMEZONE %q: %w", c.Timezone, err)
		}
		c.Location = loc
	}

	return nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool reads an environment variable as boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
