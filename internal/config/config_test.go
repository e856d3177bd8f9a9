package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/registro")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.ExpiryJob.Enabled)
	assert.Equal(t, "0 2 * * *", cfg.ExpiryJob.Cron)
	assert.Equal(t, "30 2 * * *", cfg.RenewalJob.Cron)
	assert.Equal(t, 30*24*time.Hour, cfg.ExpiryLookAhead)
	assert.False(t, cfg.RenewNearExpiry)
	assert.Equal(t, "dev-secret-change-in-production", cfg.JWTSecret)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoad_RegistryTimezone(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/registro")
	t.Setenv("REGISTRY_TIMEZONE", "Europe/Rome")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.Location)
	assert.Equal(t, "Europe/Rome", cfg.Location.String())

	t.Setenv("REGISTRY_TIMEZONE", "Europe/Atlantide")
	_, err = Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "REGISTRY_TIMEZONE")
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	assert.Nil(t, cfg)
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestLoad_EnabledJobWithoutCron(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/registro")
	t.Setenv("JOB_RENEWAL_ENABLED", "true")
	t.Setenv("JOB_RENEWAL_CRON", " ")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JOB_RENEWAL_CRON")
}

func TestLoad_DisabledJobWithoutCron(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/registro")
	t.Setenv("JOB_EXPIRY_ENABLED", "false")
	t.Setenv("JOB_EXPIRY_CRON", "")
	t.Setenv("EXPIRY_LOOKAHEAD_DAYS", "15")
	t.Setenv("RENEWAL_INCLUDE_NEAR_EXPIRY", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.ExpiryJob.Enabled)
	assert.Equal(t, 15*24*time.Hour, cfg.ExpiryLookAhead)
	assert.True(t, cfg.RenewNearExpiry)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/registro")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is required in production")
}

func TestGetEnvAsSlice_TrimsValues(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, getEnvAsSlice("ALLOWED_ORIGINS", nil))
}
