package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PASSWORD", "secret")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "serfinsa", cfg.Database.Database)
	assert.Equal(t, int32(5), cfg.Database.MaxConns)
	assert.Equal(t, "Serfinsa*.xlsx", cfg.Ingest.FilePattern)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, "tls", cfg.Mail.Encryption)
	assert.Equal(t, 10, cfg.Audit.PaymentMethodID)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "serfinsa_settler", cfg.Metrics.JobName)
	assert.Empty(t, cfg.Metrics.PushgatewayURL)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DATA_DIR", "/srv/settlements")
	t.Setenv("AUDIT_PAYMENT_METHOD_ID", "12")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "/srv/settlements", cfg.Ingest.DataDir)
	assert.Equal(t, 12, cfg.Audit.PaymentMethodID)
	assert.True(t, cfg.Logger.Development)
}

func TestLoadFromEnv_RequiresDBPassword(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestLoadFromEnv_MailPasswordRequiredWithRecipient(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NOTIFICATION_EMAIL", "ops@qpago.example")
	t.Setenv("MAIL_PASSWORD", "")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAIL_PASSWORD")
}

func TestLoadFromEnv_MailOptionalWithoutRecipient(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NOTIFICATION_EMAIL", "")
	t.Setenv("MAIL_PASSWORD", "")

	_, err := LoadFromEnv()
	assert.NoError(t, err)
}

func TestLoadFromEnv_InvalidIntFallsBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_PORT", "not-a-number")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "settler",
		Password: "secret",
		Database: "serfinsa",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=settler password=secret dbname=serfinsa sslmode=require",
		cfg.ConnectionString())
}
