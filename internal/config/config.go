package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Ingest   IngestConfig
	Mail     MailConfig
	Audit    AuditConfig
	Logger   LoggerConfig
	Metrics  MetricsConfig
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// IngestConfig holds settlement workbook discovery configuration
type IngestConfig struct {
	DataDir     string // root of the most-recently-modified-first search
	FilePattern string // workbook glob, e.g. "Serfinsa*.xlsx"
	LogDir      string // per-run log files and generated reports
}

// MailConfig holds SMTP relay configuration
type MailConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	Encryption  string // "tls", "ssl" or "none"
	FromAddress string
	FromName    string
	Recipient   string // notification address; empty disables email
}

// AuditConfig holds missing-transaction audit configuration
type AuditConfig struct {
	PaymentMethodID int // payment method marker of settlement transactions
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// MetricsConfig holds Prometheus Pushgateway configuration
type MetricsConfig struct {
	PushgatewayURL string // empty disables the end-of-run push
	JobName        string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_DATABASE", "serfinsa"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 5)),
			MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 1)),
		},
		Ingest: IngestConfig{
			DataDir:     getEnv("DATA_DIR", "data"),
			FilePattern: getEnv("FILE_PATTERN", "Serfinsa*.xlsx"),
			LogDir:      getEnv("LOG_DIR", "logs"),
		},
		Mail: MailConfig{
			Host:        getEnv("MAIL_HOST", "smtp.sendgrid.net"),
			Port:        getEnvAsInt("MAIL_PORT", 587),
			Username:    getEnv("MAIL_USER", "apikey"),
			Password:    getEnv("MAIL_PASSWORD", ""),
			Encryption:  getEnv("MAIL_ENCRYPTION", "tls"),
			FromAddress: getEnv("MAIL_FROM_ADDRESS", "no-reply@qpago.example"),
			FromName:    getEnv("MAIL_FROM_NAME", "Serfinsa Settlements"),
			Recipient:   getEnv("NOTIFICATION_EMAIL", ""),
		},
		Audit: AuditConfig{
			PaymentMethodID: getEnvAsInt("AUDIT_PAYMENT_METHOD_ID", 10),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: getEnv("METRICS_PUSHGATEWAY_URL", ""),
			JobName:        getEnv("METRICS_JOB_NAME", "serfinsa_settler"),
		},
	}

	// Validate required fields
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Mail.Recipient != "" && cfg.Mail.Password == "" {
		return nil, fmt.Errorf("MAIL_PASSWORD is required when NOTIFICATION_EMAIL is set")
	}

	return cfg, nil
}

// ConnectionString returns the PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
