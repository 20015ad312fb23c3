// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT settings for token issuing and validation.
type JWTConfig interface {
	GetJWTSecret() string
	GetJWTTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// WorkflowConfig provides settings for the external workflow engine.
type WorkflowConfig interface {
	GetWorkflowBaseURL() string
	GetWorkflowAPIKey() string
	GetLeadProcessingWebhookURL() string
	GetOutreachWebhookURL() string
}

// WebhookAuthConfig provides the shared secret for inbound webhook verification.
type WebhookAuthConfig interface {
	GetWebhookSigningSecret() string
}

// DispatchConfig provides settings for the async dispatch queue.
type DispatchConfig interface {
	GetRedisURL() string
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// SMTPConfig provides settings for outbound test emails.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	IsSMTPEnabled() bool
}

// BootstrapConfig provides the initial admin account created on first start.
type BootstrapConfig interface {
	GetBootstrapAdminName() string
	GetBootstrapAdminEmail() string
	GetBootstrapAdminPassword() string
}

// AppConfig provides general application settings.
type AppConfig interface {
	GetFrontendURL() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env            string
	HTTPAddr       string
	DatabaseURL    string
	JWTSecret      string
	JWTTTL         time.Duration
	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool
	FrontendURL    string

	WorkflowBaseURL          string
	WorkflowAPIKey           string
	LeadProcessingWebhookURL string
	OutreachWebhookURL       string
	WebhookSigningSecret     string

	RedisURL         string
	AsynqQueueName   string
	AsynqConcurrency int

	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromName    string
	EmailFromAddress string

	BootstrapAdminName     string
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// Load reads configuration from the environment (and .env in development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":3001"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTTTL:         mustDuration(getEnv("JWT_TTL", "24h")),
		CORSAllowAll:   corsAllowAll,
		CORSOrigins:    corsOrigins,
		CORSAllowCreds: strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),

		WorkflowBaseURL:          getEnv("N8N_BASE_URL", "http://localhost:5678"),
		WorkflowAPIKey:           getEnv("N8N_API_KEY", ""),
		LeadProcessingWebhookURL: getEnv("N8N_WEBHOOK_LEAD_PROCESSING", ""),
		OutreachWebhookURL:       getEnv("N8N_WEBHOOK_SEND_OUTREACH", ""),
		WebhookSigningSecret:     getEnv("WEBHOOK_SIGNING_SECRET", ""),

		RedisURL:         getEnv("REDIS_URL", ""),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),

		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "PulseCapture"),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),

		BootstrapAdminName:     getEnv("ADMIN_NAME", "Admin"),
		BootstrapAdminEmail:    getEnv("ADMIN_EMAIL", ""),
		BootstrapAdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be a positive duration")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func (c *Config) GetDatabaseURL() string   { return c.DatabaseURL }
func (c *Config) GetJWTSecret() string     { return c.JWTSecret }
func (c *Config) GetJWTTTL() time.Duration { return c.JWTTTL }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }
func (c *Config) GetFrontendURL() string   { return c.FrontendURL }

func (c *Config) GetWorkflowBaseURL() string          { return c.WorkflowBaseURL }
func (c *Config) GetWorkflowAPIKey() string           { return c.WorkflowAPIKey }
func (c *Config) GetLeadProcessingWebhookURL() string { return c.LeadProcessingWebhookURL }
func (c *Config) GetOutreachWebhookURL() string       { return c.OutreachWebhookURL }
func (c *Config) GetWebhookSigningSecret() string     { return c.WebhookSigningSecret }

func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) IsSMTPEnabled() bool         { return c.SMTPHost != "" && c.EmailFromAddress != "" }

func (c *Config) GetBootstrapAdminName() string     { return c.BootstrapAdminName }
func (c *Config) GetBootstrapAdminEmail() string    { return c.BootstrapAdminEmail }
func (c *Config) GetBootstrapAdminPassword() string { return c.BootstrapAdminPassword }

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
