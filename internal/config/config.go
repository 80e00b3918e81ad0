package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	Log     LogConfig
	CORS    CORSConfig
	Signing SigningConfig
	S3      S3Config
	Notify  NotifyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds settings for validating gateway-issued tokens.
// Token issuance belongs to the auth service; this core only verifies.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig holds settings for a single signing provider.
type ProviderConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	BaseURL       string `mapstructure:"base_url"`
	APIKey        string `mapstructure:"api_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
}

// SigningConfig holds per-provider signing settings and request expiry.
type SigningConfig struct {
	DocuSign   ProviderConfig `mapstructure:"docusign"`
	AdobeSign  ProviderConfig `mapstructure:"adobesign"`
	RequestTTL time.Duration  `mapstructure:"request_ttl"`
}

// S3Config holds AWS S3 settings for presigning document URLs.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// NotifyConfig holds notification delivery settings.
type NotifyConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// Load reads configuration from environment variables with the COMPLI_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COMPLI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "complitracker")
	v.SetDefault("db.password", "complitracker_secret")
	v.SetDefault("db.name", "complitracker_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "complitracker")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Signing defaults
	v.SetDefault("signing.request_ttl", "720h")
	v.SetDefault("signing.docusign.enabled", true)
	v.SetDefault("signing.docusign.base_url", "https://demo.docusign.net/restapi/v2.1")
	v.SetDefault("signing.docusign.api_key", "")
	v.SetDefault("signing.docusign.webhook_secret", "")
	v.SetDefault("signing.docusign.timeout_secs", 30)
	v.SetDefault("signing.adobesign.enabled", true)
	v.SetDefault("signing.adobesign.base_url", "https://api.adobesign.com/api/rest/v6")
	v.SetDefault("signing.adobesign.api_key", "")
	v.SetDefault("signing.adobesign.webhook_secret", "")
	v.SetDefault("signing.adobesign.timeout_secs", 30)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Notify defaults
	v.SetDefault("notify.provider", "noop")
	v.SetDefault("notify.region", "us-east-1")
	v.SetDefault("notify.from_address", "noreply@complitracker.com")
	v.SetDefault("notify.from_name", "CompliTracker")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                      "COMPLI_SERVER_PORT",
		"server.read_timeout":              "COMPLI_SERVER_READ_TIMEOUT",
		"server.write_timeout":             "COMPLI_SERVER_WRITE_TIMEOUT",
		"server.environment":               "COMPLI_SERVER_ENVIRONMENT",
		"db.host":                          "COMPLI_DB_HOST",
		"db.port":                          "COMPLI_DB_PORT",
		"db.user":                          "COMPLI_DB_USER",
		"db.password":                      "COMPLI_DB_PASSWORD",
		"db.name":                          "COMPLI_DB_NAME",
		"db.sslmode":                       "COMPLI_DB_SSLMODE",
		"db.max_open":                      "COMPLI_DB_MAX_OPEN",
		"db.max_idle":                      "COMPLI_DB_MAX_IDLE",
		"jwt.secret":                       "COMPLI_JWT_SECRET",
		"jwt.issuer":                       "COMPLI_JWT_ISSUER",
		"log.level":                        "COMPLI_LOG_LEVEL",
		"log.format":                       "COMPLI_LOG_FORMAT",
		"cors.allowed_origins":             "COMPLI_CORS_ALLOWED_ORIGINS",
		"signing.request_ttl":              "COMPLI_SIGNING_REQUEST_TTL",
		"signing.docusign.enabled":         "COMPLI_SIGNING_DOCUSIGN_ENABLED",
		"signing.docusign.base_url":        "COMPLI_SIGNING_DOCUSIGN_BASE_URL",
		"signing.docusign.api_key":         "COMPLI_SIGNING_DOCUSIGN_API_KEY",
		"signing.docusign.webhook_secret":  "COMPLI_SIGNING_DOCUSIGN_WEBHOOK_SECRET",
		"signing.docusign.timeout_secs":    "COMPLI_SIGNING_DOCUSIGN_TIMEOUT_SECS",
		"signing.adobesign.enabled":        "COMPLI_SIGNING_ADOBESIGN_ENABLED",
		"signing.adobesign.base_url":       "COMPLI_SIGNING_ADOBESIGN_BASE_URL",
		"signing.adobesign.api_key":        "COMPLI_SIGNING_ADOBESIGN_API_KEY",
		"signing.adobesign.webhook_secret": "COMPLI_SIGNING_ADOBESIGN_WEBHOOK_SECRET",
		"signing.adobesign.timeout_secs":   "COMPLI_SIGNING_ADOBESIGN_TIMEOUT_SECS",
		"s3.region":                        "COMPLI_S3_REGION",
		"s3.endpoint":                      "COMPLI_S3_ENDPOINT",
		"s3.access_key":                    "COMPLI_S3_ACCESS_KEY",
		"s3.secret_key":                    "COMPLI_S3_SECRET_KEY",
		"s3.presign_expiry":                "COMPLI_S3_PRESIGN_EXPIRY",
		"notify.provider":                  "COMPLI_NOTIFY_PROVIDER",
		"notify.region":                    "COMPLI_NOTIFY_REGION",
		"notify.from_address":              "COMPLI_NOTIFY_FROM_ADDRESS",
		"notify.from_name":                 "COMPLI_NOTIFY_FROM_NAME",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if COMPLI_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("COMPLI_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Signing = SigningConfig{
		RequestTTL: v.GetDuration("signing.request_ttl"),
		DocuSign: ProviderConfig{
			Enabled:       v.GetBool("signing.docusign.enabled"),
			BaseURL:       v.GetString("signing.docusign.base_url"),
			APIKey:        v.GetString("signing.docusign.api_key"),
			WebhookSecret: v.GetString("signing.docusign.webhook_secret"),
			TimeoutSecs:   v.GetInt("signing.docusign.timeout_secs"),
		},
		AdobeSign: ProviderConfig{
			Enabled:       v.GetBool("signing.adobesign.enabled"),
			BaseURL:       v.GetString("signing.adobesign.base_url"),
			APIKey:        v.GetString("signing.adobesign.api_key"),
			WebhookSecret: v.GetString("signing.adobesign.webhook_secret"),
			TimeoutSecs:   v.GetInt("signing.adobesign.timeout_secs"),
		},
	}

	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}

	cfg.Notify = NotifyConfig{
		Provider:    v.GetString("notify.provider"),
		Region:      v.GetString("notify.region"),
		FromAddress: v.GetString("notify.from_address"),
		FromName:    v.GetString("notify.from_name"),
	}

	return cfg, nil
}
