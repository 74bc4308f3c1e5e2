package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const EnvironmentProduction = "production"

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains HTTP and gRPC health server settings
type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	GRPCHealthPort      int    `yaml:"grpc_health_port"`
	Environment         string `yaml:"environment"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`
	MaxBodyBytes        int64  `yaml:"max_body_bytes"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	AutoMigrate  bool   `yaml:"auto_migrate"`
}

// EmailConfig selects the outbound mail provider.
// Provider is one of "smtp", "sendgrid" or "none".
type EmailConfig struct {
	Provider       string   `yaml:"provider"`
	SMTPHost       string   `yaml:"smtp_host"`
	SMTPPort       int      `yaml:"smtp_port"`
	SMTPUser       string   `yaml:"smtp_user"`
	SMTPPassword   string   `yaml:"smtp_password"`
	SendGridAPIKey string   `yaml:"sendgrid_api_key"`
	From           string   `yaml:"from"`
	FromName       string   `yaml:"from_name"`
	AdminEmails    []string `yaml:"admin_emails"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// StorageConfig contains protocol file storage settings
type StorageConfig struct {
	UploadDir    string   `yaml:"upload_dir"`
	BaseURL      string   `yaml:"base_url"`
	MaxFileSize  int64    `yaml:"max_file_size_mb"`
	AllowedTypes []string `yaml:"allowed_types"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// CacheConfig holds TTLs for the in-process repository caches, in seconds
type CacheConfig struct {
	VehiclesTTL    int `yaml:"vehicles_ttl_seconds"`
	RentalsTTL     int `yaml:"rentals_ttl_seconds"`
	CustomersTTL   int `yaml:"customers_ttl_seconds"`
	PermissionsTTL int `yaml:"permissions_ttl_seconds"`
}

// RateLimitConfig limits requests per client IP
type RateLimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

// TelemetryConfig contains OpenTelemetry settings
type TelemetryConfig struct {
	ServiceName  string `yaml:"service_name"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	AdvanceRentalStatuses     string `yaml:"advance_rental_statuses"`
	GenerateRecurringExpenses string `yaml:"generate_recurring_expenses"`
	SendSTKReminders          string `yaml:"send_stk_reminders"`
	PurgeSpamRentals          string `yaml:"purge_spam_rentals"`
	STKReminderDays           int    `yaml:"stk_reminder_days"`
	SpamRetentionDays         int    `yaml:"spam_retention_days"`
}

// Load reads configuration from a YAML file. A .env file in the working
// directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Email
	if val := os.Getenv("EMAIL_PROVIDER"); val != "" {
		c.Email.Provider = val
	}
	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.Email.SMTPHost = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Email.SMTPPort)
	}
	if val := os.Getenv("SMTP_USER"); val != "" {
		c.Email.SMTPUser = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		c.Email.SMTPPassword = val
	}
	if val := os.Getenv("SMTP_FROM"); val != "" {
		c.Email.From = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridAPIKey = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("ENVIRONMENT"); val != "" {
		c.Server.Environment = val
	}

	// Storage
	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Telemetry
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		c.Telemetry.OTLPEndpoint = val
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true" {
		c.Telemetry.Insecure = true
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCHealthPort == 0 {
		c.Server.GRPCHealthPort = c.Server.Port + 1
	}
	if c.Server.GRPCHealthPort < 0 || c.Server.GRPCHealthPort > 65535 {
		return fmt.Errorf("invalid gRPC health port: %d", c.Server.GRPCHealthPort)
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "development"
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 30
	}
	if c.Server.IdleTimeoutSeconds == 0 {
		c.Server.IdleTimeoutSeconds = 60
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 10 << 20
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}

	switch c.Email.Provider {
	case "":
		c.Email.Provider = "none"
	case "none":
	case "smtp":
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required")
		}
		if c.Email.SMTPPort <= 0 || c.Email.SMTPPort > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.Email.SMTPPort)
		}
	case "sendgrid":
		if c.Email.SendGridAPIKey == "" {
			return fmt.Errorf("SendGrid API key is required")
		}
	default:
		return fmt.Errorf("unsupported email provider: %s", c.Email.Provider)
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "BlackRent"
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 7 * 24 * 60
	}

	if c.Storage.UploadDir == "" {
		return fmt.Errorf("upload directory is required")
	}
	if c.Storage.MaxFileSize == 0 {
		c.Storage.MaxFileSize = 10
	}
	if len(c.Storage.AllowedTypes) == 0 {
		c.Storage.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}
	}

	// Cache defaults
	if c.Cache.VehiclesTTL == 0 {
		c.Cache.VehiclesTTL = 60
	}
	if c.Cache.RentalsTTL == 0 {
		c.Cache.RentalsTTL = 60
	}
	if c.Cache.CustomersTTL == 0 {
		c.Cache.CustomersTTL = 120
	}
	if c.Cache.PermissionsTTL == 0 {
		c.Cache.PermissionsTTL = 300
	}

	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 300
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "blackrent-backend"
	}

	// Scheduler defaults
	if c.Scheduler.AdvanceRentalStatuses == "" {
		c.Scheduler.AdvanceRentalStatuses = "0 5 * * * *" // Hourly at :05
	}
	if c.Scheduler.GenerateRecurringExpenses == "" {
		c.Scheduler.GenerateRecurringExpenses = "0 0 1 * * *" // 1 AM UTC
	}
	if c.Scheduler.SendSTKReminders == "" {
		c.Scheduler.SendSTKReminders = "0 0 7 * * *" // 7 AM UTC
	}
	if c.Scheduler.PurgeSpamRentals == "" {
		c.Scheduler.PurgeSpamRentals = "0 0 3 * * 0" // Sundays at 3 AM UTC
	}
	if c.Scheduler.STKReminderDays == 0 {
		c.Scheduler.STKReminderDays = 30
	}
	if c.Scheduler.SpamRetentionDays == 0 {
		c.Scheduler.SpamRetentionDays = 30
	}

	return nil
}

// IsProduction reports whether destructive maintenance endpoints must be disabled
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, EnvironmentProduction)
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetHealthAddress returns the gRPC health server address
func (c *Config) GetHealthAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCHealthPort)
}

func (c CacheConfig) Vehicles() time.Duration    { return time.Duration(c.VehiclesTTL) * time.Second }
func (c CacheConfig) Rentals() time.Duration     { return time.Duration(c.RentalsTTL) * time.Second }
func (c CacheConfig) Customers() time.Duration   { return time.Duration(c.CustomersTTL) * time.Second }
func (c CacheConfig) Permissions() time.Duration { return time.Duration(c.PermissionsTTL) * time.Second }
