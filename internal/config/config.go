package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the application configuration with validation
type Config struct {
	// Application settings
	Port     int    `validate:"required,min=1,max=65535"`
	LogLevel string `validate:"required,oneof=debug info warn error"`

	Database DatabaseConfig

	// External services
	NotificationService NotificationConfig

	Security SecurityConfig

	// Performance settings
	Server ServerConfig

	Inventory InventoryConfig
}

// DatabaseConfig holds database configuration. Connection fields are only
// required for the postgres driver.
type DatabaseConfig struct {
	Driver          string `validate:"required,oneof=postgres memory"`
	Host            string `validate:"required_if=Driver postgres"`
	Port            int    `validate:"min=1,max=65535"`
	User            string `validate:"required_if=Driver postgres"`
	Password        string `validate:"required_if=Driver postgres"`
	Name            string `validate:"required_if=Driver postgres"`
	SSLMode         string `validate:"required,oneof=disable require verify-ca verify-full"`
	MaxOpenConns    int    `validate:"min=1"`
	MaxIdleConns    int    `validate:"min=1"`
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AutoMigrate     bool
}

// NotificationConfig holds notification service configuration. An empty URL
// disables notifications.
type NotificationConfig struct {
	URL            string        `validate:"omitempty,url"`
	Timeout        time.Duration `validate:"required"`
	RetryAttempts  int           `validate:"min=0,max=10"`
	RetryDelay     time.Duration
	MaxPayloadSize int64 `validate:"min=1024"`
}

// Enabled reports whether a notification endpoint is configured.
func (n NotificationConfig) Enabled() bool {
	return n.URL != ""
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	RateLimitRPS       int           `validate:"min=1"`
	RateLimitBurst     int           `validate:"min=1"`
	RateLimitClients   int           `validate:"min=1"`
	RateLimitClientTTL time.Duration `validate:"required"`
	RequestTimeout     time.Duration `validate:"required"`
	ShutdownTimeout    time.Duration `validate:"required"`
	EnableCORS         bool
	AllowedOrigins     []string
	TrustedProxies     []string
}

// ServerConfig holds server performance configuration
type ServerConfig struct {
	ReadTimeout    time.Duration `validate:"required"`
	WriteTimeout   time.Duration `validate:"required"`
	IdleTimeout    time.Duration `validate:"required"`
	MaxHeaderBytes int           `validate:"min=1024"`
	EnableMetrics  bool
	MetricsPort    int `validate:"min=1,max=65535"`
}

// InventoryConfig holds the domain settings.
type InventoryConfig struct {
	// ReferenceDataFile overrides the embedded manufacturers and statuses.
	ReferenceDataFile      string
	WarrantyThresholdDays  int           `validate:"min=0,max=3650"`
	SerialPatternCacheSize int           `validate:"min=1"`
	SerialPatternCacheTTL  time.Duration `validate:"required"`
}

// LoadConfig loads and validates the configuration from environment
// variables. A .env file in the working directory is read first when present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{
		Port:     getEnvAsInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", DriverPostgres),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", false),
		},

		NotificationService: NotificationConfig{
			URL:            getEnv("NOTIFIER_URL", ""),
			Timeout:        getEnvAsDuration("NOTIFIER_TIMEOUT", 10*time.Second),
			RetryAttempts:  getEnvAsInt("NOTIFIER_RETRY_ATTEMPTS", 3),
			RetryDelay:     getEnvAsDuration("NOTIFIER_RETRY_DELAY", time.Second),
			MaxPayloadSize: getEnvAsInt64("NOTIFIER_MAX_PAYLOAD_SIZE", 1024*1024),
		},

		Security: SecurityConfig{
			RateLimitRPS:       getEnvAsInt("RATE_LIMIT_RPS", 100),
			RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 200),
			RateLimitClients:   getEnvAsInt("RATE_LIMIT_CLIENTS", 10000),
			RateLimitClientTTL: getEnvAsDuration("RATE_LIMIT_CLIENT_TTL", 10*time.Minute),
			RequestTimeout:     getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout:    getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
			EnableCORS:         getEnvAsBool("ENABLE_CORS", true),
			AllowedOrigins:     getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},

		Server: ServerConfig{
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxHeaderBytes: getEnvAsInt("SERVER_MAX_HEADER_BYTES", 1<<20), // 1MB
			EnableMetrics:  getEnvAsBool("ENABLE_METRICS", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},

		Inventory: InventoryConfig{
			ReferenceDataFile:      getEnv("REFERENCE_DATA_FILE", ""),
			WarrantyThresholdDays:  getEnvAsInt("WARRANTY_THRESHOLD_DAYS", 30),
			SerialPatternCacheSize: getEnvAsInt("SERIAL_PATTERN_CACHE_SIZE", 128),
			SerialPatternCacheTTL:  getEnvAsDuration("SERIAL_PATTERN_CACHE_TTL", 10*time.Minute),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

var validate = validator.New()

// validateConfig checks the struct tags and reports every failing field.
func validateConfig(config *Config) error {
	var messages []string

	if err := validate.Struct(config); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return err
		}
		for _, fe := range fieldErrors {
			messages = append(messages, describe(fe))
		}
	}

	if config.Server.EnableMetrics && config.Server.MetricsPort == config.Port {
		messages = append(messages, "metrics port must differ from the API port")
	}

	if len(messages) == 0 {
		return nil
	}
	return fmt.Errorf("validation errors: %s", strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
