package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"discscore/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `validate:"required"`
	Database DatabaseConfig
	Engine   EngineConfig `validate:"required"`
	Metrics  MetricsConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string        `validate:"required,numeric"`
	GinMode        string        `validate:"oneof=debug release test"`
	RequestTimeout time.Duration `validate:"gt=0"`
}

// DatabaseConfig holds the run ledger connection. An empty URL disables the ledger.
type DatabaseConfig struct {
	URL    string
	Driver string `validate:"oneof=postgres sqlite3"`
}

// EngineConfig holds resampling and simulation defaults
type EngineConfig struct {
	ResampleIterations int    `validate:"gte=1,lte=10000000"`
	Simulations        int    `validate:"gte=1,lte=100000"`
	Workers            int    `validate:"gte=1"`
	Seed               uint64 // 0 draws a fresh seed per call
}

// MetricsConfig toggles the prometheus endpoint
type MetricsConfig struct {
	Enabled bool
}

// Enabled reports whether the run ledger is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Database: *loadDatabaseConfig(),
		Engine:   *loadEngineConfig(),
		Metrics:  MetricsConfig{Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true)},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		GinMode:        getEnvOrDefault("GIN_MODE", "release"),
		RequestTimeout: getEnvDurationOrDefault("REQUEST_TIMEOUT", 2*time.Minute),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	url := getEnvOrDefault("DATABASE_URL", "")
	driver := getEnvOrDefault("DB_DRIVER", "")
	if driver == "" {
		driver = "postgres"
		if strings.HasPrefix(url, "file:") || strings.HasSuffix(url, ".db") {
			driver = "sqlite3"
		}
	}
	return &DatabaseConfig{URL: url, Driver: driver}
}

func loadEngineConfig() *EngineConfig {
	return &EngineConfig{
		ResampleIterations: getEnvIntOrDefault("RESAMPLE_ITERATIONS", 100000),
		Simulations:        getEnvIntOrDefault("SIMULATIONS", 100),
		Workers:            getEnvIntOrDefault("WORKERS", runtime.GOMAXPROCS(0)),
		Seed:               getEnvUintOrDefault("SEED", 0),
	}
}

func validateConfig(config *Config) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(config)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return errors.ConfigInvalid(fe.Namespace() + " failed " + fe.Tag() + " (got " + strconv.Quote(toString(fe.Value())) + ")")
	}
	return errors.WithCode(errors.CodeConfigInvalid, err)
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case time.Duration:
		return t.String()
	default:
		return ""
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUintOrDefault(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
