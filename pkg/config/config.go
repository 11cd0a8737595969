package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database      DatabaseConfig
	Extraction    ExtractionConfig
	Registry      RegistryConfig
	Anonymize     AnonymizeConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ExtractionConfig bounds the PDF extraction stage.
type ExtractionConfig struct {
	// MaxPages caps how many pages of a long document are processed.
	MaxPages int
	// BatchWidth is the number of pages extracted concurrently.
	BatchWidth int
}

// RegistryConfig tunes the bank profile registry.
type RegistryConfig struct {
	CacheTTL        time.Duration
	SearchLimit     int
	RefreshSchedule string // cron expression for the cache warm job
}

type AnonymizeConfig struct {
	Enabled bool
}

// StorageConfig locates the source-document store.
type StorageConfig struct {
	LocalPath string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "statementdesk-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Extraction: ExtractionConfig{
			MaxPages:   getEnvAsInt("EXTRACTION_MAX_PAGES", 100),
			BatchWidth: getEnvAsInt("EXTRACTION_BATCH_WIDTH", 5),
		},
		Registry: RegistryConfig{
			CacheTTL:        getEnvAsDuration("REGISTRY_CACHE_TTL", 5*time.Minute),
			SearchLimit:     getEnvAsInt("REGISTRY_SEARCH_LIMIT", 20),
			RefreshSchedule: getEnv("REGISTRY_REFRESH_SCHEDULE", "*/5 * * * *"),
		},
		Anonymize: AnonymizeConfig{
			Enabled: getEnvAsBool("ANONYMIZE_ENABLED", true),
		},
		Storage: StorageConfig{
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
