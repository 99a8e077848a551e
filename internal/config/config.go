package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Email     EmailConfig
	Scheduler SchedulerConfig
	Artifacts ArtifactConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port string
}

// MongoDBConfig holds MongoDB connection details
type MongoDBConfig struct {
	URI        string
	Username   string
	Password   string
	Host       string
	Port       string
	Database   string
	AuthSource string // Database to authenticate against (default: admin)
}

// EmailConfig holds SendGrid email configuration
type EmailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// SchedulerConfig holds report poller configuration
type SchedulerConfig struct {
	IntervalMinutes int
	AutoStart       bool
}

// ArtifactConfig holds generated-file storage and cleanup configuration
type ArtifactConfig struct {
	Dir                 string
	BaseURL             string
	CleanupGraceMinutes int
	SweepIntervalHours  int
	MaxAgeDays          int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Host: getEnv("HOST", "0.0.0.0"),
			Port: getEnv("PORT", "8090"),
		},
		MongoDB: MongoDBConfig{
			URI:        getEnv("MONGODB_URI", ""),
			Username:   getEnv("MONGODB_USERNAME", ""),
			Password:   getEnv("MONGODB_PASSWORD", ""),
			Host:       getEnv("MONGODB_HOST", "localhost"),
			Port:       getEnv("MONGODB_PORT", "27017"),
			Database:   getEnv("MONGODB_DATABASE", "staffhub"),
			AuthSource: getEnv("MONGODB_AUTH_SOURCE", "admin"),
		},
		Email: EmailConfig{
			APIKey:    getEnv("SENDGRID_API_KEY", ""),
			FromEmail: getEnv("SENDGRID_FROM_EMAIL", "reports@staffhub.io"),
			FromName:  getEnv("SENDGRID_FROM_NAME", "StaffHub Reports"),
		},
		Scheduler: SchedulerConfig{
			IntervalMinutes: getEnvInt("SCHEDULER_INTERVAL_MINUTES", 5),
			AutoStart:       getEnvBool("SCHEDULER_AUTO_START", true),
		},
		Artifacts: ArtifactConfig{
			Dir:                 getEnv("ARTIFACT_DIR", "data/artifacts"),
			BaseURL:             getEnv("ARTIFACT_BASE_URL", ""),
			CleanupGraceMinutes: getEnvInt("ARTIFACT_CLEANUP_GRACE_MINUTES", 5),
			SweepIntervalHours:  getEnvInt("ARTIFACT_SWEEP_INTERVAL_HOURS", 24),
			MaxAgeDays:          getEnvInt("ARTIFACT_MAX_AGE_DAYS", 7),
		},
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateConfig validates that required configuration values are present
func ValidateConfig(config *Config) error {
	if config.MongoDB.URI == "" && config.MongoDB.Host == "" {
		return fmt.Errorf("MONGODB_URI or MONGODB_HOST is required")
	}
	if config.Scheduler.IntervalMinutes <= 0 {
		return fmt.Errorf("SCHEDULER_INTERVAL_MINUTES must be positive")
	}
	// SendGrid is optional: EMAIL delivery is disabled without an API key
	return nil
}

// Helper functions for environment variable access
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
