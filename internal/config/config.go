// Package config provides configuration management for the EcoDrive service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Notify   NotifyConfig
	Pipeline PipelineConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
}

// AuthConfig holds device-authentication configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration

	// DeviceKeyHash is the bcrypt hash of the pre-shared device pairing
	// key. Pairing is disabled when empty.
	DeviceKeyHash string
}

// NotifyConfig holds advisory alert delivery configuration
type NotifyConfig struct {
	// WebhookURL receives fired alerts as JSON; alerts are only logged
	// when empty
	WebhookURL string
}

// PipelineConfig holds the tunable thresholds of the scoring pipeline
type PipelineConfig struct {
	// MaxAccuracyM is the worst usable location fix accuracy in meters
	MaxAccuracyM float64

	// MinFixInterval is the minimum time between two fixes used for a
	// speed calculation
	MinFixInterval time.Duration

	// StationaryThresholdKmh is the speed below which the vehicle is
	// considered stationary
	StationaryThresholdKmh float64

	// StreakThreshold is the consecutive aggressive count that fires an alert
	StreakThreshold int

	// MotionCap bounds the motion history kept per session
	MotionCap int

	// ModelPath points to a JSON classifier model file; the built-in
	// model is used when empty
	ModelPath string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                   string
	Host                  string
	Port                  string
	Name                  string
	User                  string
	Password              string
	SSLMode               string
	MaxConnections        int
	MaxIdleConnections    int
	ConnectionMaxLifetime time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL:                   os.Getenv("DATABASE_URL"),
			Host:                  getEnv("DB_HOST", "localhost"),
			Port:                  getEnv("DB_PORT", "5432"),
			Name:                  getEnv("DB_NAME", "ecodrive_dev"),
			User:                  getEnv("DB_USER", "ecodrive_user"),
			Password:              getEnv("DB_PASSWORD", "ecodrive_pass"),
			SSLMode:               getEnv("DB_SSLMODE", "disable"),
			MaxConnections:        getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleConnections:    getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
			ConnectionMaxLifetime: getEnvAsDuration("DB_CONNECTION_MAX_LIFETIME", "5m"),
		},
		Auth: AuthConfig{
			JWTSecret:     GetSecret("JWT_SECRET", "dev-secret-key-change-in-production"),
			TokenTTL:      getEnvAsDuration("JWT_TOKEN_TTL", "24h"),
			DeviceKeyHash: GetSecret("DEVICE_KEY_HASH", ""),
		},
		Notify: NotifyConfig{
			WebhookURL: getEnv("ALERT_WEBHOOK_URL", ""),
		},
		Pipeline: PipelineConfig{
			MaxAccuracyM:           getEnvAsFloat("PIPELINE_MAX_ACCURACY_M", 10),
			MinFixInterval:         getEnvAsDuration("PIPELINE_MIN_FIX_INTERVAL", "200ms"),
			StationaryThresholdKmh: getEnvAsFloat("PIPELINE_STATIONARY_KMH", 3),
			StreakThreshold:        getEnvAsInt("PIPELINE_STREAK_THRESHOLD", 5),
			MotionCap:              getEnvAsInt("PIPELINE_MOTION_CAP", 1000),
			ModelPath:              getEnv("MODEL_PATH", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.Pipeline.StreakThreshold <= 0 {
		return errors.New("PIPELINE_STREAK_THRESHOLD must be positive")
	}
	if c.Pipeline.MotionCap <= 0 {
		return errors.New("PIPELINE_MOTION_CAP must be positive")
	}
	if c.Pipeline.MaxAccuracyM <= 0 {
		return errors.New("PIPELINE_MAX_ACCURACY_M must be positive")
	}
	return nil
}

// ConnectionString returns the database connection string
func (d *DatabaseConfig) ConnectionString() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
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

// getEnvAsFloat gets an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		defaultDuration, _ := time.ParseDuration(defaultValue)
		return defaultDuration
	}
	return value
}
