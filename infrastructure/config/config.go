package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	WeekIndexName string // GSI1 - week-bucket track lookups
	IDIndexName   string // GSI2 - direct lookups by entity ID
	EventBusName  string

	// Object storage (S3 / R2-compatible)
	StorageBucket    string
	StorageEndpoint  string // non-empty for R2-compatible endpoints
	StoragePublicURL string // public base URL for uploaded objects

	// Narrative generator service
	GeneratorBaseURL string
	GeneratorTimeout time.Duration

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", "morytale"),
		WeekIndexName: getEnv("WEEK_INDEX_NAME", "WeekIndex"),
		IDIndexName:   getEnv("ID_INDEX_NAME", "EntityIndex"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "morytale-events"),

		// Object storage
		StorageBucket:    getEnv("STORAGE_BUCKET", "the-cutting-room"),
		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", ""),
		StoragePublicURL: getEnv("STORAGE_PUBLIC_URL", ""),

		// Generator service
		GeneratorBaseURL: getEnv("MODEL_API_URL", "http://localhost:8000"),
		GeneratorTimeout: getEnvDuration("MODEL_API_TIMEOUT", 30*time.Second),

		// Authentication
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "morytale-api"),

		// Logging and features
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
		if c.StorageBucket == "" {
			return fmt.Errorf("STORAGE_BUCKET is required")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvDuration gets a duration environment variable (in seconds) with a
// default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
