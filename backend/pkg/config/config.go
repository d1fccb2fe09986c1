package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	apperrors "lakemap/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port     string
	Env      string
	LogLevel string // empty keeps the per-environment default

	// Neo4j
	Neo4jURI            string
	Neo4jUser           string
	Neo4jPassword       string
	Neo4jDatabase       string // empty selects the server default database
	Neo4jMaxPoolSize    int
	Neo4jTimeoutSeconds int

	// HTTP
	CORSOrigins    []string
	ImportMaxBytes int64

	// Observability
	TracingEnabled bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", ""),
		Neo4jURI:            getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:           getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:       getEnv("NEO4J_PASSWORD", "password"),
		Neo4jDatabase:       getEnv("NEO4J_DATABASE", ""),
		Neo4jMaxPoolSize:    getEnvInt("NEO4J_MAX_POOL_SIZE", 50),
		Neo4jTimeoutSeconds: getEnvInt("NEO4J_TIMEOUT_SECONDS", 10),
		CORSOrigins:         getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		ImportMaxBytes:      int64(getEnvInt("IMPORT_MAX_BYTES", 32<<20)),
		TracingEnabled:      getEnvBool("TRACING_ENABLED", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_URI")
	}
	if c.Neo4jUser == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_USER")
	}
	if c.Neo4jPassword == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
	}
	if c.Neo4jMaxPoolSize <= 0 {
		return apperrors.NewConfigValidationFailed("NEO4J_MAX_POOL_SIZE", "must be positive")
	}
	if c.Neo4jTimeoutSeconds <= 0 {
		return apperrors.NewConfigValidationFailed("NEO4J_TIMEOUT_SECONDS", "must be positive")
	}
	if c.Port == "" {
		return apperrors.NewConfigMissingRequired("PORT")
	}
	if c.ImportMaxBytes <= 0 {
		return apperrors.NewConfigValidationFailed("IMPORT_MAX_BYTES", "must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
