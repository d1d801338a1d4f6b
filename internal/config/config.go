package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL    string
	MigrationsPath string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// API tokens: "token:workspaceID" pairs, comma-separated
	APITokens map[string]int32

	// Rate limiting
	RateLimitPerMinute int
	RateLimitBurst     int

	// Recurring-transaction generation worker
	GenerationInterval      time.Duration
	GenerationLookaheadDays int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	tokens, err := parseAPITokens(getEnv("API_TOKENS", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		MigrationsPath:          getEnv("MIGRATIONS_PATH", "db/migrations"),
		Port:                    getEnv("PORT", "8080"),
		CORSOrigins:             strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:                     getEnv("ENV", "development"),
		APITokens:               tokens,
		RateLimitPerMinute:      getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		RateLimitBurst:          getEnvInt("RATE_LIMIT_BURST", 10),
		GenerationInterval:      getEnvDuration("GENERATION_INTERVAL", 1*time.Hour),
		GenerationLookaheadDays: getEnvInt("GENERATION_LOOKAHEAD_DAYS", 90),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if len(c.APITokens) == 0 {
		return fmt.Errorf("API_TOKENS is required")
	}
	return nil
}

// parseAPITokens parses "token:workspaceID" pairs separated by commas.
func parseAPITokens(raw string) (map[string]int32, error) {
	tokens := make(map[string]int32)
	if raw == "" {
		return tokens, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid API_TOKENS entry %q, want token:workspaceID", pair)
		}
		workspaceID, err := strconv.ParseInt(parts[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid workspace id in API_TOKENS entry %q", pair)
		}
		tokens[parts[0]] = int32(workspaceID)
	}
	return tokens, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
