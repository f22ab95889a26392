// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	// StageTimeout bounds every stage executor call; a timeout is treated
	// as a stage failure and the chain continues.
	StageTimeout time.Duration

	// Availability collaborator. When URL is empty the in-process static
	// slot table is used instead.
	AvailabilityURL     string
	AvailabilityAPIKey  string
	AvailabilityTimeout time.Duration

	// Reasoning collaborator (optional). Empty key disables it and the
	// orchestrator falls back to the rule-based planner alone.
	MoonshotAPIKey string
	MoonshotModel  string

	// RedisURL enables the Redis-backed session store and the session
	// expiry scheduler. Empty means in-memory sessions for process lifetime.
	RedisURL   string
	SessionTTL time.Duration

	// PricingCatalogPath optionally overrides the built-in pricing catalog
	// with a YAML file.
	PricingCatalogPath string

	MaxMessageLen  int
	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		CORSAllowCreds:      strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		StageTimeout:        mustDuration(getEnv("STAGE_TIMEOUT", "10s")),
		AvailabilityURL:     getEnv("AVAILABILITY_API_URL", ""),
		AvailabilityAPIKey:  getEnv("AVAILABILITY_API_KEY", ""),
		AvailabilityTimeout: mustDuration(getEnv("AVAILABILITY_TIMEOUT", "5s")),
		MoonshotAPIKey:      getEnv("MOONSHOT_API_KEY", ""),
		MoonshotModel:       getEnv("MOONSHOT_MODEL", "kimi-k2.5"),
		RedisURL:            getEnv("REDIS_URL", ""),
		SessionTTL:          mustDuration(getEnv("SESSION_TTL", "24h")),
		PricingCatalogPath:  getEnv("PRICING_CATALOG_PATH", ""),
		MaxMessageLen:       mustInt(getEnv("MAX_MESSAGE_LEN", "2000")),
		RateLimitRPS:        mustFloat(getEnv("RATE_LIMIT_RPS", "20")),
		RateLimitBurst:      mustInt(getEnv("RATE_LIMIT_BURST", "40")),
	}

	if cfg.StageTimeout <= 0 {
		return nil, fmt.Errorf("STAGE_TIMEOUT must be positive")
	}
	if cfg.AvailabilityURL != "" && cfg.AvailabilityAPIKey == "" {
		return nil, fmt.Errorf("AVAILABILITY_API_KEY is required when AVAILABILITY_API_URL is set")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// ReasoningEnabled reports whether the optional reasoning collaborator is configured.
func (c *Config) ReasoningEnabled() bool {
	return c.MoonshotAPIKey != ""
}

// RedisEnabled reports whether Redis-backed sessions and expiry scheduling are configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Sprintf("invalid duration %q: %v", s, err))
	}
	return d
}

func mustInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic(fmt.Sprintf("invalid integer %q: %v", s, err))
	}
	return n
}

func mustFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		panic(fmt.Sprintf("invalid number %q: %v", s, err))
	}
	return f
}
