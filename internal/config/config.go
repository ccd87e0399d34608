package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// External operations databases (read-only)
	OPSDatabaseURL       string
	CNVDatabaseURL       string
	ExternalQueryTimeout time.Duration

	// Redis (prime snapshot cache)
	RedisAddr         string
	RedisPassword     string
	PrimeCacheTTL     time.Duration
	PrimeCacheRefresh time.Duration

	// Current tax rates, snapshotted onto each document at creation
	TauxTVA float64
	TauxCSS float64

	// JWT
	JWTSecret          string
	JWTExpirationHours int

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Sentry
	SentryDSN string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		OPSDatabaseURL:       getEnv("OPS_DATABASE_URL", ""),
		CNVDatabaseURL:       getEnv("CNV_DATABASE_URL", ""),
		ExternalQueryTimeout: getEnvAsDuration("EXTERNAL_QUERY_TIMEOUT", 3*time.Second),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		PrimeCacheTTL:        getEnvAsDuration("PRIME_CACHE_TTL", 24*time.Hour),
		PrimeCacheRefresh:    getEnvAsDuration("PRIME_CACHE_REFRESH", 10*time.Minute),
		TauxTVA:              getEnvAsFloat("TAUX_TVA", 18),
		TauxCSS:              getEnvAsFloat("TAUX_CSS", 1),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		JWTExpirationHours:   getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		WorkerCount:          getEnvAsInt("WORKER_COUNT", 5),
		AllowedOrigins:       getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		SentryDSN:            getEnv("SENTRY_DSN", ""),
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.TauxTVA < 0 || cfg.TauxCSS < 0 {
		return nil, fmt.Errorf("tax rates must be >= 0")
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat reads an environment variable as float
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration reads an environment variable as a Go duration string
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
