// Package config loads runtime configuration from environment variables,
// with optional .env support for local development.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything main needs to wire the service.
type Config struct {
	Port          string
	AdminToken    string
	StoreDriver   string // "memory" or "postgres"
	DatabaseURL   string
	SweepInterval time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:          getEnv("PORT", "8080"),
		AdminToken:    os.Getenv("ADMIN_TOKEN"),
		StoreDriver:   getEnv("STORE_DRIVER", "memory"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SweepInterval: getDuration("SWEEP_INTERVAL", time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
