package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// config holds the process's runtime settings, loaded from the environment
// (optionally via a .env file).
type config struct {
	DBPath           string
	Port             int
	LogLevel         string
	AllowedOrigins   []string
	RecomputeCron    string // cron expression for the drift-summary recompute job
}

// loadConfig loads a .env file if present, then reads environment variables
// with sensible defaults.
func loadConfig() (config, error) {
	_ = godotenv.Load()

	cfg := config{
		DBPath:         getEnv("REBALANCER_DB_PATH", "rebalancer.db"),
		Port:           getEnvAsInt("REBALANCER_PORT", 8080),
		LogLevel:       getEnv("REBALANCER_LOG_LEVEL", "info"),
		AllowedOrigins: []string{getEnv("REBALANCER_ALLOWED_ORIGIN", "*")},
		RecomputeCron:  getEnv("REBALANCER_RECOMPUTE_CRON", "@every 1h"),
	}
	if cfg.Port <= 0 {
		return config{}, fmt.Errorf("invalid REBALANCER_PORT: %d", cfg.Port)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
