// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"go-ombor/pkg/kvstore"
)

type Config struct {
	Port       string
	Store      kvstore.Options
	JWTSecret  string
	SessionTTL time.Duration
	GRPCPort   string
	LogFile    string
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load builds a Config from the environment. Call godotenv.Load first to pick up a .env file.
func Load() (*Config, error) {
	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", ttl)
	}
	cfg := &Config{
		Port: getEnv("PORT", "3000"),
		Store: kvstore.Options{
			Driver:      getEnv("STORE_DRIVER", "sqlite"),
			DSN:         getEnv("STORE_DSN", "ombor.db"),
			RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPrefix: getEnv("REDIS_PREFIX", "ombor:"),
		},
		JWTSecret:  os.Getenv("JWT_SECRET"),
		SessionTTL: ttl,
		GRPCPort:   os.Getenv("GRPC_PORT"),
		LogFile:    os.Getenv("LOG_FILE"),
	}
	return cfg, nil
}
