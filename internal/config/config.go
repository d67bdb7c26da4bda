package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	BotToken    string
	RedisURL    string
	HTTPAddr    string
	FrontendURL string
	WebsiteURL  string
	WebhookURL  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		FrontendURL: getEnv("FRONTEND_URL", "https://example.github.io"),
		WebsiteURL:  getEnv("WEBSITE_URL", "https://example.com"),
		WebhookURL:  os.Getenv("WEBHOOK_URL"),
	}

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
