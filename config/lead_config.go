package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// generateWatcherID creates a unique watcher consumer ID using hostname and PID
func generateWatcherID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "leadserver"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

type Config struct {
	Port        string
	Environment string

	// Database
	MongoDBURL  string
	MongoDBName string
	RedisURL    string

	// Admin API auth
	AdminJWTSecret string

	// Lead alerting
	AlertWebhookURL  string
	AlertMinPriority string

	// Watcher (change feed polling)
	WatcherID           string
	WatcherPollInterval time.Duration
	WatcherWindow       time.Duration

	// Consumer (Redis Stream)
	ConsumerBatchSize  int
	ConsumerBlockMS    int
	ConsumerMaxRetries int

	// Public submit rate limit
	SubmitRateLimit  int
	SubmitRateWindow time.Duration

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		// Database
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "leadserver"),
		RedisURL:    getEnv("REDIS_URL", ""),

		// Admin API auth
		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		// Lead alerting
		AlertWebhookURL:  getEnv("LEAD_ALERT_WEBHOOK_URL", ""),
		AlertMinPriority: getEnv("LEAD_ALERT_MIN_PRIORITY", "warm"),

		// Watcher
		WatcherID:           getEnv("WATCHER_ID", generateWatcherID()),
		WatcherPollInterval: time.Duration(getEnvInt("WATCHER_POLL_INTERVAL_MS", 250)) * time.Millisecond,
		WatcherWindow:       time.Duration(getEnvInt("WATCHER_WINDOW_MS", 5000)) * time.Millisecond,

		// Consumer
		ConsumerBatchSize:  getEnvInt("CONSUMER_BATCH_SIZE", 10),
		ConsumerBlockMS:    getEnvInt("CONSUMER_BLOCK_MS", 5000),
		ConsumerMaxRetries: getEnvInt("CONSUMER_MAX_RETRIES", 3),

		// Public submit rate limit
		SubmitRateLimit:  getEnvInt("SUBMIT_RATE_LIMIT", 30),
		SubmitRateWindow: time.Duration(getEnvInt("SUBMIT_RATE_WINDOW_SEC", 60)) * time.Second,

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}

	if cfg.MongoDBURL == "" {
		return nil, fmt.Errorf("MONGODB_URL is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
