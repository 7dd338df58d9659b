package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LongPollTimeout is how long a getUpdates call waits on the server side.
const LongPollTimeout = 10 * time.Second

type Config struct {
	Port     string
	Env      string
	LogLevel string

	BotToken        string
	TelegramTimeout time.Duration
	AdminUserIDs    []int64

	RedisURL  string
	RedisPass string
	RedisDB   int

	FrontendURL    string
	AllowedOrigins []string

	JWTSecret string
	JWTExpiry time.Duration

	ConnectionCapacity int
	ConnectionWindow   time.Duration

	MembershipRateLimit int
	RateLimitWindow     time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "3001"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BotToken:        getEnv("BOT_TOKEN", ""),
		TelegramTimeout: getEnvAsDuration("TELEGRAM_TIMEOUT", 15*time.Second),

		RedisURL:  getEnv("REDIS_URL", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASSWORD", ""),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),

		ConnectionCapacity: getEnvAsInt("CONNECTION_CAPACITY", 1000),
		ConnectionWindow:   getEnvAsDuration("CONNECTION_WINDOW", 5*time.Minute),

		MembershipRateLimit: getEnvAsInt("RATE_LIMIT_MEMBERSHIP", 30),
		RateLimitWindow:     getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	cfg.AdminUserIDs, err = parseIDList(getEnv("ADMIN_USER_IDS", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_USER_IDS: %w", err)
	}

	cfg.AllowedOrigins = getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{cfg.FrontendURL, "http://localhost:5173"})

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		if len(cfg.AdminUserIDs) > 0 {
			return nil, fmt.Errorf("JWT_SECRET is required when ADMIN_USER_IDS is set")
		}
		// No admin can be authorized, so the admin API rejects every token.
		cfg.JWTSecret = "development-secret"
	}

	if cfg.TelegramTimeout <= LongPollTimeout {
		return nil, fmt.Errorf("TELEGRAM_TIMEOUT must be longer than the %v long-poll timeout, got %v", LongPollTimeout, cfg.TelegramTimeout)
	}

	if cfg.ConnectionCapacity <= 0 {
		return nil, fmt.Errorf("CONNECTION_CAPACITY must be positive, got %d", cfg.ConnectionCapacity)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) BotConfigured() bool {
	return c.BotToken != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strVal := getEnv(key, "")
	if val, err := strconv.Atoi(strVal); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strVal := getEnv(key, "")
	if val, err := time.ParseDuration(strVal); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	val := getEnv(key, "")
	if val == "" {
		return defaultValue
	}
	parts := strings.Split(val, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a numeric user id", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
