package config_test

import (
	"testing"
	"time"

	"referral-miniapp-backend/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "APP_ENV", "BOT_TOKEN", "REDIS_DB", "ADMIN_USER_IDS",
		"JWT_SECRET", "CONNECTION_CAPACITY", "CONNECTION_WINDOW", "TELEGRAM_TIMEOUT",
		"CORS_ALLOWED_ORIGINS", "FRONTEND_URL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Port != "3001" {
		t.Errorf("Expected default port 3001, got %s", cfg.Port)
	}
	if cfg.TelegramTimeout != 15*time.Second {
		t.Errorf("Expected telegram timeout 15s, got %v", cfg.TelegramTimeout)
	}
	if cfg.ConnectionCapacity != 1000 {
		t.Errorf("Expected capacity 1000, got %d", cfg.ConnectionCapacity)
	}
	if cfg.ConnectionWindow != 5*time.Minute {
		t.Errorf("Expected window 5m, got %v", cfg.ConnectionWindow)
	}
	if cfg.BotConfigured() {
		t.Error("Bot should not be configured without BOT_TOKEN")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("Unexpected default origins: %v", cfg.AllowedOrigins)
	}
}

func TestLoadAdminIDs(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []int64
		wantErr bool
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single", raw: "42", want: []int64{42}},
		{name: "spaces and blanks", raw: " 1, 2 ,,3", want: []int64{1, 2, 3}},
		{name: "not numeric", raw: "1,admin", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ADMIN_USER_IDS", tt.raw)
			t.Setenv("APP_ENV", "")
			t.Setenv("JWT_SECRET", "test-secret")

			cfg, err := config.Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(cfg.AdminUserIDs) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, cfg.AdminUserIDs)
			}
			for i := range tt.want {
				if cfg.AdminUserIDs[i] != tt.want[i] {
					t.Errorf("Expected %v, got %v", tt.want, cfg.AdminUserIDs)
				}
			}
		})
	}
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_USER_IDS", "")

	if _, err := config.Load(); err == nil {
		t.Error("Expected error when JWT_SECRET is missing in production")
	}
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "one")
	t.Setenv("ADMIN_USER_IDS", "")

	if _, err := config.Load(); err == nil {
		t.Error("Expected error for non-numeric REDIS_DB")
	}
}

func TestLoadRequiresSecretWithAdmins(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		admins  string
		secret  string
		wantErr bool
	}{
		{name: "admins without secret", env: "", admins: "42", secret: "", wantErr: true},
		{name: "development admins without secret", env: "development", admins: "42", secret: "", wantErr: true},
		{name: "admins with secret", env: "", admins: "42", secret: "s3cret", wantErr: false},
		{name: "no admins without secret", env: "", admins: "", secret: "", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.env)
			t.Setenv("ADMIN_USER_IDS", tt.admins)
			t.Setenv("JWT_SECRET", tt.secret)

			cfg, err := config.Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(cfg.AdminUserIDs) > 0 && cfg.JWTSecret != tt.secret {
				t.Errorf("Expected configured secret %q, got %q", tt.secret, cfg.JWTSecret)
			}
		})
	}
}

func TestLoadTelegramTimeoutExceedsLongPoll(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{raw: "5s", wantErr: true},
		{raw: "10s", wantErr: true},
		{raw: "11s", wantErr: false},
		{raw: "30s", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("TELEGRAM_TIMEOUT", tt.raw)
			t.Setenv("ADMIN_USER_IDS", "")
			t.Setenv("APP_ENV", "")

			if _, err := config.Load(); (err != nil) != tt.wantErr {
				t.Errorf("Load() with TELEGRAM_TIMEOUT=%s error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}
