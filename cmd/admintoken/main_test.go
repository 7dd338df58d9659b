package main

import (
	"bytes"
	"strings"
	"testing"

	"referral-miniapp-backend/internal/config"
	"referral-miniapp-backend/internal/services"
)

func runAdminToken(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestAdminTokenMintsValidToken(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("ADMIN_USER_IDS", "7,8")

	token, err := runAdminToken(t, "--admin", "8")
	if err != nil {
		t.Fatalf("Failed to mint token: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	claims, err := services.NewJWTService(cfg).ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate minted token: %v", err)
	}
	if claims.AdminID != 8 {
		t.Errorf("Expected admin id 8, got %d", claims.AdminID)
	}
}

func TestAdminTokenRejectsUnknownAdmin(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("ADMIN_USER_IDS", "7")

	if _, err := runAdminToken(t, "--admin", "99"); err == nil {
		t.Error("Expected error for id outside ADMIN_USER_IDS")
	}
}

func TestAdminTokenRequiresAdminFlag(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "cli-secret")

	if _, err := runAdminToken(t); err == nil {
		t.Error("Expected error without --admin")
	}
}
