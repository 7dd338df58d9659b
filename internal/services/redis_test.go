package services_test

import (
	"context"
	"testing"

	"referral-miniapp-backend/internal/config"
	"referral-miniapp-backend/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*services.RedisService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	redisService := services.NewRedisServiceFromClient(client)
	t.Cleanup(func() { redisService.Close() })

	return redisService, mr
}

func TestRedisService(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{
		RedisURL:  mr.Addr(),
		RedisPass: "",
		RedisDB:   0,
	}

	redisService, err := services.NewRedisService(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisService.Close()

	if err := redisService.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	mr.Close()

	if err := redisService.Ping(context.Background()); err == nil {
		t.Error("Ping should fail once Redis is gone")
	}
}

func TestNewRedisServiceUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &config.Config{RedisURL: addr}
	if _, err := services.NewRedisService(context.Background(), cfg); err == nil {
		t.Error("Expected connection error for closed Redis")
	}
}
