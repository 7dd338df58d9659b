package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"referral-miniapp-backend/internal/config"
	"referral-miniapp-backend/internal/middleware"
	"referral-miniapp-backend/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAdminAuthMiddleware(t *testing.T) {
	jwtService := services.NewJWTService(&config.Config{JWTSecret: "secret", JWTExpiry: time.Hour})

	router := gin.New()
	router.GET("/admin", middleware.AdminAuthMiddleware(jwtService, []int64{1}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"admin_id": c.GetInt64("admin_id")})
	})

	adminToken, _ := jwtService.GenerateToken(1)
	otherToken, _ := jwtService.GenerateToken(2)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + adminToken, want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "not in allow-list", header: "Bearer " + otherToken, want: http.StatusForbidden},
		{name: "admin", header: "Bearer " + adminToken, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("Expected status %d, got %d (%s)", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	redisService := services.NewRedisServiceFromClient(client)

	router := gin.New()
	router.GET("/limited", middleware.RateLimitMiddleware(redisService, "test", 2, time.Minute, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("Unexpected status sequence: %v", codes)
	}

	mr.Close()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Limiter should fail open when Redis is down, got %d", w.Code)
	}
}
