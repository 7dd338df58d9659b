package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"referral-miniapp-backend/internal/services"
)

// AdminAuthMiddleware accepts a bearer token minted for one of adminIDs.
func AdminAuthMiddleware(jwtService *services.JWTService, adminIDs []int64) gin.HandlerFunc {
	allowed := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		allowed[id] = true
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid authorization format"})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid or expired token"})
			c.Abort()
			return
		}

		if !allowed[claims.AdminID] {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Not an administrator"})
			c.Abort()
			return
		}

		c.Set("admin_id", claims.AdminID)

		c.Next()
	}
}

// RateLimitMiddleware limits requests per client IP for one action.
func RateLimitMiddleware(redisService *services.RedisService, action string, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		allowed, err := redisService.CheckRateLimit(c.Request.Context(), c.ClientIP(), action, limit, window)
		if err != nil {
			// Fail open.
			logger.Warn("rate limit check failed", zap.String("action", action), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "Rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
