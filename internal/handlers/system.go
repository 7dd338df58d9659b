package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"referral-miniapp-backend/internal/services"
)

const recentConnectionsLimit = 10

type SystemHandler struct {
	registry      *services.ConnectionRegistry
	redisService  *services.RedisService
	botConfigured bool
}

func NewSystemHandler(registry *services.ConnectionRegistry, redisService *services.RedisService, botConfigured bool) *SystemHandler {
	return &SystemHandler{
		registry:      registry,
		redisService:  redisService,
		botConfigured: botConfigured,
	}
}

func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Backend Server running",
		"timestamp": time.Now().UTC(),
	})
}

func (h *SystemHandler) Test(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Server running"})
}

func (h *SystemHandler) Health(c *gin.Context) {
	stats := h.registry.Stats()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	status, code, redisStatus := "healthy", http.StatusOK, "ok"
	if err := h.redisService.Ping(c.Request.Context()); err != nil {
		status, code, redisStatus = "unhealthy", http.StatusServiceUnavailable, "unavailable"
		c.Error(err)
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"connections": gin.H{
			"total":  stats.Total,
			"active": stats.Active,
		},
		"memory": gin.H{
			"heapUsed": mem.HeapAlloc,
			"sys":      mem.Sys,
		},
		"redis":                   redisStatus,
		"telegram_bot_configured": h.botConfigured,
	})
}

func (h *SystemHandler) Connections(c *gin.Context) {
	stats := h.registry.Stats()
	recent := h.registry.Recent(recentConnectionsLimit)

	summaries := make([]gin.H, 0, len(recent))
	for _, conn := range recent {
		summaries = append(summaries, gin.H{
			"id":              conn.ID,
			"timestamp":       conn.Timestamp,
			"lastSeen":        conn.LastSeen,
			"userAgent":       conn.UserAgent,
			"frontendVersion": conn.FrontendVersion,
			"origin":          conn.Origin,
			"user":            conn.UserData.Identity(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"total":       stats.Total,
		"active":      stats.Active,
		"uniqueUsers": stats.UniqueUsers,
		"window":      h.registry.Window().String(),
		"connections": summaries,
	})
}
