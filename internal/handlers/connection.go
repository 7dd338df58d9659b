package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-miniapp-backend/internal/models"
	"referral-miniapp-backend/internal/services"
)

type ConnectionHandler struct {
	registry    *services.ConnectionRegistry
	broadcaster services.Broadcaster
}

func NewConnectionHandler(registry *services.ConnectionRegistry, broadcaster services.Broadcaster) *ConnectionHandler {
	return &ConnectionHandler{
		registry:    registry,
		broadcaster: broadcaster,
	}
}

func (h *ConnectionHandler) Connect(c *gin.Context) {
	var req models.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	connectionID := h.registry.Register(models.ConnectionMeta{
		UserAgent:       req.UserAgent,
		FrontendVersion: req.FrontendVersion,
		UserData:        req.UserData,
		IP:              c.ClientIP(),
		Origin:          c.GetHeader("Origin"),
	})

	if h.broadcaster != nil {
		h.broadcaster.BroadcastConnectionStats(h.registry.Stats())
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"connectionId": connectionID,
	})
}
