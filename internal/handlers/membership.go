package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-miniapp-backend/internal/models"
	"referral-miniapp-backend/internal/services"
)

type MembershipHandler struct {
	prober   *services.MembershipProber
	registry *services.ConnectionRegistry
}

func NewMembershipHandler(prober *services.MembershipProber, registry *services.ConnectionRegistry) *MembershipHandler {
	return &MembershipHandler{
		prober:   prober,
		registry: registry,
	}
}

func (h *MembershipHandler) CheckMembership(c *gin.Context) {
	var req models.MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if req.UserID.String() == "" || services.CleanChannel(req.Channel) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing userId or channel"})
		return
	}

	userID, err := models.ParseUserID(req.UserID.String())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid userId"})
		return
	}

	if req.ConnectionID != "" {
		h.registry.Touch(req.ConnectionID)
	}

	result, err := h.prober.Check(c.Request.Context(), userID, req.Channel)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, services.ErrBotNotConfigured) {
			code = http.StatusServiceUnavailable
		}
		c.Error(err)
		c.JSON(code, gin.H{
			"success":  false,
			"isMember": false,
			"error":    err.Error(),
			"reason":   services.MembershipErrorReason(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"isMember": result.IsMember,
		"status":   result.Status,
		"chatId":   result.ChatID,
	})
}
