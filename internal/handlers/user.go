package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"referral-miniapp-backend/internal/models"
	"referral-miniapp-backend/internal/services"
)

type UserHandler struct {
	ledger *services.Ledger
}

func NewUserHandler(ledger *services.Ledger) *UserHandler {
	return &UserHandler{ledger: ledger}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	user, err := h.ledger.GetUser(c.Request.Context(), userID)
	if errors.Is(err, services.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *UserHandler) GetReferrals(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	stats, err := h.ledger.GetReferralStats(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load referral stats"})
		return
	}

	referred, err := h.ledger.ListReferredUsers(c.Request.Context(), userID, limit)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load referred users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"stats":         stats,
		"referredUsers": referred,
	})
}

func userIDParam(c *gin.Context) (string, bool) {
	id, err := models.ParseUserID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user id"})
		return "", false
	}
	return models.FormatUserID(id), true
}
