package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"referral-miniapp-backend/internal/models"
	"referral-miniapp-backend/internal/services"
)

type AdminHandler struct {
	ledger *services.Ledger
	logger *zap.Logger
}

func NewAdminHandler(ledger *services.Ledger, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{ledger: ledger, logger: logger}
}

// CreditReferral is the HTTP counterpart of the /addreferral bot command.
func (h *AdminHandler) CreditReferral(c *gin.Context) {
	var req models.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	userID, err := models.ParseUserID(req.UserID.String())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid userId"})
		return
	}

	total, err := h.ledger.CreditReferralEarnings(c.Request.Context(), models.FormatUserID(userID), req.Amount)
	if errors.Is(err, services.ErrInvalidAmount) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to credit referral earnings"})
		return
	}

	h.logger.Info("referral earnings credited",
		zap.Int64("admin_id", c.GetInt64("admin_id")),
		zap.Int64("user_id", userID),
		zap.Float64("amount", req.Amount),
		zap.Float64("total", total))

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"userId":           models.FormatUserID(userID),
		"amount":           req.Amount,
		"referralEarnings": total,
	})
}
