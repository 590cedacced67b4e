package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-bot/internal/auth"
)

// AuthHandler issues API tokens to the messaging gateway.
type AuthHandler struct {
	gatewaySecret string
}

func NewAuthHandler(gatewaySecret string) *AuthHandler {
	return &AuthHandler{gatewaySecret: gatewaySecret}
}

// IssueToken exchanges the shared gateway secret for a short-lived JWT bound
// to the platform user the gateway is acting for.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req struct {
		UserID int64  `json:"user_id" binding:"required"`
		Secret string `json:"secret" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.gatewaySecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid gateway secret"})
		return
	}

	token, err := auth.GenerateToken(req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"token": token},
	})
}
