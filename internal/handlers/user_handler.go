package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"referral-bot/internal/auth"
	"referral-bot/internal/services"
)

// UserHandler serves the per-user surface: registration, subscription
// confirmation and progress.
type UserHandler struct {
	signup  *services.SignupService
	ranking *services.RankingService
	refs    *services.ReferralService
	stats   *services.StatsService

	settings      *services.SettingsService
	botUsername   string
	defaultTarget int
}

func NewUserHandler(db *gorm.DB, signup *services.SignupService, stats *services.StatsService,
	botUsername string, defaultTarget int) *UserHandler {
	return &UserHandler{
		signup:        signup,
		ranking:       services.NewRankingService(db),
		refs:          services.NewReferralService(db),
		stats:         stats,
		settings:      services.NewSettingsService(db),
		botUsername:   botUsername,
		defaultTarget: defaultTarget,
	}
}

// Register records first contact, optionally with a referrer from the deep
// link. Safe to call again for a known user.
func (h *UserHandler) Register(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		ReferrerID *int64 `json:"referrer_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.signup.Register(userID, req.ReferrerID); err != nil {
		if errors.Is(err, services.ErrBanned) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are banned from using this bot"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ConfirmSubscription runs the subscription-confirmed flow; a fresh credit
// for the referrer happens only here.
func (h *UserHandler) ConfirmSubscription(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.signup.ConfirmSubscription(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrBanned) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are banned from using this bot"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GetProgress returns the caller's count, target, rank and today's count.
func (h *UserHandler) GetProgress(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	count, err := h.refs.Count(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get progress"})
		return
	}

	today, err := h.refs.CountSince(userID, h.stats.TodayStart())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get progress"})
		return
	}

	rank, err := h.ranking.Rank(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get rank"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"count":  count,
			"today":  today,
			"target": h.settings.Target(h.defaultTarget),
			"rank":   rank,
		},
	})
}

// GetReferralLink returns the caller's deep link.
func (h *UserHandler) GetReferralLink(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"link": fmt.Sprintf("https://t.me/%s?start=ref_%d", h.botUsername, userID),
		},
	})
}

// GetTop returns the public leaderboard.
func (h *UserHandler) GetTop(c *gin.Context) {
	top, err := h.ranking.Top(10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get leaderboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    top,
	})
}
