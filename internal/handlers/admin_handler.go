package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"referral-bot/internal/services"
)

// AdminHandler serves the admin control surface. Every endpoint maps 1:1 to
// a core operation; access is gated by the admin middleware.
type AdminHandler struct {
	users    *services.UserService
	refs     *services.ReferralService
	ranking  *services.RankingService
	settings *services.SettingsService
	stats    *services.StatsService

	defaultTarget int
}

func NewAdminHandler(db *gorm.DB, stats *services.StatsService, defaultTarget int) *AdminHandler {
	return &AdminHandler{
		users:         services.NewUserService(db),
		refs:          services.NewReferralService(db),
		ranking:       services.NewRankingService(db),
		settings:      services.NewSettingsService(db),
		stats:         stats,
		defaultTarget: defaultTarget,
	}
}

// GetReport returns the aggregate report.
func (h *AdminHandler) GetReport(c *gin.Context) {
	report, err := h.stats.BuildReport()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// GetNearGoal lists non-banned referrers sitting one short of the current
// target.
func (h *AdminHandler) GetNearGoal(c *gin.Context) {
	target := h.settings.Target(h.defaultTarget)

	rows, err := h.ranking.NearGoal(target-1, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list near-goal users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"target": target,
			"users":  rows,
		},
	})
}

// SetTarget updates the invite target. Bounds are checked before any write.
func (h *AdminHandler) SetTarget(c *gin.Context) {
	var req struct {
		Target int `json:"target" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target must be a number, e.g. {\"target\": 5}"})
		return
	}

	if req.Target < 1 || req.Target > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target must be between 1 and 1000"})
		return
	}

	if err := h.settings.SetTarget(req.Target); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update target"})
		return
	}

	log.Printf("Invite target updated to %d", req.Target)
	c.JSON(http.StatusOK, gin.H{"success": true, "target": req.Target})
}

// ResetUser wipes one user's progress: their credited referrals and flags.
// Referrals where they are the invited party are untouched.
func (h *AdminHandler) ResetUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User id must be numeric"})
		return
	}

	if err := h.refs.ResetUser(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset user"})
		return
	}

	log.Printf("Progress reset for user %d", userID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// WipeAll clears every referral and every flag. Users and settings survive.
func (h *AdminHandler) WipeAll(c *gin.Context) {
	if err := h.refs.WipeAll(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to wipe referrals"})
		return
	}

	log.Println("All referrals and flags wiped")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// BanUser excludes a user from the bot.
func (h *AdminHandler) BanUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User id must be numeric"})
		return
	}

	if err := h.users.Ban(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ban user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UnbanUser lifts a ban.
func (h *AdminHandler) UnbanUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User id must be numeric"})
		return
	}

	if err := h.users.Unban(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unban user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
