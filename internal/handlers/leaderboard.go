package handlers

import (
	"net/http"
	"strconv"

	"github.com/Juadebfm/ecorewards-deploy/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type LeaderboardHandler struct {
	leaderboard *service.LeaderboardService
	reconcile   *service.ReconcileService
	topLimit    int
}

func NewLeaderboardHandler(leaderboard *service.LeaderboardService, reconcile *service.ReconcileService, topLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard, reconcile: reconcile, topLimit: topLimit}
}

// Get returns the ranked leaderboard snapshot
func (h *LeaderboardHandler) Get(c *gin.Context) {
	limit := h.topLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= h.topLimit {
			limit = parsed
		}
	}

	resp, err := h.leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		logrus.WithError(err).Error("GetLeaderboard: Failed to query leaderboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query leaderboard"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Recompute triggers a full ranking recompute. Admin only.
func (h *LeaderboardHandler) Recompute(c *gin.Context) {
	if err := h.leaderboard.UpdateAllRankings(c.Request.Context()); err != nil {
		logrus.WithError(err).Error("RecomputeLeaderboard: Failed to update rankings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rankings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rankings updated"})
}

// Reconcile triggers a counter reconciliation pass. Admin only.
func (h *LeaderboardHandler) Reconcile(c *gin.Context) {
	report, err := h.reconcile.Run(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("Reconcile: Reconciliation pass failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reconciliation complete",
		"report":  report,
	})
}
