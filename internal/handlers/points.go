package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Juadebfm/ecorewards-deploy/internal/middleware"
	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/Juadebfm/ecorewards-deploy/internal/repository"
	"github.com/Juadebfm/ecorewards-deploy/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PointsHandler struct {
	users  *repository.UserRepository
	claims *repository.ClaimRepository
	points *service.PointsService
}

func NewPointsHandler(users *repository.UserRepository, claims *repository.ClaimRepository, points *service.PointsService) *PointsHandler {
	return &PointsHandler{users: users, claims: claims, points: points}
}

// GetUserPoints returns a user's current point balance and eco level
func (h *PointsHandler) GetUserPoints(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logrus.WithError(err).Error("GetUserPoints: Failed to query user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":       user.ID,
		"name":          user.Name,
		"points":        user.Points,
		"eco_level":     user.EcoLevel,
		"referral_code": user.ReferralCode,
	})
}

// GetUserClaims returns a user's claim history, reversed claims included
func (h *PointsHandler) GetUserClaims(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	claims, err := h.claims.ClaimsByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		logrus.WithError(err).Error("GetUserClaims: Failed to query claims")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query claims"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"claims": claims,
		"count":  len(claims),
	})
}

// LogActivity credits a manually logged eco action to the caller
func (h *PointsHandler) LogActivity(c *gin.Context) {
	userID, ok := middleware.GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.LogActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	activity, user, err := h.points.LogActivity(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":       userID,
			"activity_type": req.ActivityType,
		}).WithError(err).Warn("LogActivity: Failed to log activity")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"activity": activity,
		"user":     user.Snapshot(activity.Points),
	})
}
