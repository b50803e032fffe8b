package handlers

import (
	"errors"
	"net/http"

	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/Juadebfm/ecorewards-deploy/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RewardHandler struct {
	rewards *repository.RewardRepository
}

func NewRewardHandler(rewards *repository.RewardRepository) *RewardHandler {
	return &RewardHandler{rewards: rewards}
}

// Create registers a reward campaign
func (h *RewardHandler) Create(c *gin.Context) {
	var req models.CreateRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	reward := &models.Reward{
		PartnerID:        req.PartnerID,
		Title:            req.Title,
		Description:      req.Description,
		Points:           req.Points,
		MaxClaimsPerUser: req.MaxClaimsPerUser,
		TotalMaxClaims:   req.TotalMaxClaims,
		ExpiryDate:       req.ExpiryDate,
	}

	if err := h.rewards.Create(c.Request.Context(), reward); err != nil {
		logrus.WithError(err).Error("CreateReward: Failed to create reward")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reward"})
		return
	}

	c.JSON(http.StatusCreated, reward)
}

type SetRewardActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive toggles whether a reward accepts claims
func (h *RewardHandler) SetActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reward ID format"})
		return
	}

	var req SetRewardActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if err := h.rewards.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		if errors.Is(err, repository.ErrRewardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reward not found"})
			return
		}
		logrus.WithError(err).Error("SetRewardActive: Failed to update reward")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reward"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reward updated"})
}

// List returns rewards currently open for claiming
func (h *RewardHandler) List(c *gin.Context) {
	rewards, err := h.rewards.ListAvailable(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("ListRewards: Failed to query rewards")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query rewards"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rewards": rewards,
		"count":   len(rewards),
	})
}
