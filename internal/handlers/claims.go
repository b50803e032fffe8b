package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/Juadebfm/ecorewards-deploy/internal/middleware"
	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/Juadebfm/ecorewards-deploy/internal/repository"
	"github.com/Juadebfm/ecorewards-deploy/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ClaimHandler struct {
	claims *service.ClaimService
}

func NewClaimHandler(claims *service.ClaimService) *ClaimHandler {
	return &ClaimHandler{claims: claims}
}

// ClaimReward redeems the reward behind a QR code for the caller
func (h *ClaimHandler) ClaimReward(c *gin.Context) {
	userID, ok := middleware.GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	// Metadata is optional; an empty body is a valid claim
	var req models.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	ip := c.ClientIP()
	ua := c.Request.UserAgent()
	in := service.ClaimInput{
		UserID:       userID,
		Code:         c.Param("code"),
		Metadata:     req.Metadata,
		Verification: req.Verification,
	}
	if ip != "" {
		in.IPAddress = &ip
	}
	if ua != "" {
		in.UserAgent = &ua
	}

	resp, err := h.claims.ClaimReward(c.Request.Context(), in)
	if err != nil {
		h.writeClaimError(c, userID, in.Code, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ClaimHandler) writeClaimError(c *gin.Context, userID uuid.UUID, code string, err error) {
	log := logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"qr_code": code,
	})

	var unavailable *service.UnavailableError
	var duplicate *service.DuplicateClaimError
	var quota *service.QuotaExceededError

	switch {
	case errors.Is(err, repository.ErrQRCodeNotFound):
		log.Warn("ClaimReward: QR code not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
	case errors.As(err, &unavailable):
		log.WithField("reason", unavailable.Reason).Warn("ClaimReward: Reward unavailable")
		c.JSON(http.StatusBadRequest, gin.H{"error": unavailable.Reason})
	case errors.As(err, &duplicate):
		log.Warn("ClaimReward: Already claimed")
		payload := gin.H{"error": "Reward already claimed"}
		if duplicate.Existing != nil {
			payload["existing_claim"] = duplicate.Existing.Info()
		}
		c.JSON(http.StatusBadRequest, payload)
	case errors.As(err, &quota):
		log.Warn("ClaimReward: Claim quota exceeded")
		c.JSON(http.StatusBadRequest, gin.H{"error": quota.Error()})
	default:
		log.WithError(err).Error("ClaimReward: Failed to claim reward")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim reward"})
	}
}

// GetClaim returns a single claim with its full metadata. Admin only.
func (h *ClaimHandler) GetClaim(c *gin.Context) {
	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid claim ID format"})
		return
	}

	claim, err := h.claims.GetClaim(c.Request.Context(), claimID)
	if err != nil {
		if errors.Is(err, repository.ErrClaimNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Claim not found"})
			return
		}
		logrus.WithError(err).Error("GetClaim: Failed to query claim")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query claim"})
		return
	}

	c.JSON(http.StatusOK, claim)
}

// ReverseClaim undoes a claim's point and counter effects, keeping the
// claim row as the audit record. Admin only.
func (h *ClaimHandler) ReverseClaim(c *gin.Context) {
	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid claim ID format"})
		return
	}

	var req models.ReverseClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reason must be 10-500 characters", "details": err.Error()})
		return
	}

	claim, user, err := h.claims.ReverseClaim(c.Request.Context(), claimID, req.Reason)
	if err != nil {
		log := logrus.WithField("claim_id", claimID)
		switch {
		case errors.Is(err, repository.ErrClaimNotFound):
			log.Warn("ReverseClaim: Claim not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Claim not found"})
		case errors.Is(err, repository.ErrAlreadyReversed):
			log.Warn("ReverseClaim: Claim already reversed")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Claim is already reversed"})
		default:
			log.WithError(err).Error("ReverseClaim: Failed to reverse claim")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse claim"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Claim reversed",
		"claim":   claim,
		"user":    user.Snapshot(-claim.PointsAwarded),
	})
}
