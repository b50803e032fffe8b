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

type CreatePartnerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type SetVerificationRequest struct {
	Status string `json:"status" binding:"required,oneof=pending verified rejected"`
}

type PartnerHandler struct {
	partners *repository.PartnerRepository
}

func NewPartnerHandler(partners *repository.PartnerRepository) *PartnerHandler {
	return &PartnerHandler{partners: partners}
}

// Create registers a partner organization, pending verification
func (h *PartnerHandler) Create(c *gin.Context) {
	var req CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	partner := &models.Partner{Name: req.Name, Email: req.Email}
	if err := h.partners.Create(c.Request.Context(), partner); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Partner email already registered"})
			return
		}
		logrus.WithError(err).Error("CreatePartner: Failed to create partner")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create partner"})
		return
	}

	c.JSON(http.StatusCreated, partner)
}

// Get returns a partner with its aggregate counters
func (h *PartnerHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partner ID format"})
		return
	}

	partner, err := h.partners.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPartnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
			return
		}
		logrus.WithError(err).Error("GetPartner: Failed to query partner")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query partner"})
		return
	}

	c.JSON(http.StatusOK, partner)
}

// SetVerification transitions the partner verification status. Admin only.
func (h *PartnerHandler) SetVerification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partner ID format"})
		return
	}

	var req SetVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	partner, err := h.partners.SetVerificationStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrPartnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
			return
		}
		logrus.WithError(err).Error("SetVerification: Failed to update partner")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update partner"})
		return
	}

	c.JSON(http.StatusOK, partner)
}
