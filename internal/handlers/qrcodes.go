package handlers

import (
	"errors"
	"net/http"

	"github.com/Juadebfm/ecorewards-deploy/internal/middleware"
	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/Juadebfm/ecorewards-deploy/internal/repository"
	"github.com/Juadebfm/ecorewards-deploy/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"
)

type QRCodeHandler struct {
	qrCodes *repository.QRCodeRepository
	claims  *service.ClaimService
}

func NewQRCodeHandler(qrCodes *repository.QRCodeRepository, claims *service.ClaimService) *QRCodeHandler {
	return &QRCodeHandler{qrCodes: qrCodes, claims: claims}
}

// Create mints a QR code bound to one (partner, reward) pair
func (h *QRCodeHandler) Create(c *gin.Context) {
	var req models.CreateQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	qr := &models.QRCode{
		PartnerID: req.PartnerID,
		RewardID:  req.RewardID,
		Location:  req.Location,
	}

	if err := h.qrCodes.Create(c.Request.Context(), qr); err != nil {
		logrus.WithError(err).Error("CreateQRCode: Failed to create QR code")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create QR code"})
		return
	}

	c.JSON(http.StatusCreated, qr)
}

// Validate runs the availability engine for a code without side effects
func (h *QRCodeHandler) Validate(c *gin.Context) {
	result, err := h.claims.Validate(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, repository.ErrQRCodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
			return
		}
		logrus.WithError(err).Error("ValidateQRCode: Failed to validate QR code")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate QR code"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Scan records a scan against the code's counters. Scanning does not
// claim; the response carries the availability verdict so the client
// can offer the claim step.
func (h *QRCodeHandler) Scan(c *gin.Context) {
	userID, ok := middleware.GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result, err := h.claims.ScanQRCode(c.Request.Context(), userID, c.Param("code"))
	if err != nil {
		if errors.Is(err, repository.ErrQRCodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
			return
		}
		logrus.WithError(err).Error("ScanQRCode: Failed to record scan")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record scan"})
		return
	}

	c.JSON(http.StatusOK, result)
}

type SetQRCodeActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive toggles whether the code accepts scans and claims
func (h *QRCodeHandler) SetActive(c *gin.Context) {
	var req SetQRCodeActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	qr, err := h.qrCodes.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, repository.ErrQRCodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
			return
		}
		logrus.WithError(err).Error("SetQRCodeActive: Failed to query QR code")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query QR code"})
		return
	}

	if err := h.qrCodes.SetActive(c.Request.Context(), qr.ID, *req.Active); err != nil {
		logrus.WithError(err).Error("SetQRCodeActive: Failed to update QR code")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update QR code"})
		return
	}

	qr.IsActive = *req.Active
	c.JSON(http.StatusOK, qr)
}

// ListByPartner returns a partner's QR codes with their scan counters
func (h *QRCodeHandler) ListByPartner(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partner ID format"})
		return
	}

	codes, err := h.qrCodes.ListByPartner(c.Request.Context(), partnerID)
	if err != nil {
		logrus.WithError(err).Error("ListQRCodes: Failed to query QR codes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query QR codes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"qr_codes": codes,
		"count":    len(codes),
	})
}

// Image renders the code token as a PNG for printing or embedding
func (h *QRCodeHandler) Image(c *gin.Context) {
	qr, err := h.qrCodes.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, repository.ErrQRCodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
			return
		}
		logrus.WithError(err).Error("QRCodeImage: Failed to query QR code")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query QR code"})
		return
	}

	png, err := qrcode.Encode(qr.Code, qrcode.Medium, 256)
	if err != nil {
		logrus.WithError(err).Error("QRCodeImage: Failed to encode PNG")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
