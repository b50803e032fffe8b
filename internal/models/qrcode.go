package models

import (
	"time"

	"github.com/google/uuid"
)

// QRCodeTokenPrefix prefixes every public scannable token
const QRCodeTokenPrefix = "qr_"

// QRCode links a physical or digital touchpoint to one (partner, reward) pair
type QRCode struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	Code             string       `json:"code" db:"code"`
	PartnerID        uuid.UUID    `json:"partner_id" db:"partner_id"`
	RewardID         uuid.UUID    `json:"reward_id" db:"reward_id"`
	IsActive         bool         `json:"is_active" db:"is_active"`
	ScanCount        int          `json:"scan_count" db:"scan_count"`
	UniqueScans      int          `json:"unique_scans" db:"unique_scans"`
	SuccessfulClaims int          `json:"successful_claims" db:"successful_claims"`
	Location         *GeoLocation `json:"location,omitempty" db:"location"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// GeoLocation is an optional coordinate attached to QR codes and claims
type GeoLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   *string `json:"address,omitempty"`
}

// NewQRCodeToken generates a fresh public token in the qr_<uuid> format
func NewQRCodeToken() string {
	return QRCodeTokenPrefix + uuid.NewString()
}

// CreateQRCodeRequest is the request body for minting a QR code
type CreateQRCodeRequest struct {
	PartnerID uuid.UUID    `json:"partner_id" binding:"required"`
	RewardID  uuid.UUID    `json:"reward_id" binding:"required"`
	Location  *GeoLocation `json:"location,omitempty"`
}
