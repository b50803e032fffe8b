package models

import (
	"time"

	"github.com/google/uuid"
)

// Partner verification statuses
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// Partner is an organization sponsoring reward campaigns
type Partner struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	Email              string    `json:"email" db:"email"`
	VerificationStatus string    `json:"verification_status" db:"verification_status"`
	IsActive           bool      `json:"is_active" db:"is_active"`
	TotalRewards       int       `json:"total_rewards" db:"total_rewards"`
	TotalScans         int       `json:"total_scans" db:"total_scans"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// IsEligibleForRewards reports whether the partner may back claimable rewards
func (p *Partner) IsEligibleForRewards() bool {
	return p.VerificationStatus == VerificationVerified && p.IsActive
}

// PartnerInfo is the display subset embedded in claim/scan responses
type PartnerInfo struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Info returns the display subset for API responses
func (p *Partner) Info() PartnerInfo {
	return PartnerInfo{ID: p.ID, Name: p.Name}
}
