package models

import (
	"time"

	"github.com/google/uuid"
)

// Reward is a claimable campaign sponsored by a partner
type Reward struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	PartnerID        uuid.UUID  `json:"partner_id" db:"partner_id"`
	Title            string     `json:"title" db:"title"`
	Description      *string    `json:"description,omitempty" db:"description"`
	Points           int        `json:"points" db:"points"`
	MaxClaimsPerUser int        `json:"max_claims_per_user" db:"max_claims_per_user"`
	TotalMaxClaims   *int       `json:"total_max_claims,omitempty" db:"total_max_claims"`
	CurrentClaims    int        `json:"current_claims" db:"current_claims"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
	IsActive         bool       `json:"is_active" db:"is_active"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// IsExpired reports whether the reward's expiry date has passed
func (r *Reward) IsExpired(now time.Time) bool {
	return r.ExpiryDate != nil && now.After(*r.ExpiryDate)
}

// IsMaxedOut reports whether the total claim cap has been reached
func (r *Reward) IsMaxedOut() bool {
	return r.TotalMaxClaims != nil && r.CurrentClaims >= *r.TotalMaxClaims
}

// IsAvailable reports whether the reward is currently claimable
func (r *Reward) IsAvailable(now time.Time) bool {
	return r.IsActive && !r.IsExpired(now) && !r.IsMaxedOut()
}

// RewardInfo is the display subset embedded in claim/scan responses
type RewardInfo struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Points      int       `json:"points"`
}

// Info returns the display subset for API responses
func (r *Reward) Info() RewardInfo {
	return RewardInfo{ID: r.ID, Title: r.Title, Description: r.Description, Points: r.Points}
}

// CreateRewardRequest is the request body for creating a reward campaign
type CreateRewardRequest struct {
	PartnerID        uuid.UUID  `json:"partner_id" binding:"required"`
	Title            string     `json:"title" binding:"required"`
	Description      *string    `json:"description,omitempty"`
	Points           int        `json:"points" binding:"required,min=1,max=1000"`
	MaxClaimsPerUser int        `json:"max_claims_per_user" binding:"omitempty,min=1"`
	TotalMaxClaims   *int       `json:"total_max_claims,omitempty" binding:"omitempty,min=1"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
}
