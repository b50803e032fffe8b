package models

import (
	"time"

	"github.com/google/uuid"
)

// Claim statuses. Reversed is terminal: a reversed claim is never
// re-claimable and never deleted.
const (
	ClaimStatusPending   = "pending"
	ClaimStatusCompleted = "completed"
	ClaimStatusFailed    = "failed"
	ClaimStatusReversed  = "reversed"
)

// Claim methods
const (
	ClaimMethodQRScan = "qr_scan"
	ClaimMethodManual = "manual"
)

// RewardClaim records a user redeeming a reward through a QR code.
// It is the single source of truth driving every counter and point
// mutation; counters elsewhere are derivable caches.
type RewardClaim struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	UserID        uuid.UUID    `json:"user_id" db:"user_id"`
	QRCodeID      uuid.UUID    `json:"qr_code_id" db:"qr_code_id"`
	PartnerID     uuid.UUID    `json:"partner_id" db:"partner_id"`
	RewardID      uuid.UUID    `json:"reward_id" db:"reward_id"`
	PointsAwarded int          `json:"points_awarded" db:"points_awarded"`
	Status        string       `json:"status" db:"status"`
	ClaimMethod   string       `json:"claim_method" db:"claim_method"`
	Notes         *string      `json:"notes,omitempty" db:"notes"`
	IPAddress     *string      `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent     *string      `json:"user_agent,omitempty" db:"user_agent"`
	Location      *GeoLocation `json:"location,omitempty" db:"location"`
	DeviceInfo    *string      `json:"device_info,omitempty" db:"device_info"`
	ProofType     *string      `json:"proof_type,omitempty" db:"proof_type"`
	ProofURL      *string      `json:"proof_url,omitempty" db:"proof_url"`
	ClaimedAt     time.Time    `json:"claimed_at" db:"claimed_at"`
	ReversedAt    *time.Time   `json:"reversed_at,omitempty" db:"reversed_at"`
}

// ClaimRequest is the inbound claim request body. The caller identity
// comes from the auth layer, never from the body.
type ClaimRequest struct {
	Metadata     *ClaimMetadata     `json:"metadata,omitempty"`
	Verification *ClaimVerification `json:"verification_data,omitempty"`
}

// ClaimMetadata is the well-typed optional claim context captured verbatim
type ClaimMetadata struct {
	Location   *GeoLocation `json:"location,omitempty"`
	DeviceInfo *string      `json:"device_info,omitempty"`
}

// ClaimVerification is optional proof attached to a claim. The claim
// protocol stores it verbatim; proof review is a separate concern.
type ClaimVerification struct {
	RequiresProof bool    `json:"requires_proof"`
	ProofType     *string `json:"proof_type,omitempty"`
	ProofURL      *string `json:"proof_url,omitempty" binding:"omitempty,url"`
}

// ReverseClaimRequest is the admin reversal request body
type ReverseClaimRequest struct {
	Reason string `json:"reason" binding:"required,min=10,max=500"`
}

// ClaimResponse is the outbound payload for a successful claim
type ClaimResponse struct {
	Claim   ClaimInfo      `json:"claim"`
	Partner PartnerInfo    `json:"partner"`
	Reward  RewardInfo     `json:"reward"`
	User    PointsSnapshot `json:"user"`
}

// ClaimInfo is the claim subset exposed in responses
type ClaimInfo struct {
	ID            uuid.UUID `json:"id"`
	PointsAwarded int       `json:"points_awarded"`
	ClaimedAt     time.Time `json:"claimed_at"`
	Status        string    `json:"status"`
}

// Info returns the claim subset for API responses
func (c *RewardClaim) Info() ClaimInfo {
	return ClaimInfo{
		ID:            c.ID,
		PointsAwarded: c.PointsAwarded,
		ClaimedAt:     c.ClaimedAt,
		Status:        c.Status,
	}
}
