package service

import (
	"fmt"

	"github.com/Juadebfm/ecorewards-deploy/internal/models"
)

// UnavailableError rejects a claim that failed an availability check.
// Actionable by the caller; never retryable as-is.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return e.Reason
}

// DuplicateClaimError rejects a re-claim of an already-claimed QR code.
// It carries the existing claim so the caller can show what was already
// awarded. Rejection is idempotent; the award is not repeated.
type DuplicateClaimError struct {
	Existing *models.RewardClaim
}

func (e *DuplicateClaimError) Error() string {
	if e.Existing != nil {
		return fmt.Sprintf("reward already claimed for %d points", e.Existing.PointsAwarded)
	}
	return "reward already claimed"
}

// QuotaExceededError rejects a claim past the per-user cap for a
// reward. The cap does not reset.
type QuotaExceededError struct {
	MaxClaimsPerUser int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("maximum of %d claim(s) per user reached for this reward", e.MaxClaimsPerUser)
}
