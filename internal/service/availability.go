package service

import (
	"time"

	"github.com/Juadebfm/ecorewards-deploy/internal/models"
)

// Availability verdict reasons, in check order. The first failing check
// wins.
const (
	ReasonQRCodeInactive    = "QR code is inactive"
	ReasonRewardNotFound    = "Associated reward not found"
	ReasonRewardInactive    = "Reward is inactive"
	ReasonRewardExpired     = "Reward has expired"
	ReasonRewardMaxedOut    = "Reward has reached maximum claims"
	ReasonPartnerNotFound   = "Associated partner not found"
	ReasonPartnerIneligible = "Partner is not eligible"
	ReasonValid             = "QR code is valid"
)

// AvailabilityResult is the verdict of the availability engine
type AvailabilityResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

// CheckAvailability decides whether a QR code's reward is claimable.
// Pure read over the three entities; reward and partner may be nil when
// the referenced entity no longer exists.
func CheckAvailability(qr *models.QRCode, reward *models.Reward, partner *models.Partner, now time.Time) AvailabilityResult {
	switch {
	case !qr.IsActive:
		return AvailabilityResult{Reason: ReasonQRCodeInactive}
	case reward == nil:
		return AvailabilityResult{Reason: ReasonRewardNotFound}
	case !reward.IsActive:
		return AvailabilityResult{Reason: ReasonRewardInactive}
	case reward.IsExpired(now):
		return AvailabilityResult{Reason: ReasonRewardExpired}
	case reward.IsMaxedOut():
		return AvailabilityResult{Reason: ReasonRewardMaxedOut}
	case partner == nil:
		return AvailabilityResult{Reason: ReasonPartnerNotFound}
	case !partner.IsEligibleForRewards():
		return AvailabilityResult{Reason: ReasonPartnerIneligible}
	}
	return AvailabilityResult{Valid: true, Reason: ReasonValid}
}
