package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/Juadebfm/ecorewards-deploy/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ClaimStore is the claim-ledger surface the protocol needs
type ClaimStore interface {
	ActiveClaim(ctx context.Context, userID, qrCodeID uuid.UUID) (*models.RewardClaim, error)
	CountActiveClaims(ctx context.Context, userID, rewardID uuid.UUID) (int, error)
	CreateClaim(ctx context.Context, claim *models.RewardClaim) (*models.User, error)
	ClaimByID(ctx context.Context, id uuid.UUID) (*models.RewardClaim, error)
	ReverseClaim(ctx context.Context, claimID uuid.UUID, reason string) (*models.RewardClaim, *models.User, error)
}

// QRCodeStore resolves and mutates QR codes
type QRCodeStore interface {
	GetByCode(ctx context.Context, code string) (*models.QRCode, error)
	RecordScan(ctx context.Context, qrCodeID, userID uuid.UUID) (*models.QRCode, error)
}

// RewardStore resolves rewards
type RewardStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reward, error)
}

// PartnerStore resolves partners
type PartnerStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Partner, error)
}

// LeaderboardSyncer mirrors point totals into the ranking snapshot.
// Sync failures are logged and swallowed; the leaderboard is
// eventually consistent and never rolls back a point change.
type LeaderboardSyncer interface {
	SyncUser(ctx context.Context, user *models.User) error
}

// ClaimService owns the claim creation and reversal protocols. All
// cross-entity updates happen here, in the open, instead of hiding in
// persistence hooks.
type ClaimService struct {
	claims      ClaimStore
	qrCodes     QRCodeStore
	rewards     RewardStore
	partners    PartnerStore
	leaderboard LeaderboardSyncer
	now         func() time.Time
}

func NewClaimService(claims ClaimStore, qrCodes QRCodeStore, rewards RewardStore, partners PartnerStore, leaderboard LeaderboardSyncer) *ClaimService {
	return &ClaimService{
		claims:      claims,
		qrCodes:     qrCodes,
		rewards:     rewards,
		partners:    partners,
		leaderboard: leaderboard,
		now:         time.Now,
	}
}

// ClaimInput carries the claim request plus the boundary metadata
// captured verbatim from the HTTP layer.
type ClaimInput struct {
	UserID       uuid.UUID
	Code         string
	IPAddress    *string
	UserAgent    *string
	Metadata     *models.ClaimMetadata
	Verification *models.ClaimVerification
}

// ClaimReward runs the claim creation protocol: resolve the code,
// availability check, duplicate check, per-user cap check, then the
// transactional persist. Every guard is a hard precondition; nothing
// partial is written on rejection.
func (s *ClaimService) ClaimReward(ctx context.Context, in ClaimInput) (*models.ClaimResponse, error) {
	qr, err := s.qrCodes.GetByCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}

	reward, partner, err := s.resolveCampaign(ctx, qr)
	if err != nil {
		return nil, err
	}

	if res := CheckAvailability(qr, reward, partner, s.now()); !res.Valid {
		return nil, &UnavailableError{Reason: res.Reason}
	}

	// Duplicate-QR guard: catches re-scans of the same code. The unique
	// index closes the race this check leaves open.
	existing, err := s.claims.ActiveClaim(ctx, in.UserID, qr.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &DuplicateClaimError{Existing: existing}
	}

	// Per-user cap guard: catches claiming a different QR code for the
	// same reward beyond the allowed count.
	count, err := s.claims.CountActiveClaims(ctx, in.UserID, reward.ID)
	if err != nil {
		return nil, err
	}
	if count >= reward.MaxClaimsPerUser {
		return nil, &QuotaExceededError{MaxClaimsPerUser: reward.MaxClaimsPerUser}
	}

	claim := &models.RewardClaim{
		ID:            uuid.New(),
		UserID:        in.UserID,
		QRCodeID:      qr.ID,
		PartnerID:     qr.PartnerID,
		RewardID:      reward.ID,
		PointsAwarded: reward.Points,
		Status:        models.ClaimStatusCompleted,
		ClaimMethod:   models.ClaimMethodQRScan,
		IPAddress:     in.IPAddress,
		UserAgent:     in.UserAgent,
	}
	if in.Metadata != nil {
		claim.Location = in.Metadata.Location
		claim.DeviceInfo = in.Metadata.DeviceInfo
	}
	if in.Verification != nil {
		claim.ProofType = in.Verification.ProofType
		claim.ProofURL = in.Verification.ProofURL
	}

	user, err := s.claims.CreateClaim(ctx, claim)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateClaim) {
			// Lost the race against a concurrent claim of the same code.
			// Report it the same way as the synchronous duplicate check.
			existing, lookupErr := s.claims.ActiveClaim(ctx, in.UserID, qr.ID)
			if lookupErr != nil {
				return nil, &DuplicateClaimError{}
			}
			return nil, &DuplicateClaimError{Existing: existing}
		}
		return nil, err
	}

	s.syncLeaderboard(ctx, user)

	return &models.ClaimResponse{
		Claim:   claim.Info(),
		Partner: partner.Info(),
		Reward:  reward.Info(),
		User:    user.Snapshot(claim.PointsAwarded),
	}, nil
}

// GetClaim retrieves a single claim by ID
func (s *ClaimService) GetClaim(ctx context.Context, claimID uuid.UUID) (*models.RewardClaim, error) {
	return s.claims.ClaimByID(ctx, claimID)
}

// ReverseClaim runs the reversal protocol. The second reversal of the
// same claim is rejected before any point or counter changes.
func (s *ClaimService) ReverseClaim(ctx context.Context, claimID uuid.UUID, reason string) (*models.RewardClaim, *models.User, error) {
	claim, user, err := s.claims.ReverseClaim(ctx, claimID, reason)
	if err != nil {
		return nil, nil, err
	}

	s.syncLeaderboard(ctx, user)

	return claim, user, nil
}

// ScanResult is returned for the scan step that precedes claiming
type ScanResult struct {
	QRCode       *models.QRCode      `json:"qr_code"`
	Reward       *models.RewardInfo  `json:"reward,omitempty"`
	Partner      *models.PartnerInfo `json:"partner,omitempty"`
	Availability AvailabilityResult  `json:"availability"`
}

// ScanQRCode records a scan against the code's counters. Scanning and
// claiming are separate operations; a scan never awards points, and
// the scan is counted even when the reward is no longer claimable.
func (s *ClaimService) ScanQRCode(ctx context.Context, userID uuid.UUID, code string) (*ScanResult, error) {
	qr, err := s.qrCodes.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	reward, partner, err := s.resolveCampaign(ctx, qr)
	if err != nil {
		return nil, err
	}

	updated, err := s.qrCodes.RecordScan(ctx, qr.ID, userID)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{
		QRCode:       updated,
		Availability: CheckAvailability(updated, reward, partner, s.now()),
	}
	if reward != nil {
		info := reward.Info()
		result.Reward = &info
	}
	if partner != nil {
		info := partner.Info()
		result.Partner = &info
	}

	return result, nil
}

// Validate runs the availability engine without side effects
func (s *ClaimService) Validate(ctx context.Context, code string) (*ScanResult, error) {
	qr, err := s.qrCodes.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	reward, partner, err := s.resolveCampaign(ctx, qr)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{
		QRCode:       qr,
		Availability: CheckAvailability(qr, reward, partner, s.now()),
	}
	if reward != nil {
		info := reward.Info()
		result.Reward = &info
	}
	if partner != nil {
		info := partner.Info()
		result.Partner = &info
	}

	return result, nil
}

// resolveCampaign loads the reward and partner a QR code points at.
// Dangling references come back nil so the availability engine can
// report them in check order.
func (s *ClaimService) resolveCampaign(ctx context.Context, qr *models.QRCode) (*models.Reward, *models.Partner, error) {
	reward, err := s.rewards.GetByID(ctx, qr.RewardID)
	if err != nil && !errors.Is(err, repository.ErrRewardNotFound) {
		return nil, nil, fmt.Errorf("failed to resolve reward: %w", err)
	}

	partner, err := s.partners.GetByID(ctx, qr.PartnerID)
	if err != nil && !errors.Is(err, repository.ErrPartnerNotFound) {
		return nil, nil, fmt.Errorf("failed to resolve partner: %w", err)
	}

	return reward, partner, nil
}

// syncLeaderboard mirrors the new point total, best effort. By the
// time this runs the claim record is durable, so a sync failure is a
// reconciliation concern, not a request failure.
func (s *ClaimService) syncLeaderboard(ctx context.Context, user *models.User) {
	if err := s.leaderboard.SyncUser(ctx, user); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"points":  user.Points,
		}).WithError(err).Warn("Leaderboard sync failed; reconciliation will repair")
	}
}
