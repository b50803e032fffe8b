package service

import (
	"context"

	"github.com/sirupsen/logrus"
)

// ReconcileStore recomputes counter columns from the claim ledger
type ReconcileStore interface {
	RecountRewardClaims(ctx context.Context) (int64, error)
	RecountQRCodeClaims(ctx context.Context) (int64, error)
	RecountQRCodeScans(ctx context.Context) (int64, error)
	RecomputeUserPoints(ctx context.Context) (int64, error)
	RecountPartnerTotals(ctx context.Context) (int64, error)
}

// LeaderboardResyncer refreshes the full ranking mirror
type LeaderboardResyncer interface {
	SyncAllFromUsers(ctx context.Context) error
}

// ReconcileService is the repair path for side-effect writes that
// failed after a claim record committed. It rebuilds every derived
// counter from the ledger and then refreshes the leaderboard.
type ReconcileService struct {
	store       ReconcileStore
	mirror      LeaderboardResyncer
	leaderboard *LeaderboardService
}

func NewReconcileService(store ReconcileStore, mirror LeaderboardResyncer, leaderboard *LeaderboardService) *ReconcileService {
	return &ReconcileService{store: store, mirror: mirror, leaderboard: leaderboard}
}

// ReconcileReport summarizes what a pass repaired
type ReconcileReport struct {
	RewardsFixed  int64 `json:"rewards_fixed"`
	QRCodesFixed  int64 `json:"qr_codes_fixed"`
	ScansFixed    int64 `json:"scans_fixed"`
	UsersFixed    int64 `json:"users_fixed"`
	PartnersFixed int64 `json:"partners_fixed"`
}

// Run executes a full reconciliation pass
func (s *ReconcileService) Run(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{}
	var err error

	if report.UsersFixed, err = s.store.RecomputeUserPoints(ctx); err != nil {
		return nil, err
	}
	if report.RewardsFixed, err = s.store.RecountRewardClaims(ctx); err != nil {
		return nil, err
	}
	if report.QRCodesFixed, err = s.store.RecountQRCodeClaims(ctx); err != nil {
		return nil, err
	}
	// Scan counters before partner totals, which aggregate them
	if report.ScansFixed, err = s.store.RecountQRCodeScans(ctx); err != nil {
		return nil, err
	}
	if report.PartnersFixed, err = s.store.RecountPartnerTotals(ctx); err != nil {
		return nil, err
	}

	if err := s.mirror.SyncAllFromUsers(ctx); err != nil {
		return nil, err
	}
	if err := s.leaderboard.UpdateAllRankings(ctx); err != nil {
		return nil, err
	}

	if report.RewardsFixed+report.QRCodesFixed+report.ScansFixed+report.UsersFixed+report.PartnersFixed > 0 {
		logrus.WithFields(logrus.Fields{
			"rewards_fixed":  report.RewardsFixed,
			"qr_codes_fixed": report.QRCodesFixed,
			"scans_fixed":    report.ScansFixed,
			"users_fixed":    report.UsersFixed,
			"partners_fixed": report.PartnersFixed,
		}).Info("Reconciliation repaired drifted counters")
	}

	return report, nil
}
