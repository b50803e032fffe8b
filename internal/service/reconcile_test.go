package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/stretchr/testify/require"
)

// memReconcile fakes the counter-recompute queries
type memReconcile struct {
	usersFixed    int64
	rewardsFixed  int64
	qrCodesFixed  int64
	scansFixed    int64
	partnersFixed int64
	recountErr    error

	resynced bool
}

func (m *memReconcile) RecomputeUserPoints(_ context.Context) (int64, error) {
	return m.usersFixed, m.recountErr
}

func (m *memReconcile) RecountRewardClaims(_ context.Context) (int64, error) {
	return m.rewardsFixed, nil
}

func (m *memReconcile) RecountQRCodeClaims(_ context.Context) (int64, error) {
	return m.qrCodesFixed, nil
}

func (m *memReconcile) RecountQRCodeScans(_ context.Context) (int64, error) {
	return m.scansFixed, nil
}

func (m *memReconcile) RecountPartnerTotals(_ context.Context) (int64, error) {
	return m.partnersFixed, nil
}

func (m *memReconcile) SyncAllFromUsers(_ context.Context) error {
	m.resynced = true
	return nil
}

func TestReconcileRunReportsFixes(t *testing.T) {
	store := &memReconcile{usersFixed: 2, rewardsFixed: 1, scansFixed: 3}
	board := &memLeaderboard{entries: []models.LeaderboardEntry{entry("Ada", 400, 0)}}
	svc := NewReconcileService(store, store, NewLeaderboardService(board))

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, int64(2), report.UsersFixed)
	require.Equal(t, int64(1), report.RewardsFixed)
	require.Equal(t, int64(0), report.QRCodesFixed)
	require.Equal(t, int64(3), report.ScansFixed)
	require.True(t, store.resynced)
	require.Len(t, board.saved, 1, "rankings recomputed after resync")
}

func TestReconcileRunStopsOnError(t *testing.T) {
	store := &memReconcile{recountErr: errors.New("database gone")}
	svc := NewReconcileService(store, store, NewLeaderboardService(&memLeaderboard{}))

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	require.False(t, store.resynced)
}
