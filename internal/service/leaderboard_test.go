package service

import (
	"context"
	"sort"
	"testing"

	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func entry(name string, points, currentRank int) models.LeaderboardEntry {
	return models.LeaderboardEntry{
		UserID:      uuid.New(),
		Name:        name,
		TotalPoints: points,
		CurrentRank: currentRank,
	}
}

func TestComputeRankingsOrdersByPointsDesc(t *testing.T) {
	entries := []models.LeaderboardEntry{
		entry("Bea", 150, 0),
		entry("Ada", 400, 0),
		entry("Cid", 90, 0),
	}

	ranked := ComputeRankings(entries)
	require.Len(t, ranked, 3)
	require.Equal(t, "Ada", ranked[0].Name)
	require.Equal(t, "Bea", ranked[1].Name)
	require.Equal(t, "Cid", ranked[2].Name)

	for i, e := range ranked {
		require.Equal(t, i+1, e.CurrentRank)
	}
}

func TestComputeRankingsFirstComputeIsNew(t *testing.T) {
	ranked := ComputeRankings([]models.LeaderboardEntry{
		entry("Ada", 400, 0),
		entry("Bea", 150, 0),
	})

	for _, e := range ranked {
		require.Nil(t, e.PreviousRank)
		require.Equal(t, models.RankMovementNew, e.RankMovement)
	}
}

func TestComputeRankingsMovement(t *testing.T) {
	// Bea overtakes Ada; Cid holds third
	entries := []models.LeaderboardEntry{
		entry("Ada", 300, 1),
		entry("Bea", 350, 2),
		entry("Cid", 100, 3),
	}

	ranked := ComputeRankings(entries)

	require.Equal(t, "Bea", ranked[0].Name)
	require.Equal(t, models.RankMovementUp, ranked[0].RankMovement)
	require.Equal(t, 2, *ranked[0].PreviousRank)

	require.Equal(t, "Ada", ranked[1].Name)
	require.Equal(t, models.RankMovementDown, ranked[1].RankMovement)
	require.Equal(t, 1, *ranked[1].PreviousRank)

	require.Equal(t, "Cid", ranked[2].Name)
	require.Equal(t, models.RankMovementNone, ranked[2].RankMovement)
	require.Equal(t, 3, *ranked[2].PreviousRank)
}

func TestComputeRankingsTiesKeepStoredOrder(t *testing.T) {
	a := entry("Ada", 200, 1)
	b := entry("Bea", 200, 2)

	ranked := ComputeRankings([]models.LeaderboardEntry{a, b})

	require.Equal(t, "Ada", ranked[0].Name)
	require.Equal(t, 1, ranked[0].CurrentRank)
	require.Equal(t, models.RankMovementNone, ranked[0].RankMovement)
	require.Equal(t, "Bea", ranked[1].Name)
	require.Equal(t, 2, ranked[1].CurrentRank)
	require.Equal(t, models.RankMovementNone, ranked[1].RankMovement)
}

func TestComputeRankingsDoesNotMutateInput(t *testing.T) {
	entries := []models.LeaderboardEntry{
		entry("Bea", 150, 0),
		entry("Ada", 400, 0),
	}

	_ = ComputeRankings(entries)

	require.Equal(t, "Bea", entries[0].Name)
	require.Equal(t, 0, entries[0].CurrentRank)
}

// memLeaderboard is an in-memory LeaderboardStore for the service tests
type memLeaderboard struct {
	entries []models.LeaderboardEntry
	saved   []models.LeaderboardEntry
}

func (m *memLeaderboard) SyncUser(_ context.Context, user *models.User) error {
	for i := range m.entries {
		if m.entries[i].UserID == user.ID {
			m.entries[i].TotalPoints = user.Points
			m.entries[i].EcoLevel = user.EcoLevel
			return nil
		}
	}
	m.entries = append(m.entries, models.LeaderboardEntry{
		UserID:      user.ID,
		Name:        user.Name,
		EcoLevel:    user.EcoLevel,
		TotalPoints: user.Points,
	})
	return nil
}

func (m *memLeaderboard) Entries(_ context.Context) ([]models.LeaderboardEntry, error) {
	out := make([]models.LeaderboardEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// Top mirrors the SQL read: ranked rows by rank, rows synced after the
// last recompute (rank 0) after them, by points.
func (m *memLeaderboard) Top(_ context.Context, limit int) ([]models.LeaderboardEntry, error) {
	out := make([]models.LeaderboardEntry, len(m.entries))
	copy(out, m.entries)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].CurrentRank, out[j].CurrentRank
		if ri > 0 && rj > 0 {
			return ri < rj
		}
		if ri > 0 || rj > 0 {
			return ri > 0
		}
		return out[i].TotalPoints > out[j].TotalPoints
	})
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memLeaderboard) SaveRankings(_ context.Context, entries []models.LeaderboardEntry) error {
	m.saved = make([]models.LeaderboardEntry, len(entries))
	copy(m.saved, entries)
	for _, e := range entries {
		for i := range m.entries {
			if m.entries[i].UserID == e.UserID {
				m.entries[i].CurrentRank = e.CurrentRank
				m.entries[i].PreviousRank = e.PreviousRank
				m.entries[i].RankMovement = e.RankMovement
			}
		}
	}
	return nil
}

func TestUpdateAllRankingsPersistsRankedOrder(t *testing.T) {
	store := &memLeaderboard{entries: []models.LeaderboardEntry{
		entry("Bea", 150, 0),
		entry("Ada", 400, 0),
	}}
	svc := NewLeaderboardService(store)

	require.NoError(t, svc.UpdateAllRankings(context.Background()))
	require.Len(t, store.saved, 2)
	require.Equal(t, "Ada", store.saved[0].Name)
	require.Equal(t, 1, store.saved[0].CurrentRank)

	resp, err := svc.Top(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, resp.Leaderboard, 1)
	require.Equal(t, "Ada", resp.Leaderboard[0].Name)
}

func TestTopPlacesUnrankedEntriesLast(t *testing.T) {
	store := &memLeaderboard{entries: []models.LeaderboardEntry{
		entry("Bea", 150, 0),
		entry("Ada", 400, 0),
	}}
	svc := NewLeaderboardService(store)
	require.NoError(t, svc.UpdateAllRankings(context.Background()))

	// Dee claims after the recompute; her mirror row has no rank yet
	dee := &models.User{ID: uuid.New(), Name: "Dee", Points: 9000, EcoLevel: models.EcoLevelLeader}
	require.NoError(t, svc.SyncUser(context.Background(), dee))

	resp, err := svc.Top(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, resp.Leaderboard, 3)
	require.Equal(t, "Ada", resp.Leaderboard[0].Name)
	require.Equal(t, "Bea", resp.Leaderboard[1].Name)
	require.Equal(t, "Dee", resp.Leaderboard[2].Name)
	require.Equal(t, 0, resp.Leaderboard[2].CurrentRank)
}

func TestUpdateAllRankingsEmptyBoard(t *testing.T) {
	store := &memLeaderboard{}
	svc := NewLeaderboardService(store)

	require.NoError(t, svc.UpdateAllRankings(context.Background()))
	require.Empty(t, store.saved)
}
