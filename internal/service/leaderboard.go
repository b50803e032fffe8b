package service

import (
	"context"
	"sort"

	"github.com/Juadebfm/ecorewards-deploy/internal/models"
)

// LeaderboardStore is the persistence surface of the ranking engine
type LeaderboardStore interface {
	SyncUser(ctx context.Context, user *models.User) error
	Entries(ctx context.Context) ([]models.LeaderboardEntry, error)
	Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	SaveRankings(ctx context.Context, entries []models.LeaderboardEntry) error
}

// LeaderboardService derives global ranks from mirrored point totals.
// A full recompute is O(n log n); fine for bounded leaderboard sizes.
type LeaderboardService struct {
	store LeaderboardStore
}

func NewLeaderboardService(store LeaderboardStore) *LeaderboardService {
	return &LeaderboardService{store: store}
}

// ComputeRankings assigns 1-based ranks by descending total points,
// shifts the old current rank into previous rank, and derives the
// movement. Ties keep the incoming (stable stored) order. Pure
// function; the caller persists the result.
func ComputeRankings(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	ranked := make([]models.LeaderboardEntry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalPoints > ranked[j].TotalPoints
	})

	for i := range ranked {
		e := &ranked[i]

		var previous *int
		if e.CurrentRank > 0 {
			prev := e.CurrentRank
			previous = &prev
		}

		e.PreviousRank = previous
		e.CurrentRank = i + 1

		switch {
		case previous == nil:
			e.RankMovement = models.RankMovementNew
		case e.CurrentRank < *previous:
			e.RankMovement = models.RankMovementUp
		case e.CurrentRank > *previous:
			e.RankMovement = models.RankMovementDown
		default:
			e.RankMovement = models.RankMovementNone
		}
	}

	return ranked
}

// SyncUser upserts one user's mirror entry
func (s *LeaderboardService) SyncUser(ctx context.Context, user *models.User) error {
	return s.store.SyncUser(ctx, user)
}

// UpdateAllRankings recomputes every rank from the stored snapshot
func (s *LeaderboardService) UpdateAllRankings(ctx context.Context) error {
	entries, err := s.store.Entries(ctx)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return nil
	}

	return s.store.SaveRankings(ctx, ComputeRankings(entries))
}

// Top returns the highest-ranked entries
func (s *LeaderboardService) Top(ctx context.Context, limit int) (*models.LeaderboardResponse, error) {
	entries, err := s.store.Top(ctx, limit)
	if err != nil {
		return nil, err
	}

	return &models.LeaderboardResponse{
		Leaderboard: entries,
		TotalUsers:  len(entries),
	}, nil
}
