package repository

import (
	"context"
	"fmt"

	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeaderboardRepository struct {
	pool *pgxpool.Pool
}

func NewLeaderboardRepository(pool *pgxpool.Pool) *LeaderboardRepository {
	return &LeaderboardRepository{pool: pool}
}

// SyncUser upserts the user's mirror entry with their current point
// total. The leaderboard is a derived snapshot; users.points stays
// authoritative.
func (r *LeaderboardRepository) SyncUser(ctx context.Context, user *models.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leaderboard (user_id, name, eco_level, total_points, current_rank, rank_movement, updated_at)
		VALUES ($1, $2, $3, $4, 0, 'new', NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET name = EXCLUDED.name,
			eco_level = EXCLUDED.eco_level,
			total_points = EXCLUDED.total_points,
			updated_at = NOW()
	`, user.ID, user.Name, user.EcoLevel, user.Points)
	if err != nil {
		return fmt.Errorf("failed to sync leaderboard entry: %w", err)
	}
	return nil
}

// SyncAllFromUsers refreshes every mirror entry from users.points.
// Used by the reconciliation pass.
func (r *LeaderboardRepository) SyncAllFromUsers(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leaderboard (user_id, name, eco_level, total_points, current_rank, rank_movement, updated_at)
		SELECT id, name, eco_level, points, 0, 'new', NOW()
		FROM users WHERE is_active = true AND role = 'user'
		ON CONFLICT (user_id) DO UPDATE
		SET name = EXCLUDED.name,
			eco_level = EXCLUDED.eco_level,
			total_points = EXCLUDED.total_points,
			updated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("failed to sync leaderboard from users: %w", err)
	}
	return nil
}

// Entries returns every leaderboard entry ordered by points descending.
// The secondary sort on user_id keeps tie ordering stable between
// recomputes.
func (r *LeaderboardRepository) Entries(ctx context.Context) ([]models.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, name, eco_level, total_points, current_rank, previous_rank, rank_movement, updated_at
		FROM leaderboard
		ORDER BY total_points DESC, user_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		err := rows.Scan(
			&e.UserID, &e.Name, &e.EcoLevel, &e.TotalPoints,
			&e.CurrentRank, &e.PreviousRank, &e.RankMovement, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}

	return entries, nil
}

// Top returns the highest-ranked entries. Rows synced after the last
// recompute still carry current_rank = 0; they sort after every ranked
// row, by points, instead of ahead of rank 1.
func (r *LeaderboardRepository) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, name, eco_level, total_points, current_rank, previous_rank, rank_movement, updated_at
		FROM leaderboard
		ORDER BY NULLIF(current_rank, 0) ASC NULLS LAST, total_points DESC, user_id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		err := rows.Scan(
			&e.UserID, &e.Name, &e.EcoLevel, &e.TotalPoints,
			&e.CurrentRank, &e.PreviousRank, &e.RankMovement, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}

	return entries, nil
}

// SaveRankings bulk-writes recomputed ranks in one batched transaction
func (r *LeaderboardRepository) SaveRankings(ctx context.Context, entries []models.LeaderboardEntry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			UPDATE leaderboard
			SET current_rank = $2, previous_rank = $3, rank_movement = $4, updated_at = NOW()
			WHERE user_id = $1
		`, e.UserID, e.CurrentRank, e.PreviousRank, e.RankMovement)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save rankings: %w", err)
		}
	}

	return nil
}
