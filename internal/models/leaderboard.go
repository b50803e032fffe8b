package models

import (
	"time"

	"github.com/google/uuid"
)

// Rank movements between two ranking recomputes
const (
	RankMovementUp   = "up"
	RankMovementDown = "down"
	RankMovementNone = "none"
	RankMovementNew  = "new"
)

// LeaderboardEntry mirrors a user's point total into the ranking
// snapshot. It is derived state, re-synced from users.points on demand,
// and never authoritative.
type LeaderboardEntry struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	EcoLevel     string    `json:"eco_level" db:"eco_level"`
	TotalPoints  int       `json:"total_points" db:"total_points"`
	CurrentRank  int       `json:"current_rank" db:"current_rank"`
	PreviousRank *int      `json:"previous_rank,omitempty" db:"previous_rank"`
	RankMovement string    `json:"rank_movement" db:"rank_movement"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// LeaderboardResponse is the API response for leaderboard reads
type LeaderboardResponse struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	TotalUsers  int                `json:"total_users"`
}
