package models

import (
	"time"

	"github.com/google/uuid"
)

// Eco level tiers derived from accumulated points
const (
	EcoLevelBeginner     = "beginner"
	EcoLevelIntermediate = "intermediate"
	EcoLevelAdvanced     = "advanced"
	EcoLevelExpert       = "expert"
	EcoLevelLeader       = "leader"
)

// User roles
const (
	RoleUser    = "user"
	RolePartner = "partner"
	RoleAdmin   = "admin"
)

// User represents a platform member earning points for eco actions
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Points       int       `json:"points" db:"points"`
	EcoLevel     string    `json:"eco_level" db:"eco_level"`
	ReferralCode string    `json:"referral_code" db:"referral_code"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// EcoLevelFor derives the eco level tier from a point total.
// Pure and idempotent: re-applying it to a correctly-set user never
// changes the level.
func EcoLevelFor(points int) string {
	switch {
	case points >= 1000:
		return EcoLevelLeader
	case points >= 500:
		return EcoLevelExpert
	case points >= 250:
		return EcoLevelAdvanced
	case points >= 100:
		return EcoLevelIntermediate
	default:
		return EcoLevelBeginner
	}
}

// PointsSnapshot is the user state returned after a points mutation
type PointsSnapshot struct {
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	TotalPoints  int       `json:"total_points"`
	EcoLevel     string    `json:"eco_level"`
	PointsEarned int       `json:"points_earned"`
}

// Snapshot builds a PointsSnapshot carrying the delta of the mutation
func (u *User) Snapshot(pointsEarned int) PointsSnapshot {
	return PointsSnapshot{
		UserID:       u.ID,
		Name:         u.Name,
		TotalPoints:  u.Points,
		EcoLevel:     u.EcoLevel,
		PointsEarned: pointsEarned,
	}
}
