package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity types and the points they credit
const (
	ActivityRecycling     = "recycling"
	ActivityPublicTransit = "public_transit"
	ActivityCycling       = "cycling"
	ActivityTreePlanting  = "tree_planting"
	ActivityCleanup       = "cleanup"
)

var activityPoints = map[string]int{
	ActivityRecycling:     10,
	ActivityPublicTransit: 5,
	ActivityCycling:       8,
	ActivityTreePlanting:  50,
	ActivityCleanup:       25,
}

// ActivityPointsFor returns the point credit for an activity type,
// or false if the type is unknown.
func ActivityPointsFor(activityType string) (int, bool) {
	pts, ok := activityPoints[activityType]
	return pts, ok
}

// Activity is a manually logged eco action credited with points
type Activity struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	ActivityType string    `json:"activity_type" db:"activity_type"`
	Points       int       `json:"points" db:"points"`
	Description  *string   `json:"description,omitempty" db:"description"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// LogActivityRequest is the request body for manual activity logging
type LogActivityRequest struct {
	ActivityType string  `json:"activity_type" binding:"required"`
	Description  *string `json:"description,omitempty"`
}
