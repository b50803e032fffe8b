package service

import (
	"context"
	"fmt"

	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UserStore is the user surface the points tracker needs
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreditActivityPoints(ctx context.Context, activity *models.Activity) (*models.User, error)
}

// PointsService credits manually logged eco activities
type PointsService struct {
	users       UserStore
	leaderboard LeaderboardSyncer
}

func NewPointsService(users UserStore, leaderboard LeaderboardSyncer) *PointsService {
	return &PointsService{users: users, leaderboard: leaderboard}
}

// LogActivity ledgers a manual eco action and credits its points. The
// leaderboard sync afterwards is best effort, same as the claim flow.
func (s *PointsService) LogActivity(ctx context.Context, userID uuid.UUID, req models.LogActivityRequest) (*models.Activity, *models.User, error) {
	points, ok := models.ActivityPointsFor(req.ActivityType)
	if !ok {
		return nil, nil, fmt.Errorf("unknown activity type: %s", req.ActivityType)
	}

	activity := &models.Activity{
		UserID:       userID,
		ActivityType: req.ActivityType,
		Points:       points,
		Description:  req.Description,
	}

	user, err := s.users.CreditActivityPoints(ctx, activity)
	if err != nil {
		return nil, nil, err
	}

	if err := s.leaderboard.SyncUser(ctx, user); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"points":  user.Points,
		}).WithError(err).Warn("Leaderboard sync failed; reconciliation will repair")
	}

	return activity, user, nil
}
