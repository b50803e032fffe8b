package service

import (
	"context"
	"testing"

	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// memUsers fakes the activity-credit path of the user repository
type memUsers struct {
	user     *models.User
	credited []*models.Activity
}

func (m *memUsers) GetByID(_ context.Context, _ uuid.UUID) (*models.User, error) {
	out := *m.user
	return &out, nil
}

func (m *memUsers) CreditActivityPoints(_ context.Context, activity *models.Activity) (*models.User, error) {
	m.credited = append(m.credited, activity)
	m.user.Points += activity.Points
	m.user.EcoLevel = models.EcoLevelFor(m.user.Points)
	out := *m.user
	return &out, nil
}

func TestLogActivityCreditsFixedPoints(t *testing.T) {
	users := &memUsers{user: &models.User{ID: uuid.New(), Name: "Ada", Points: 95}}
	board := newMemStore()
	svc := NewPointsService(users, board)

	activity, user, err := svc.LogActivity(context.Background(), users.user.ID, models.LogActivityRequest{
		ActivityType: models.ActivityRecycling,
	})
	require.NoError(t, err)

	require.Equal(t, 10, activity.Points)
	require.Equal(t, 105, user.Points)
	require.Equal(t, models.EcoLevelIntermediate, user.EcoLevel)
	require.Len(t, users.credited, 1)
	require.Equal(t, 1, board.syncCalls)
}

func TestLogActivityUnknownType(t *testing.T) {
	users := &memUsers{user: &models.User{ID: uuid.New(), Points: 95}}
	svc := NewPointsService(users, newMemStore())

	_, _, err := svc.LogActivity(context.Background(), users.user.ID, models.LogActivityRequest{
		ActivityType: "teleportation",
	})
	require.Error(t, err)
	require.Empty(t, users.credited)
}
