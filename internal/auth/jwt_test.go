package auth

import (
	"testing"
	"time"

	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService("test-secret", "ecorewards", time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, "ada@example.com", models.RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "ada@example.com", claims.Email)
	require.Equal(t, models.RoleUser, claims.Role)
	require.Equal(t, "ecorewards", claims.Issuer)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewJWTService("test-secret", "ecorewards", time.Hour)
	other := NewJWTService("another-secret", "ecorewards", time.Hour)

	token, err := svc.GenerateToken(uuid.New(), "ada@example.com", models.RoleUser)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewJWTService("test-secret", "ecorewards", -time.Minute)

	token, err := svc.GenerateToken(uuid.New(), "ada@example.com", models.RoleUser)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", "ecorewards", time.Hour)

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
}
