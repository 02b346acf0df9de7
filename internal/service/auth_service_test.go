package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/reading-reports-api/internal/models"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
)

func newAuthServiceForTest(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(nil, zap.NewNop(), AuthConfig{
		Username:          "operator",
		PasswordHash:      string(hash),
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: 15 * time.Minute,
	})
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc := newAuthServiceForTest(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "operator", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, "operator", resp.Username)
	assert.Equal(t, int64(900), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Username)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthServiceForTest(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "operator", Password: "wrong"})
	require.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "s3cret!"})
	require.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "operator"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginNotConfigured(t *testing.T) {
	svc := NewAuthService(nil, nil, AuthConfig{})
	assert.False(t, svc.Enabled())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "a", Password: "b"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnavailable.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenExpired(t *testing.T) {
	svc := newAuthServiceForTest(t)
	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "operator", Password: "s3cret!"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = svc.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.ValidateToken("not-a-token")
	require.Error(t, err)
}
