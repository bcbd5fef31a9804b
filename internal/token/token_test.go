package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gautambamne/ECom-sub000/internal/model"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService("access-secret", "refresh-secret", 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)
	return svc
}

func testUser() *model.User {
	return &model.User{
		ID:    "user-1",
		Name:  "Ada",
		Email: "ada@example.com",
		Roles: []string{"user", "admin"},
	}
}

func TestNewServiceRequiresSecrets(t *testing.T) {
	_, err := NewService("", "refresh", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewService("access", "", time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestAccessRoundTrip(t *testing.T) {
	svc := newTestService(t)
	u := testUser()

	signed, err := svc.SignAccess(u)
	require.NoError(t, err)

	claims, err := svc.VerifyAccess(signed)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, u.Name, claims.Name)
	assert.Equal(t, u.Email, claims.Email)
	assert.Equal(t, u.Roles, claims.Roles)
}

func TestRefreshRoundTrip(t *testing.T) {
	svc := newTestService(t)

	signed, err := svc.SignRefresh("user-1")
	require.NoError(t, err)

	claims, err := svc.VerifyRefresh(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestSecretsAreNotInterchangeable(t *testing.T) {
	svc := newTestService(t)

	access, err := svc.SignAccess(testUser())
	require.NoError(t, err)
	refresh, err := svc.SignRefresh("user-1")
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	svc := newTestService(t)
	other, err := NewService("different-access", "different-refresh", time.Minute, time.Hour)
	require.NoError(t, err)

	signed, err := svc.SignAccess(testUser())
	require.NoError(t, err)

	_, err = other.VerifyAccess(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc, err := NewService("access-secret", "refresh-secret", -time.Minute, -time.Minute)
	require.NoError(t, err)

	access, err := svc.SignAccess(testUser())
	require.NoError(t, err)
	refresh, err := svc.SignRefresh("user-1")
	require.NoError(t, err)

	_, err = svc.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := newTestService(t)

	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.VerifyAccess(bad)
		assert.ErrorIs(t, err, ErrInvalidToken)

		_, err = svc.VerifyRefresh(bad)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
