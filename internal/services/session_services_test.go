package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gautambamne/ECom-sub000/internal/apperror"
	"github.com/gautambamne/ECom-sub000/internal/model"
)

func seedSession(t *testing.T, repo *mockSessionRepository, userID, agent string, age time.Duration) *model.Session {
	t.Helper()
	now := time.Now().Add(-age)
	s := &model.Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		RefreshToken: uuid.NewString(),
		UserAgent:    agent,
		ExpiresAt:    now.Add(720 * time.Hour),
		CreatedAt:    now,
	}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestListReturnsNewestFirst(t *testing.T) {
	repo := newMockSessionRepository()
	svc := NewSessionService(repo)
	ctx := context.Background()

	seedSession(t, repo, "u1", "laptop", 2*time.Hour)
	seedSession(t, repo, "u1", "phone", time.Hour)
	seedSession(t, repo, "u2", "other-user", 0)

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "phone", list[0].UserAgent)
	assert.Equal(t, "laptop", list[1].UserAgent)
}

func TestRevokeOwnSession(t *testing.T) {
	repo := newMockSessionRepository()
	svc := NewSessionService(repo)
	ctx := context.Background()

	s := seedSession(t, repo, "u1", "laptop", 0)
	require.NoError(t, svc.Revoke(ctx, "u1", s.ID))

	gone, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRevokeForeignSessionReadsAsNotFound(t *testing.T) {
	repo := newMockSessionRepository()
	svc := NewSessionService(repo)
	ctx := context.Background()

	s := seedSession(t, repo, "u2", "laptop", 0)

	err := svc.Revoke(ctx, "u1", s.ID)
	assert.Equal(t, apperror.KindNotFound, kindOf(t, err))
	assert.EqualError(t, err, "Session not found")

	kept, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept, "someone else's session must survive")
}

func TestRevokeUnknownSession(t *testing.T) {
	svc := NewSessionService(newMockSessionRepository())

	err := svc.Revoke(context.Background(), "u1", "missing-id")
	assert.Equal(t, apperror.KindNotFound, kindOf(t, err))
}

func TestRevokeAllExceptKeepsCurrent(t *testing.T) {
	repo := newMockSessionRepository()
	svc := NewSessionService(repo)
	ctx := context.Background()

	current := seedSession(t, repo, "u1", "laptop", 0)
	seedSession(t, repo, "u1", "phone", time.Hour)
	seedSession(t, repo, "u1", "tablet", 2*time.Hour)
	foreign := seedSession(t, repo, "u2", "other", 0)

	require.NoError(t, svc.RevokeAllExcept(ctx, "u1", current.RefreshToken))

	list, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, current.ID, list[0].ID)

	kept, err := repo.GetByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestRevokeAllExceptWithoutResolvableCurrent(t *testing.T) {
	repo := newMockSessionRepository()
	svc := NewSessionService(repo)
	ctx := context.Background()

	seedSession(t, repo, "u1", "laptop", 0)
	seedSession(t, repo, "u1", "phone", time.Hour)

	require.NoError(t, svc.RevokeAllExcept(ctx, "u1", ""))

	list, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPurgeExpired(t *testing.T) {
	repo := newMockSessionRepository()
	svc := NewSessionService(repo)
	ctx := context.Background()

	live := seedSession(t, repo, "u1", "laptop", 0)
	stale := seedSession(t, repo, "u1", "old-phone", 0)
	repo.byID[stale.ID].ExpiresAt = time.Now().Add(-time.Minute)

	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	kept, err := repo.GetByID(ctx, live.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
	gone, err := repo.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRevokeAllExceptIgnoresForeignToken(t *testing.T) {
	repo := newMockSessionRepository()
	svc := NewSessionService(repo)
	ctx := context.Background()

	foreign := seedSession(t, repo, "u2", "other", 0)
	seedSession(t, repo, "u1", "laptop", 0)

	// a token belonging to another user cannot anchor the keep-set
	require.NoError(t, svc.RevokeAllExcept(ctx, "u1", foreign.RefreshToken))

	list, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
