package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gautambamne/ECom-sub000/internal/cache"
	"github.com/gautambamne/ECom-sub000/internal/model"
)

// memUserRepository is an in-memory stand-in for the durable store. It
// counts reads so tests can tell a cache hit from a read-through.
type memUserRepository struct {
	users           map[string]*model.User
	getByIDCalls    int
	getByEmailCalls int
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{users: map[string]*model.User{}}
}

func (m *memUserRepository) Create(ctx context.Context, u *model.User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	m.getByIDCalls++
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	m.getByEmailCalls++
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserRepository) Update(ctx context.Context, u *model.User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepository) DeleteByID(ctx context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func newCachedRepo(t *testing.T) (*CachedUserRepository, *memUserRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	inner := newMemUserRepository()
	return NewCachedUserRepository(inner, cache.New(client, 2*time.Minute, time.Second, nil)), inner, mr
}

func seedUser() *model.User {
	code := "123456"
	exp := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	return &model.User{
		ID:               "u1",
		Name:             "Ada",
		Email:            "ada@example.com",
		PasswordHash:     "$2a$10$hash",
		Roles:            []string{"user"},
		VerificationCode: &code,
		CodeExpiresAt:    &exp,
		CreatedAt:        time.Now().Truncate(time.Second),
		UpdatedAt:        time.Now().Truncate(time.Second),
	}
}

func TestGetByIDReadThrough(t *testing.T) {
	repo, inner, _ := newCachedRepo(t)
	ctx := context.Background()
	require.NoError(t, inner.Create(ctx, seedUser()))

	first, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, inner.getByIDCalls)

	second, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, 1, inner.getByIDCalls, "second read should be served from cache")

	// the snapshot round-trips the private fields too
	assert.Equal(t, first.PasswordHash, second.PasswordHash)
	require.NotNil(t, second.VerificationCode)
	assert.Equal(t, "123456", *second.VerificationCode)
}

func TestGetByEmailReadThrough(t *testing.T) {
	repo, inner, _ := newCachedRepo(t)
	ctx := context.Background()
	require.NoError(t, inner.Create(ctx, seedUser()))

	_, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	_, err = repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.getByEmailCalls)
}

func TestMissIsNotCached(t *testing.T) {
	repo, inner, mr := newCachedRepo(t)
	ctx := context.Background()

	u, err := repo.GetByID(ctx, "absent")
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.False(t, mr.Exists("users:id:absent"))

	_, err = repo.GetByID(ctx, "absent")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.getByIDCalls)
}

func TestCreateWritesThroughBothKeys(t *testing.T) {
	repo, inner, mr := newCachedRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, seedUser()))
	assert.True(t, mr.Exists("users:id:u1"))
	assert.True(t, mr.Exists("users:email:ada@example.com"))

	// cache answers even if the durable row disappears underneath
	delete(inner.users, "u1")
	byID, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
}

func TestUpdateRefreshesBothKeys(t *testing.T) {
	repo, inner, _ := newCachedRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, seedUser()))

	u := seedUser()
	u.Name = "Ada Lovelace"
	u.IsVerified = true
	require.NoError(t, repo.Update(ctx, u))

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.True(t, got.IsVerified)
	assert.Equal(t, 0, inner.getByIDCalls)
}

func TestDeleteClearsBothKeys(t *testing.T) {
	repo, _, mr := newCachedRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, seedUser()))

	require.NoError(t, repo.DeleteByID(ctx, "u1"))
	assert.False(t, mr.Exists("users:id:u1"))
	assert.False(t, mr.Exists("users:email:ada@example.com"))

	u, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestFlushFallsBackToDurableStore(t *testing.T) {
	repo, inner, mr := newCachedRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, seedUser()))

	mr.FlushAll()
	inner.getByIDCalls = 0

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, inner.getByIDCalls)
	assert.True(t, mr.Exists("users:id:u1"), "read-through should repopulate")
}
