package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, 2*time.Minute, time.Second, nil), mr
}

func TestSetGetRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ok := store.Set(ctx, "users:id:1", entry{ID: "1", Name: "Ada"}, nil)
	require.True(t, ok)

	got, ok := GetJSON[entry](ctx, store, "users:id:1")
	require.True(t, ok)
	assert.Equal(t, "Ada", got.Name)
}

func TestGetMiss(t *testing.T) {
	store, _ := newTestStore(t)

	_, ok := store.Get(context.Background(), "absent")
	assert.False(t, ok)
}

func TestSetNX(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.True(t, store.Set(ctx, "k", entry{Name: "first"}, &SetOptions{Mode: ModeNX}))
	assert.False(t, store.Set(ctx, "k", entry{Name: "second"}, &SetOptions{Mode: ModeNX}))

	got, ok := GetJSON[entry](ctx, store, "k")
	require.True(t, ok)
	assert.Equal(t, "first", got.Name)
}

func TestSetXXRequiresExistingKey(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	assert.False(t, store.Set(ctx, "k", entry{}, &SetOptions{Mode: ModeXX}))
	require.True(t, store.Set(ctx, "k", entry{Name: "v1"}, nil))
	assert.True(t, store.Set(ctx, "k", entry{Name: "v2"}, &SetOptions{Mode: ModeXX}))
}

func TestSetKeepTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.True(t, store.Set(ctx, "k", entry{Name: "v1"}, &SetOptions{TTL: 30 * time.Second}))
	mr.FastForward(10 * time.Second)

	require.True(t, store.Set(ctx, "k", entry{Name: "v2"}, &SetOptions{KeepTTL: true}))
	assert.LessOrEqual(t, mr.TTL("k"), 20*time.Second)
}

func TestGetAndRefreshSlidesExpiration(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.True(t, store.Set(ctx, "k", entry{Name: "v"}, nil))
	mr.FastForward(90 * time.Second)
	require.Less(t, mr.TTL("k"), time.Minute)

	_, ok := store.GetAndRefresh(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, 2*time.Minute, mr.TTL("k"))
}

func TestGetAndRefreshMissWritesNothing(t *testing.T) {
	store, mr := newTestStore(t)

	_, ok := store.GetAndRefresh(context.Background(), "absent")
	assert.False(t, ok)
	assert.False(t, mr.Exists("absent"))
}

func TestDeletePattern(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.True(t, store.Set(ctx, "products:list:1:20", []entry{{Name: "a"}}, nil))
	require.True(t, store.Set(ctx, "products:list:2:20", []entry{{Name: "b"}}, nil))
	require.True(t, store.Set(ctx, "users:id:1", entry{Name: "ada"}, nil))

	store.DeletePattern(ctx, "products:list:*")

	assert.False(t, mr.Exists("products:list:1:20"))
	assert.False(t, mr.Exists("products:list:2:20"))
	assert.True(t, mr.Exists("users:id:1"))
}

func TestExistsAndTTL(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	assert.False(t, store.Exists(ctx, "k"))
	require.True(t, store.Set(ctx, "k", entry{}, nil))
	assert.True(t, store.Exists(ctx, "k"))

	d, ok := store.TTL(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, 2*time.Minute, d)

	_, ok = store.TTL(ctx, "absent")
	assert.False(t, ok)
}

func TestPoisonedEntryReadsAsMiss(t *testing.T) {
	store, mr := newTestStore(t)

	require.NoError(t, mr.Set("k", "{not json"))

	_, ok := GetJSON[entry](context.Background(), store, "k")
	assert.False(t, ok)
}

func TestBackendDownDegrades(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := New(client, time.Minute, 100*time.Millisecond, nil)
	ctx := context.Background()

	require.True(t, store.Set(ctx, "k", entry{}, nil))
	mr.Close()

	assert.False(t, store.Set(ctx, "k", entry{}, nil))
	_, ok := store.Get(ctx, "k")
	assert.False(t, ok)
	assert.False(t, store.Exists(ctx, "k"))
	store.Delete(ctx, "k")
	store.DeletePattern(ctx, "k*")
}
