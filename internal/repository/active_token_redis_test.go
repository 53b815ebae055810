package repository

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/task-service/internal/auth"
)

var (
	_ auth.RevocationStore = (*RedisActiveTokenStore)(nil)
	_ auth.RevocationStore = (*ActiveTokenRepository)(nil)
)

// fakeRedis implements the four commands the store issues; any other
// command panics through the nil embedded interface.
type fakeRedis struct {
	redis.Cmdable

	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisActiveTokenStore_Lifecycle(t *testing.T) {
	fake := newFakeRedis()
	store := NewRedisActiveTokenStore(fake, "")
	ctx := context.Background()

	ok, err := store.Exists(ctx, "tok-1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Add(ctx, "tok-1"))
	require.NoError(t, store.Add(ctx, "tok-1"))
	require.Len(t, fake.data, 1)

	ok, err = store.Exists(ctx, "tok-1")
	require.NoError(t, err)
	require.True(t, ok)

	removed, err := store.Remove(ctx, "tok-1")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = store.Remove(ctx, "tok-1")
	require.NoError(t, err)
	require.False(t, removed)
}

func TestRedisActiveTokenStore_KeysAreHashedAndPersistent(t *testing.T) {
	fake := newFakeRedis()
	store := NewRedisActiveTokenStore(fake, "test:")

	require.NoError(t, store.Add(context.Background(), "secret.jwt.value"))

	for key, ttl := range fake.ttls {
		require.True(t, strings.HasPrefix(key, "test:"))
		require.NotContains(t, key, "secret.jwt.value")
		require.Len(t, strings.TrimPrefix(key, "test:"), 64)
		require.Zero(t, ttl)
	}
}

func TestRedisActiveTokenStore_Find(t *testing.T) {
	store := NewRedisActiveTokenStore(newFakeRedis(), "")
	ctx := context.Background()

	_, err := store.Find(ctx, "tok-1")
	require.ErrorIs(t, err, pgx.ErrNoRows)

	before := time.Now().UTC()
	require.NoError(t, store.Add(ctx, "tok-1"))

	record, err := store.Find(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, "tok-1", record.Token)
	require.False(t, record.CreatedAt.Before(before))
}
