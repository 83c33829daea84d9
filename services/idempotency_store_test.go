package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCmdable struct {
	data    map[string]string
	ttls    map[string]time.Duration
	pingErr error
	getErr  error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", m.pingErr)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	value, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = value.(string)
	m.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.data[key] = value.(string)
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisStore(t *testing.T) {
	cmd := newMockCmdable()
	store := &RedisStore{store: cmd}
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err, "redis.Nil is a miss, not an error")
	assert.False(t, found)

	ok, err := store.SetNX(ctx, "k", "v1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Hour, cmd.ttls["k"])

	ok, err = store.SetNX(ctx, "k", "v2", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "existing keys are never overwritten")

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v1", value)

	require.NoError(t, store.Set(ctx, "k", "v3", time.Minute))
	value, _, _ = store.Get(ctx, "k")
	assert.Equal(t, "v3", value, "Set replaces the value")
	assert.Equal(t, time.Minute, cmd.ttls["k"])

	require.NoError(t, store.Delete(ctx, "k"))
	_, found, _ = store.Get(ctx, "k")
	assert.False(t, found)

	assert.NoError(t, store.Ping(ctx))
	assert.NoError(t, store.Close())
}

func TestRedisStoreErrors(t *testing.T) {
	cmd := newMockCmdable()
	cmd.getErr = errors.New("i/o timeout")
	cmd.pingErr = errors.New("connection refused")
	store := &RedisStore{store: cmd}

	_, _, err := store.Get(context.Background(), "k")
	assert.EqualError(t, err, "i/o timeout")
	assert.Error(t, store.Ping(context.Background()))
}

func TestNewRedisStoreRequiresURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "")
	assert.Error(t, err)

	_, err = NewRedisStore(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestIdempotencyKeyNamespacing(t *testing.T) {
	assert.Equal(t, "hantverk:idempotency:POST|/orders:abc", (&RedisStore{}).IdempotencyKey("POST|/orders", "abc"))
	assert.Equal(t, "hantverk:idempotency:abc", NewMemoryStore().IdempotencyKey(" ", "abc"))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := store.SetNX(ctx, "k", "v1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = store.SetNX(ctx, "k", "v2", time.Minute)
	assert.False(t, ok)

	value, found, _ := store.Get(ctx, "k")
	assert.True(t, found)
	assert.Equal(t, "v1", value)

	now = now.Add(time.Minute)
	_, found, _ = store.Get(ctx, "k")
	assert.False(t, found, "entries expire after their ttl")

	ok, _ = store.SetNX(ctx, "k", "v3", 0)
	assert.True(t, ok)
	now = now.Add(365 * 24 * time.Hour)
	value, found, _ = store.Get(ctx, "k")
	assert.True(t, found, "zero ttl never expires")
	assert.Equal(t, "v3", value)

	require.NoError(t, store.Set(ctx, "k", "v4", time.Minute))
	value, _, _ = store.Get(ctx, "k")
	assert.Equal(t, "v4", value)

	require.NoError(t, store.Delete(ctx, "k"))
	_, found, _ = store.Get(ctx, "k")
	assert.False(t, found)

	assert.NoError(t, store.Ping(ctx))
}
