package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/assettrack-backend/pkg/config"
)

func newTestClient(at time.Time) (*Client, *mockCmdable) {
	mock := newMockCmdable()
	now := at
	return &Client{cmd: mock, now: func() time.Time { return now }}, mock
}

func TestFixedWindowAllowCountsWithinWindow(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 4, 10, 0, 12, 0, time.UTC)
	client, mock := newTestClient(start)

	allowed, count, err := client.FixedWindowAllow(ctx, "user-1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(1), count)

	allowed, count, err = client.FixedWindowAllow(ctx, "user-1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(2), count)

	allowed, _, err = client.FixedWindowAllow(ctx, "user-1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	key := client.RateLimitKey("user-1", start.Truncate(time.Minute))
	require.Len(t, mock.expireCalls, 1, "ttl is only set by the first increment")
	assert.Equal(t, expireCall{key: key, ttl: time.Minute}, mock.expireCalls[0])
}

func TestFixedWindowAllowResetsOnNextWindow(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 4, 10, 0, 59, 0, time.UTC)
	mock := newMockCmdable()
	client := &Client{cmd: mock, now: func() time.Time { return at }}

	allowed, _, err := client.FixedWindowAllow(ctx, "user-1", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)
	allowed, _, err = client.FixedWindowAllow(ctx, "user-1", 1, time.Minute)
	require.NoError(t, err)
	require.False(t, allowed)

	// A lost EXPIRE must not keep the caller blocked past the window.
	at = at.Add(2 * time.Second)
	allowed, count, err := client.FixedWindowAllow(ctx, "user-1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(1), count)
}

func TestFixedWindowAllowRejectsBadWindow(t *testing.T) {
	client, _ := newTestClient(time.Now())
	_, _, err := client.FixedWindowAllow(context.Background(), "user-1", 1, 0)
	assert.Error(t, err)
}

func TestFixedWindowAllowSurfacesIncrFailure(t *testing.T) {
	client, mock := newTestClient(time.Now())
	mock.incrErr = errors.New("connection reset")
	_, _, err := client.FixedWindowAllow(context.Background(), "user-1", 1, time.Minute)
	assert.ErrorContains(t, err, "connection reset")
}

func TestReleaseIfOwner(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(time.Now())
	key := client.JobLockKey("cron")

	won, err := client.SetNX(ctx, key, "lease-a", time.Minute)
	require.NoError(t, err)
	require.True(t, won)
	won, err = client.SetNX(ctx, key, "lease-b", time.Minute)
	require.NoError(t, err)
	require.False(t, won)

	released, err := client.ReleaseIfOwner(ctx, key, "lease-b")
	require.NoError(t, err)
	assert.False(t, released)
	assert.Equal(t, "lease-a", mock.data[key])

	released, err = client.ReleaseIfOwner(ctx, key, "lease-a")
	require.NoError(t, err)
	assert.True(t, released)
	_, err = client.Get(ctx, key)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	ctx := context.Background()
	assert.ErrorIs(t, client.Ping(ctx), errNotInitialized)
	_, err := client.ReleaseIfOwner(ctx, "k", "t")
	assert.ErrorIs(t, err, errNotInitialized)
	_, _, err = client.FixedWindowAllow(ctx, "s", 1, time.Second)
	assert.ErrorIs(t, err, errNotInitialized)
	assert.NoError(t, client.Close(), "close without a connection is a no-op")
}

func TestKeyFamilies(t *testing.T) {
	client := &Client{}
	window := time.Unix(1772618400, 0)
	assert.Equal(t, "at:idempotency:u1:POST /api/v1/assets:k1", client.IdempotencyKey("u1:POST /api/v1/assets", "k1"))
	assert.Equal(t, "at:idempotency:u1", client.IdempotencyKey("u1", " "))
	assert.Equal(t, "at:rate_limit:u1:1772618400", client.RateLimitKey("u1", window))
	assert.Equal(t, "at:lock:cron", client.JobLockKey("cron"))
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{
		URL:         "redis://:secret@cache:6380/3",
		PoolSize:    12,
		DialTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 12, opts.PoolSize)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 1})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 1, opts.DB)
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	expireCalls []expireCall
	incrErr     error
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	if m.incrErr != nil {
		return redis.NewIntResult(0, m.incrErr)
	}
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: ttl})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

// Eval only understands the compare-and-delete release script.
func (m *mockCmdable) Eval(_ context.Context, script string, keys []string, args ...any) *redis.Cmd {
	if script != releaseIfOwnerScript || len(keys) != 1 || len(args) != 1 {
		return redis.NewCmdResult(nil, fmt.Errorf("unexpected script"))
	}
	if m.data[keys[0]] != fmt.Sprint(args[0]) {
		return redis.NewCmdResult(int64(0), nil)
	}
	delete(m.data, keys[0])
	return redis.NewCmdResult(int64(1), nil)
}
