package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 10 * time.Minute

// Lock grants at most one worker a cycle at a time.
type Lock interface {
	Acquire(ctx context.Context) (Lease, bool, error)
}

// Lease is a held lock. Release is safe to call after the TTL expired.
type Lease interface {
	Release(ctx context.Context) error
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	ReleaseIfOwner(ctx context.Context, key, token string) (bool, error)
}

// RedisLock is a SETNX lock with a TTL so a crashed worker cannot wedge the
// schedule.
type RedisLock struct {
	store lockStore
	key   string
	ttl   time.Duration
}

func NewRedisLock(store lockStore, key string, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{store: store, key: key, ttl: ttl}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (Lease, bool, error) {
	token := uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return nil, false, fmt.Errorf("setnx %s: %w", l.key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &redisLease{lock: l, token: token}, true, nil
}

type redisLease struct {
	lock  *RedisLock
	token string
}

// Release deletes the key only while it still carries this lease's token.
func (r *redisLease) Release(ctx context.Context) error {
	if _, err := r.lock.store.ReleaseIfOwner(ctx, r.lock.key, r.token); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
