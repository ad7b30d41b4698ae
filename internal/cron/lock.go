package cron

import (
	"context"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	"github.com/hkb-commerce/storefront-backend/pkg/redis"
)

// RedisLock is a best-effort distributed lock so only one worker replica
// runs a given job per tick. Owner is checked before release to avoid
// dropping a lock another replica has since acquired.
type RedisLock struct {
	store redis.IdempotencyStore
	owner string
	ttl   time.Duration
}

// NewRedisLock builds a lock with a random owner token.
func NewRedisLock(store redis.IdempotencyStore, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "redis lock requires a store")
	}
	return &RedisLock{store: store, owner: uuid.NewString(), ttl: ttl}, nil
}

// Acquire claims the named lock. Returns false when another replica holds it.
func (l *RedisLock) Acquire(ctx context.Context, name string) (bool, error) {
	return l.store.SetNX(ctx, redis.Key("cron", "lock", name), l.owner, l.ttl)
}

// Release frees the lock if this replica still owns it.
func (l *RedisLock) Release(ctx context.Context, name string) error {
	key := redis.Key("cron", "lock", name)
	val, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok || val != l.owner {
		return nil
	}
	return l.store.Del(ctx, key)
}
