package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hkb-commerce/storefront-backend/pkg/config"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

// keyNamespace prefixes every key this service writes.
const keyNamespace = "sf:"

// cmdable is the slice of the go-redis API the client uses, kept narrow so
// tests can fake it.
type cmdable interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *goredis.BoolCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	Incr(ctx context.Context, key string) *goredis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *goredis.BoolCmd
	Ping(ctx context.Context) *goredis.StatusCmd
}

// Client wraps go-redis with the key namespace applied.
type Client struct {
	rdb    cmdable
	closer func() error
}

// New connects to redis and verifies the connection.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "ping redis")
	}
	return &Client{rdb: rdb, closer: rdb.Close}, nil
}

// NewWithCmdable wraps a fake for tests.
func NewWithCmdable(rdb cmdable) *Client {
	return &Client{rdb: rdb, closer: func() error { return nil }}
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.closer()
}

// Ping verifies the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "ping redis")
	}
	return nil
}

// Key namespaces the given parts into a redis key.
func Key(parts ...string) string {
	key := keyNamespace
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += p
	}
	return key
}

// Get returns the value at key, or ok=false when the key is absent.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "redis get")
	}
	return val, true, nil
}

// SetNX sets key only when absent, returning whether this call won.
func (c *Client) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	won, err := c.rdb.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "redis setnx")
	}
	return won, nil
}

// Del removes the given key.
func (c *Client) Del(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "redis del")
	}
	return nil
}

// FixedWindowAllow applies a fixed-window counter limit to the given scope.
// The first hit in a window sets the expiry.
func (c *Client) FixedWindowAllow(ctx context.Context, scope, subject string, limit int, window time.Duration) (bool, error) {
	bucket := time.Now().Unix() / int64(window.Seconds())
	key := Key("rate", scope, subject, fmt.Sprintf("%d", bucket))

	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "redis incr")
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "redis expire")
		}
	}
	return count <= int64(limit), nil
}
