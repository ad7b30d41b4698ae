package redis

import (
	"context"
	"time"
)

// IdempotencyStore is the narrow surface the webhook guard needs. *Client
// satisfies it; tests supply an in-memory fake.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
}

// IdempotencyKey builds the namespaced key for a processed-event marker.
func IdempotencyKey(scope, eventID string) string {
	return Key("idem", scope, eventID)
}
