package payfast

import (
	"context"
	"time"

	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	"github.com/hkb-commerce/storefront-backend/pkg/redis"
)

const guardScope = "payfast"

// IdempotencyGuard is a redis fast path that drops notification replays
// before they hit the database. The ledger's unique constraint remains the
// authority; losing a redis marker only costs a harmless re-check.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyGuard wires the guard.
func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard requires a store")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyGuard{store: store, ttl: ttl}, nil
}

// CheckAndMark claims the event id. Returns false when another delivery
// already claimed it. A redis failure fails open: processing proceeds and
// the database constraint catches any duplicate.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	won, err := g.store.SetNX(ctx, redis.IdempotencyKey(guardScope, eventID), "1", g.ttl)
	if err != nil {
		return true, err
	}
	return won, nil
}

// Delete releases the marker so the gateway's retry can be reprocessed
// after a downstream failure.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	return g.store.Del(ctx, redis.IdempotencyKey(guardScope, eventID))
}
