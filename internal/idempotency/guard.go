package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Guard claims client supplied idempotency keys for a limited time.
type Guard struct {
	store  Store
	ttl    time.Duration
	prefix string
}

func NewGuard(store Store, ttl time.Duration, prefix string) (*Guard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}
	if prefix == "" {
		return nil, errors.New("prefix is required")
	}
	return &Guard{store: store, ttl: ttl, prefix: prefix}, nil
}

func (g *Guard) Key(scope, key string) string {
	return fmt.Sprintf("%s:idempotency:%s:%s:%s", keyNamespace, g.prefix, scope, key)
}

// Claim returns true when this call is the first to present key within scope.
func (g *Guard) Claim(ctx context.Context, scope, key string) (bool, error) {
	if key == "" {
		return false, errors.New("idempotency key is required")
	}
	set, err := g.store.SetNX(ctx, g.Key(scope, key), time.Now().UTC().Format(time.RFC3339Nano), g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return set, nil
}

// Release frees a claimed key so the caller may retry.
func (g *Guard) Release(ctx context.Context, scope, key string) error {
	if key == "" {
		return errors.New("idempotency key is required")
	}
	return g.store.Del(ctx, g.Key(scope, key))
}
