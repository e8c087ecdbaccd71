package cache

import (
	"context"
	"fmt"
	"time"
)

// store is the subset of RedisClient the replay guard needs.
type store interface {
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// ReplayGuard remembers which invoices already had their paid event
// dispatched, so a gateway retry of the same callback is acknowledged
// without dispatching twice.
type ReplayGuard struct {
	store store
	ttl   time.Duration
}

// NewReplayGuard creates a ReplayGuard backed by Redis.
func NewReplayGuard(redis *RedisClient, ttl time.Duration) *ReplayGuard {
	return newReplayGuard(redis, ttl)
}

func newReplayGuard(s store, ttl time.Duration) *ReplayGuard {
	return &ReplayGuard{store: s, ttl: ttl}
}

// keyByInvoice returns the Redis key for a dispatched invoice.
func (g *ReplayGuard) keyByInvoice(invoiceNo string) string {
	return fmt.Sprintf("callback:invoice:%s", invoiceNo)
}

// Acquire claims invoiceNo. It returns false when the invoice was already
// claimed within the TTL.
func (g *ReplayGuard) Acquire(ctx context.Context, invoiceNo string) (bool, error) {
	ok, err := g.store.SetNX(ctx, g.keyByInvoice(invoiceNo), time.Now().UTC().Format(time.RFC3339), g.ttl)
	if err != nil {
		return false, fmt.Errorf("replay guard: %w", err)
	}
	return ok, nil
}

// Release forgets invoiceNo so a later callback can dispatch it again.
func (g *ReplayGuard) Release(ctx context.Context, invoiceNo string) error {
	return g.store.Delete(ctx, g.keyByInvoice(invoiceNo))
}
