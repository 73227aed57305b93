package guard

import (
	"context"
	"sync"
	"time"

	"github.com/arcadia/loyalty/internal/domain"
)

// IdempotencyGuard deduplicates requests by idempotency key. Keys expire
// after the TTL so the map does not grow without bound.
type IdempotencyGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
}

// NewIdempotencyGuard creates a new in-memory idempotency guard whose
// keys expire after ttl.
func NewIdempotencyGuard(ttl time.Duration) *IdempotencyGuard {
	return &IdempotencyGuard{
		seen: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// Check returns whether the given key has already been processed within
// the TTL. Expired keys are evicted on the way through.
func (ig *IdempotencyGuard) Check(_ context.Context, key string) domain.GuardResult {
	if key == "" {
		return domain.GuardResult{Allowed: true}
	}

	ig.mu.Lock()
	defer ig.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-ig.ttl)
	for k, seenAt := range ig.seen {
		if seenAt.Before(cutoff) {
			delete(ig.seen, k)
		}
	}

	if _, ok := ig.seen[key]; ok {
		return domain.GuardResult{
			Allowed: false,
			Reason:  "duplicate request: idempotency key already processed",
			Guard:   "idempotency",
		}
	}

	ig.seen[key] = now
	return domain.GuardResult{Allowed: true}
}

// Remove deletes a key from the seen set (for retry scenarios).
func (ig *IdempotencyGuard) Remove(key string) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	delete(ig.seen, key)
}
