// Package ratelimit provides a keyed token-bucket limiter. It guards
// scan and import triggers so a misbehaving client cannot queue
// overlapping runs against the same library or folder.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Keyed manages per-key rate limiting. Each unique key gets its own
// independent token bucket.
type Keyed struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// New creates a keyed limiter allowing rps requests per second per key
// with the given burst.
func New(rps float64, burst int) *Keyed {
	return &Keyed{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether a request for the key may proceed now.
func (k *Keyed) Allow(key string) bool {
	return k.limiter(key).Allow()
}

// Wait blocks until a request for the key is allowed or the context is
// canceled.
func (k *Keyed) Wait(ctx context.Context, key string) error {
	return k.limiter(key).Wait(ctx)
}

func (k *Keyed) limiter(key string) *rate.Limiter {
	k.mu.RLock()
	limiter, exists := k.limiters[key]
	k.mu.RUnlock()
	if exists {
		return limiter
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if limiter, exists = k.limiters[key]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(k.limit, k.burst)
	k.limiters[key] = limiter
	return limiter
}
