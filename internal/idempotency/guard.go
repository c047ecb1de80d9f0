// Package idempotency tracks which delivery keys have already been accepted
// so retried webhook deliveries are safe to resend.
package idempotency

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Guard is a bounded, TTL'd set of idempotency keys. Entries fall out after
// the TTL or once the set exceeds its size cap (oldest first), so a
// long-lived process cannot grow without limit. An evicted key makes a very
// late replay look novel again; callers accepting at-least-once delivery
// already tolerate that.
//
// Remember is an atomic check-and-insert: exactly one of any number of
// concurrent calls with the same key observes first == true.
type Guard struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, struct{}]
}

// New builds a Guard holding at most maxKeys entries for at most ttl each.
func New(maxKeys int, ttl time.Duration) *Guard {
	return &Guard{
		cache: expirable.NewLRU[string, struct{}](maxKeys, nil, ttl),
	}
}

// Seen reports whether key has been remembered, without side effects.
// An empty key is never seen: deliveries without a key are all novel.
func (g *Guard) Seen(key string) bool {
	if key == "" {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cache.Contains(key)
}

// Remember inserts key and reports whether this call was the first to do so.
// An empty key is a no-op reported as first.
func (g *Guard) Remember(key string) (first bool) {
	if key == "" {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cache.Contains(key) {
		return false
	}
	g.cache.Add(key, struct{}{})
	return true
}

// Len returns the number of live keys.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cache.Len()
}
