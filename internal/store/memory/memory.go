// Package memory provides the default process-local event store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sentineldispatch/dispatch-ingest/internal/idempotency"
	"github.com/sentineldispatch/dispatch-ingest/internal/models"
)

// Store keeps events in an in-process slice guarded by a mutex. State is
// lost on restart; the idempotency set is bounded so only the event list
// itself grows with traffic.
type Store struct {
	mu     sync.Mutex
	events []models.DispatchEvent
	guard  *idempotency.Guard
}

// New builds a Store whose idempotency set holds at most maxKeys entries
// for at most ttl each.
func New(maxKeys int, ttl time.Duration) *Store {
	return &Store{
		guard: idempotency.New(maxKeys, ttl),
	}
}

// Append stores ev unless idemKey was already remembered. The guard's
// atomic check-and-insert is the dedupe decision; the append itself happens
// under the same lock so List never observes a half-applied delivery.
func (s *Store) Append(_ context.Context, ev *models.DispatchEvent, idemKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.guard.Remember(idemKey) {
		return false, nil
	}
	s.events = append(s.events, *ev)
	return true, nil
}

// Seen reports whether idemKey has been remembered.
func (s *Store) Seen(_ context.Context, idemKey string) (bool, error) {
	return s.guard.Seen(idemKey), nil
}

// List returns stored events newest first.
func (s *Store) List(_ context.Context) ([]models.DispatchEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.DispatchEvent, len(s.events))
	for i, ev := range s.events {
		out[len(s.events)-1-i] = ev
	}
	return out, nil
}

// Ping always succeeds: there is no external dependency to reach.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}
