// Package store defines the storage capability the ingestion pipeline needs:
// remember what has been processed and keep the received events inspectable.
package store

import (
	"context"

	"github.com/sentineldispatch/dispatch-ingest/internal/models"
)

// EventStore persists dispatch events and owns the idempotency decision.
//
// Append is the single source of truth for deduplication: the key check and
// the event append happen in one atomic step, so two concurrent deliveries
// bearing the same key cannot both be stored. A rejected request never
// reaches Append, so its key stays fresh for a corrected resubmission.
type EventStore interface {
	// Append stores ev and remembers idemKey in one atomic step.
	// stored == false means idemKey was already known and ev was discarded.
	// An empty idemKey disables deduplication for this delivery.
	Append(ctx context.Context, ev *models.DispatchEvent, idemKey string) (stored bool, err error)

	// Seen reports whether idemKey has been remembered, without side effects.
	// The pipeline uses it to short-circuit replays before validation.
	Seen(ctx context.Context, idemKey string) (bool, error)

	// List returns all stored events, newest first, matching the
	// dashboard's newest-first convention.
	List(ctx context.Context) ([]models.DispatchEvent, error)

	// Ping reports whether the store's backing dependency is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close()
}
