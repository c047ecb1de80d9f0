// Package postgres provides the durable event store, selected by setting
// DATABASE_URL. Unlike the in-memory store it keeps events and idempotency
// keys across restarts.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentineldispatch/dispatch-ingest/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// Store is the Postgres-backed persistence layer for dispatch events.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a connection pool and fails fast if the database is unreachable.
func New(databaseURL string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (s *Store) EnsureSchema() error {
	_, err := s.pool.Exec(context.Background(), schemaSQL)
	return err
}

// Ping is used by the readiness endpoint to validate connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Append stores ev and remembers idemKey in one transaction. The unique
// constraint on idempotency_keys is the dedupe decision, which is compatible
// with retries and at-least-once delivery.
func (s *Store) Append(ctx context.Context, ev *models.DispatchEvent, idemKey string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	if idemKey != "" {
		// RETURNING 1 only when inserted; a duplicate key returns no rows.
		var one int
		err := tx.QueryRow(ctx, `
			INSERT INTO idempotency_keys(key)
			VALUES ($1)
			ON CONFLICT (key) DO NOTHING
			RETURNING 1
		`, idemKey).Scan(&one)
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}

	priority, err := marshalOpaque(ev.Priority)
	if err != nil {
		return false, err
	}
	verified, err := marshalOpaque(ev.Verified)
	if err != nil {
		return false, err
	}
	location, err := marshalOpaque(ev.LocationJSON)
	if err != nil {
		return false, err
	}
	pin, err := marshalOpaque(ev.LocationPin)
	if err != nil {
		return false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO dispatch_events(
			id, incident_id, call_sid, event_type,
			priority, verified, location_json, location_pin, received_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, ev.ID, ev.IncidentID, ev.CallSID, ev.EventType,
		priority, verified, location, pin, ev.ReceivedAt)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Seen reports whether idemKey has been remembered.
func (s *Store) Seen(ctx context.Context, idemKey string) (bool, error) {
	if idemKey == "" {
		return false, nil
	}
	var seen bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM idempotency_keys WHERE key = $1)
	`, idemKey).Scan(&seen)
	return seen, err
}

// List returns all stored events, newest insertion first.
func (s *Store) List(ctx context.Context) ([]models.DispatchEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, incident_id, call_sid, event_type,
		       priority, verified, location_json, location_pin, received_at
		FROM dispatch_events
		ORDER BY seq DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.DispatchEvent{}
	for rows.Next() {
		var (
			ev       models.DispatchEvent
			priority []byte
			verified []byte
			location []byte
			pin      []byte
		)
		if err := rows.Scan(&ev.ID, &ev.IncidentID, &ev.CallSID, &ev.EventType,
			&priority, &verified, &location, &pin, &ev.ReceivedAt); err != nil {
			return nil, err
		}

		if err := unmarshalOpaque(priority, &ev.Priority); err != nil {
			return nil, err
		}
		if err := unmarshalOpaque(verified, &ev.Verified); err != nil {
			return nil, err
		}
		if err := unmarshalOpaque(location, &ev.LocationJSON); err != nil {
			return nil, err
		}
		if len(pin) > 0 {
			var p models.LocationPin
			if err := json.Unmarshal(pin, &p); err != nil {
				return nil, err
			}
			ev.LocationPin = &p
		}

		events = append(events, ev)
	}
	return events, rows.Err()
}

// marshalOpaque encodes an opaque attribute for a JSONB column; nil stays
// NULL rather than becoming the JSON literal "null".
func marshalOpaque(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	if p, ok := v.(*models.LocationPin); ok && p == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalOpaque(b []byte, dst *any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}
