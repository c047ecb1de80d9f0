// Package ingest implements the webhook ingestion pipeline: dedupe,
// validate, geocode, persist, acknowledge.
package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sentineldispatch/dispatch-ingest/internal/address"
	"github.com/sentineldispatch/dispatch-ingest/internal/models"
	"github.com/sentineldispatch/dispatch-ingest/internal/store"
)

// Geocoder resolves an address line to a pin, or nil when none is available.
// Lookups are best-effort and must never return an error.
type Geocoder interface {
	Geocode(ctx context.Context, addr string) *models.LocationPin
}

// Pipeline processes one inbound dispatch event at a time. All shared state
// lives behind the store, so independent instances can be built per test.
type Pipeline struct {
	store  store.EventStore
	geo    Geocoder
	strict bool
	log    zerolog.Logger
}

// New builds a Pipeline. geo may be nil when geocoding is disabled.
func New(st store.EventStore, geo Geocoder, strict bool, log zerolog.Logger) *Pipeline {
	return &Pipeline{store: st, geo: geo, strict: strict, log: log}
}

// Result is a successful ingestion outcome.
type Result struct {
	// Duplicate marks an idempotent replay; Event is nil and nothing
	// was stored.
	Duplicate bool

	// MissingFields lists lenient-policy findings reported back to the
	// caller even though the event was accepted.
	MissingFields []string

	// Event is the stored record, pin attached when one resolved.
	Event *models.DispatchEvent
}

// Ingest runs the full pipeline for one delivery. Returned errors are
// *ValidationError, *LocationDecodeError, or a storage failure; everything
// else (notably geocoding) is absorbed as best-effort.
func (p *Pipeline) Ingest(ctx context.Context, req *models.DispatchEventRequest, idemKey string) (*Result, error) {
	// Replay short-circuit: skip validation, storage, and geocoding.
	// Read-only on purpose; the key is only remembered once an event is
	// actually accepted, so a rejected request never poisons its key.
	if idemKey != "" {
		seen, err := p.store.Seen(ctx, idemKey)
		if err != nil {
			return nil, err
		}
		if seen {
			return &Result{Duplicate: true}, nil
		}
	}

	location, err := decodeLocation(req.LocationJSON)
	if err != nil {
		return nil, err
	}

	f := validate(req)
	if p.strict {
		if len(f.missing) > 0 {
			return nil, &ValidationError{
				MissingFields: f.missing,
				Reason:        "Missing " + strings.Join(f.missing, ", "),
			}
		}
		if f.invalidEventType {
			return nil, &ValidationError{Reason: "Invalid event_type"}
		}
	} else if !f.empty() {
		p.log.Warn().
			Strs("missing_fields", f.missing).
			Bool("invalid_event_type", f.invalidEventType).
			Str("event_type", req.EventType).
			Msg("payload accepted with validation findings")
	}

	ev := &models.DispatchEvent{
		ID:           uuid.New().String(),
		IncidentID:   req.IncidentID,
		CallSID:      req.CallSID,
		EventType:    req.EventType,
		Priority:     req.Priority,
		Verified:     req.Verified,
		LocationJSON: location,
		ReceivedAt:   time.Now().UTC(),
	}

	// Best-effort pin resolution before the append so the stored record
	// carries it. A failed lookup only means the pin is absent.
	if addr := address.Format(location); addr != "" {
		if p.geo != nil {
			ev.LocationPin = p.geo.Geocode(ctx, addr)
		}
		if ev.LocationPin != nil {
			p.log.Info().
				Float64("lat", ev.LocationPin.Lat).
				Float64("lng", ev.LocationPin.Lng).
				Str("formatted_address", ev.LocationPin.FormattedAddress).
				Msg("location pin resolved")
		} else {
			p.log.Warn().Str("incident_id", req.IncidentID).Msg("location pin not resolved")
		}
	} else if location != nil {
		p.log.Warn().Str("incident_id", req.IncidentID).Msg("missing address details")
	}

	stored, err := p.store.Append(ctx, ev, idemKey)
	if err != nil {
		return nil, err
	}
	if !stored {
		// A concurrent delivery with the same key won the append.
		return &Result{Duplicate: true}, nil
	}

	p.log.Info().
		Str("event_id", ev.ID).
		Str("incident_id", ev.IncidentID).
		Str("call_sid", ev.CallSID).
		Str("event_type", ev.EventType).
		Msg("event received")

	return &Result{Event: ev, MissingFields: f.missing}, nil
}
