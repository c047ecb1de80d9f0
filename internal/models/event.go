package models

import (
	"encoding/json"
	"time"
)

// Event types accepted from the voice platform.
const (
	EventTypeLocationUpdate    = "location_update"
	EventTypeLocationConfirmed = "location_confirmed"
	EventTypeEscalationRequest = "escalation_request"
)

// EventTypes lists the recognized event_type values.
var EventTypes = []string{
	EventTypeLocationUpdate,
	EventTypeLocationConfirmed,
	EventTypeEscalationRequest,
}

// KnownEventType reports whether t is a member of the event_type enum.
func KnownEventType(t string) bool {
	for _, v := range EventTypes {
		if v == t {
			return true
		}
	}
	return false
}

// DispatchEventRequest is the POST /v1/dispatch/events payload as it arrives
// on the wire. priority and verified are opaque: the voice platform sends
// whatever its tooling produced and the dashboard renders them as-is.
// location_json may be a JSON object or a JSON-encoded string that itself
// decodes to one; it is kept raw here and decoded during validation.
type DispatchEventRequest struct {
	IncidentID   string          `json:"incident_id"`
	CallSID      string          `json:"call_sid"`
	EventType    string          `json:"event_type"`
	Priority     any             `json:"priority,omitempty"`
	Verified     any             `json:"verified,omitempty"`
	LocationJSON json.RawMessage `json:"location_json,omitempty"`
}

// DispatchEvent is the stored form of a received event. LocationJSON holds
// the decoded value (never the raw JSON-encoded string), and LocationPin is
// attached when geocoding resolved one. Events are immutable once appended.
type DispatchEvent struct {
	ID           string       `json:"id"`
	IncidentID   string       `json:"incident_id"`
	CallSID      string       `json:"call_sid"`
	EventType    string       `json:"event_type"`
	Priority     any          `json:"priority,omitempty"`
	Verified     any          `json:"verified,omitempty"`
	LocationJSON any          `json:"location_json,omitempty"`
	LocationPin  *LocationPin `json:"location_pin,omitempty"`
	ReceivedAt   time.Time    `json:"received_at"`
}

// LocationPin is a geocoded coordinate for an event's address.
type LocationPin struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address"`
}
