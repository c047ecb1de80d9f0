package models

// Ack is returned by POST /v1/dispatch/events on success. missing_fields is
// populated in lenient mode so callers can see what the payload lacked even
// though the event was accepted.
type Ack struct {
	OK            bool     `json:"ok"`
	EventReceived bool     `json:"event_received,omitempty"`
	Duplicate     bool     `json:"duplicate,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

// ErrorResponse is the body of every rejection.
type ErrorResponse struct {
	OK            bool     `json:"ok"`
	Error         string   `json:"error"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

// EventList is returned by GET /v1/dispatch/events.
type EventList struct {
	OK    bool            `json:"ok"`
	Count int             `json:"count"`
	Data  []DispatchEvent `json:"data"`
}
