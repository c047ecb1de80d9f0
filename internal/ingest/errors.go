package ingest

// ValidationError rejects a payload under the strict policy: required fields
// missing or an event_type outside the enum. Maps to 422.
type ValidationError struct {
	MissingFields []string
	Reason        string
}

func (e *ValidationError) Error() string { return e.Reason }

// LocationDecodeError rejects a location_json string that does not decode to
// JSON. Always a hard rejection regardless of policy, since address
// extraction needs a structured value. Maps to 422.
type LocationDecodeError struct {
	Cause error
}

func (e *LocationDecodeError) Error() string { return "location_json must be JSON" }

func (e *LocationDecodeError) Unwrap() error { return e.Cause }
