package ingest

import (
	"github.com/goccy/go-json"

	"github.com/sentineldispatch/dispatch-ingest/internal/models"
)

// requiredFields are the attributes every dispatch event must carry.
var requiredFields = []string{"incident_id", "call_sid", "event_type"}

// findings is the outcome of validating a payload. Under the lenient policy
// findings are logged and reported back informationally; under the strict
// policy any finding rejects the request.
type findings struct {
	missing          []string
	invalidEventType bool
}

func (f findings) empty() bool {
	return len(f.missing) == 0 && !f.invalidEventType
}

// validate checks required-field presence and event_type enum membership.
// The enum is only checked when event_type is present: absence is already a
// missing-field finding.
func validate(req *models.DispatchEventRequest) findings {
	var f findings

	values := map[string]string{
		"incident_id": req.IncidentID,
		"call_sid":    req.CallSID,
		"event_type":  req.EventType,
	}
	for _, name := range requiredFields {
		if values[name] == "" {
			f.missing = append(f.missing, name)
		}
	}

	if req.EventType != "" && !models.KnownEventType(req.EventType) {
		f.invalidEventType = true
	}

	return f
}

// decodeLocation resolves the location_json attribute to its structured
// value. An object decodes as-is; a string must itself be valid JSON, whose
// decoded value is used instead. A string that fails to decode is a
// LocationDecodeError, a hard rejection in both policies.
func decodeLocation(raw []byte) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var outer any
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, &LocationDecodeError{Cause: err}
	}

	s, ok := outer.(string)
	if !ok {
		return outer, nil
	}

	var inner any
	if err := json.Unmarshal([]byte(s), &inner); err != nil {
		return nil, &LocationDecodeError{Cause: err}
	}
	return inner, nil
}
