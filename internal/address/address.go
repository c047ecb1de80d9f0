// Package address turns the location payload of a dispatch event into a
// single postal address line suitable for geocoding.
package address

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Field order mirrors how callers read an address aloud: number, street,
// district, city, region, country.
var fieldOrder = []string{
	"building_number",
	"street_name",
	"district_or_barangay",
	"city",
	"region",
	"country",
}

// Format derives one address line from a decoded location_json value.
//
// A string value is trusted as an already-formatted address and returned
// verbatim. An object contributes its known address fields in order, either
// directly or nested under an "address" key, skipping anything absent.
// Every other shape yields "", meaning no address is available.
func Format(location any) string {
	switch v := location.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		fields := v
		switch nested := v["address"].(type) {
		case nil:
			// no nested address, use the top-level fields
		case map[string]any:
			fields = nested
		case string:
			if nested != "" {
				// an address key that is not an object carries no usable parts
				return ""
			}
		default:
			return ""
		}

		parts := make([]string, 0, len(fieldOrder))
		for _, name := range fieldOrder {
			if s := stringify(fields[name]); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.TrimSpace(strings.Join(parts, " "))
	default:
		return ""
	}
}

// stringify renders an address part. Street numbers arrive as strings or
// numbers depending on the extraction tooling, so both are accepted.
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	default:
		return ""
	}
}
