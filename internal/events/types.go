// Package events holds the event resource as the remote API returns it and
// the ordered collection the view keeps a copy of.
package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is the server-assigned identifier of an event. The API may encode it
// as a JSON number or a JSON string; it is treated as opaque text and
// echoed back verbatim in request paths.
type ID string

// NoID is the zero ID, used when no event is targeted.
const NoID ID = ""

func (id ID) String() string { return string(id) }

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool { return id == NoID }

// UnmarshalJSON accepts both numeric and string identifiers.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return fmt.Errorf("event id: null or empty")
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("event id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("event id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes canonical integers as JSON numbers and everything else
// as strings, so an ID round-trips in the shape the server used.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(string(id)), nil
	}
	return json.Marshal(string(id))
}

// Attributes are the user-editable fields of an event.
type Attributes struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Event is one record of the remote "events" resource.
type Event struct {
	ID         ID         `json:"id"`
	Attributes Attributes `json:"attributes"`
}
