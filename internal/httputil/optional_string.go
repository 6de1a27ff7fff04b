package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalID carries a nullable reference field of a PATCH body (RFC 7396):
//   - Present=false: field absent, leave the reference alone
//   - Present=true, Value=nil: JSON null, detach to the root
//   - Present=true, Value=&"id": point at id
type OptionalID struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only called when the field is present.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	// An empty id means the root as well
	if s == "" {
		o.Value = nil
		return nil
	}
	o.Value = &s
	return nil
}
