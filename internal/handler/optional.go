package handler

import (
	"bytes"
	"encoding/json"
)

// OptionalString separates an absent JSON field (Present=false) from an explicit
// null (Present=true, Value=nil).
type OptionalString struct {
	Present bool
	Value   *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
