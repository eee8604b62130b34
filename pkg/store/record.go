package store

import (
	"encoding/json"
	"errors"
	"time"
)

// Record is a decoded store record. Field access is dynamic because the store
// schema is a remote contract, not a compile-time type.
type Record map[string]interface{}

// ID returns the record identifier.
func (r Record) ID() string {
	return r.GetString("id")
}

// GetString returns the named field as a string, or "".
func (r Record) GetString(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// GetFloat returns the named field as a float64, or 0.
func (r Record) GetFloat(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

// GetBool returns the named field as a bool, or false.
func (r Record) GetBool(key string) bool {
	if v, ok := r[key].(bool); ok {
		return v
	}
	return false
}

// GetTime parses the named field as a store timestamp, zero on failure.
func (r Record) GetTime(key string) time.Time {
	raw := r.GetString(key)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999Z07:00", "2006-01-02 15:04:05.999Z"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// GetRaw re-encodes the named field as JSON. Nil when absent.
func (r Record) GetRaw(key string) json.RawMessage {
	v, ok := r[key]
	if !ok || v == nil {
		return nil
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return buf
}

// Expand returns the expanded relation record for the given field, nil when
// the expansion is absent or unresolved.
func (r Record) Expand(field string) Record {
	expand, ok := r["expand"].(map[string]interface{})
	if !ok {
		return nil
	}
	rel, ok := expand[field].(map[string]interface{})
	if !ok {
		return nil
	}
	return Record(rel)
}

// Decode unmarshals the record into a typed destination.
func (r Record) Decode(dst interface{}) error {
	buf, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, dst)
}

func asAPIError(err error, target **APIError) bool {
	return errors.As(err, target)
}
