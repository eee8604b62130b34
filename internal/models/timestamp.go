package models

import (
	"encoding/json"
	"strings"
	"time"
)

// storeTimeLayouts are the wire formats the record store emits for date
// fields. The first is what it accepts back on writes.
var storeTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999Z07:00",
	"2006-01-02 15:04:05.999Z",
	"2006-01-02 15:04:05",
}

// Timestamp wraps time.Time with the store's date encoding.
type Timestamp struct {
	time.Time
}

// Now returns the current UTC instant as a Timestamp.
func Now() Timestamp {
	return Timestamp{time.Now().UTC()}
}

// MarshalJSON encodes as RFC3339 UTC; the zero value encodes as "".
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// UnmarshalJSON accepts any of the store's date renderings.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range storeTimeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}
