package datamodel

import (
	"bytes"
	"encoding/json"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time is a server timestamp. Unparseable text is kept in Raw so it can still be shown.
type Time struct {
	time.Time
	Raw string
}

func (t *Time) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = Time{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '"' {
		var ms int64
		if err := json.Unmarshal(data, &ms); err != nil {
			return nil
		}
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t.Raw = s
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		if t.Raw == "" {
			return []byte("null"), nil
		}
		return json.Marshal(t.Raw)
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// SortValue is nil for a missing timestamp so it orders first.
func (t Time) SortValue() interface{} {
	if t.Time.IsZero() {
		return nil
	}
	return t.Time
}

// Display renders the timestamp the way list tables show it.
func (t Time) Display() string {
	if t.Time.IsZero() {
		if t.Raw != "" {
			return t.Raw
		}
		return "N/A"
	}
	return t.Time.Format("Jan 2, 2006")
}
