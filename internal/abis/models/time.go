package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for requesttime. The first one is used when echoing.
var requestTimeLayouts = []string{
	"2006-01-02T15:04:05.000Z",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
}

// RequestTime keeps the caller's original text so it can be echoed verbatim
// in responsetime.
type RequestTime struct {
	Time time.Time
	raw  string
}

func NewRequestTime(t time.Time) *RequestTime {
	return &RequestTime{Time: t.UTC(), raw: t.UTC().Format(requestTimeLayouts[0])}
}

// String returns the caller's text, or "" for a nil receiver.
func (t *RequestTime) String() string {
	if t == nil {
		return ""
	}
	if t.raw != "" {
		return t.raw
	}
	return t.Time.UTC().Format(requestTimeLayouts[0])
}

func (t *RequestTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *RequestTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("requesttime must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*t = RequestTime{}
		return nil
	}
	for _, layout := range requestTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			t.raw = s
			return nil
		}
	}
	return fmt.Errorf("unrecognised requesttime %q", s)
}

// IsZero reports a missing or empty request time. Safe on a nil receiver.
func (t *RequestTime) IsZero() bool {
	return t == nil || t.Time.IsZero()
}
