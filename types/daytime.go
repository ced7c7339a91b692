package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateTimeFormat is the single textual form used for timestamps in both wire formats.
const DateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// DateTime wraps a time.Time struct, allowing for improved dateTime JSON compatibility.
type DateTime struct {
	time.Time
}

// NewDateTime Creates a new DateTime struct, embedding a time.Time struct.
func NewDateTime(time time.Time) *DateTime {
	return &DateTime{Time: time.UTC()}
}

// ParseDateTime accepts any RFC 3339 timestamp, with or without fractional seconds, and normalizes it to UTC.
func ParseDateTime(s string) (DateTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateTime{}, fmt.Errorf("empty timestamp")
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return DateTime{}, fmt.Errorf("timestamp %q is not ISO-8601: %w", s, err)
	}
	return DateTime{Time: t.UTC()}, nil
}

// String returns the canonical millisecond UTC form, e.g. 2024-01-01T00:00:00.000Z.
func (dt DateTime) String() string {
	return dt.UTC().Format(DateTimeFormat)
}

// Equal shadows time.Time.Equal so that comparisons work on DateTime values.
func (dt DateTime) Equal(other DateTime) bool {
	return dt.Time.Truncate(time.Millisecond).Equal(other.Time.Truncate(time.Millisecond))
}

func (dt DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(dt.String())
}

func (dt *DateTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}
