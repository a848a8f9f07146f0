// ABOUTME: Calendar date type shared by dealer and activity records
// ABOUTME: Accepts HTML date inputs and RFC 3339 timestamps in JSON
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for dates that carry no clock time.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// Date is a calendar date or a timestamp.
type Date struct {
	time.Time
}

// NewDate returns a date-only value in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf wraps t.
func DateOf(t time.Time) *Date {
	return &Date{Time: t}
}

// ParseDate parses any of the accepted layouts.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD or RFC 3339)", s)
}

// DateOnly reports whether the value has no time-of-day component.
func (d Date) DateOnly() bool {
	h, m, s := d.Clock()
	return h == 0 && m == 0 && s == 0 && d.Nanosecond() == 0 && d.Location() == time.UTC
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	if d.DateOnly() {
		return d.Format(DateLayout)
	}
	return d.Format(time.RFC3339)
}

// MarshalJSON writes a date-only value as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON treats null and "" as the zero date.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
