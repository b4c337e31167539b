package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClockTime is a local time of day on a 24-hour clock
type ClockTime struct {
	Hour   int
	Minute int
}

// NewClockTime validates and builds a ClockTime
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("hour out of range: %d", hour)
	}
	if minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("minute out of range: %d", minute)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// ClockTimeOf returns the wall clock time of t in its own location
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}

// ParseClockTime parses the "HH:MM" form
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return ClockTime{}, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// String returns the "HH:MM" form
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Display returns the 12-hour form shown to users, e.g. "9:05 AM"
func (c ClockTime) Display() string {
	suffix := "AM"
	if c.Hour >= 12 {
		suffix = "PM"
	}
	h := c.Hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, c.Minute, suffix)
}

// Minutes returns the number of minutes since midnight
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Valid reports whether both components are in range
func (c ClockTime) Valid() bool {
	_, err := NewClockTime(c.Hour, c.Minute)
	return err == nil
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time must be a string: %w", err)
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
