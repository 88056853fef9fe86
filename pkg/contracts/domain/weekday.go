package domain

import (
	"fmt"
	"time"
)

// Weekday is an explicitly ordered day-of-week starting on Monday, so that
// sorting and bucketing by weekday never depends on locale weekday names or
// on time.Weekday's Sunday-first ordering.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// WeekdayOf converts a timestamp to the Monday-first ordering.
func WeekdayOf(t time.Time) Weekday {
	// time.Weekday is Sunday=0.
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// String returns the English day name.
func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return "unknown"
	}
	return weekdayNames[w]
}

// IsWeekend reports whether the day is Saturday or Sunday.
func (w Weekday) IsWeekend() bool {
	return w == Saturday || w == Sunday
}

// MarshalText implements encoding.TextMarshaler so weekday fields serialize
// as day names rather than integers.
func (w Weekday) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Weekday) UnmarshalText(text []byte) error {
	name := string(text)
	for i, n := range weekdayNames {
		if n == name {
			*w = Weekday(i)
			return nil
		}
	}
	return fmt.Errorf("unknown weekday: %q", name)
}
