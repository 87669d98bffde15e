package timetable

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as minutes since local midnight.
type TimeOfDay int

// MinutesPerDay bounds every valid TimeOfDay: [0, MinutesPerDay).
const MinutesPerDay = 24 * 60

// ParseTimeOfDay parses a strict 24-hour "HH:MM" string. Both fields need
// two digits; "8:45" and "24:00" are rejected with ErrMalformedTime.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q out of range", ErrMalformedTime, s)
	}
	return TimeOfDay(h*60 + m), nil
}

// FromTime drops the date and the seconds of t.
func FromTime(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (d TimeOfDay) Minutes() int { return int(d) }
func (d TimeOfDay) Hour() int { return int(d) / 60 }
func (d TimeOfDay) Minute() int { return int(d) % 60 }

func (d TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", d.Hour(), d.Minute())
}

// On combines d with the calendar date (and location) of day.
func (d TimeOfDay) On(day time.Time) time.Time {
	y, mo, dd := day.Date()
	return time.Date(y, mo, dd, d.Hour(), d.Minute(), 0, 0, day.Location())
}
