package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Interval is an open-for-business time range on one calendar day, in absolute
// time. All intervals are half-open: [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// ParseClock parses a strict "HH:MM" wall-clock string. No clamping: anything
// outside 00:00..23:59 is rejected.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid clock %q: bad hour", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid clock %q: bad minute", s)
	}
	return hour, minute, nil
}

// ResolveDayInterval pins two wall-clock strings to the calendar date of day,
// interpreted in loc. The end must be strictly after the start on that same
// date; invalid input yields an error, never a guessed interval.
func ResolveDayInterval(day time.Time, loc *time.Location, startClock, endClock string) (Interval, error) {
	sh, sm, err := ParseClock(startClock)
	if err != nil {
		return Interval{}, err
	}
	eh, em, err := ParseClock(endClock)
	if err != nil {
		return Interval{}, err
	}

	local := day.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), sh, sm, 0, 0, loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), eh, em, 0, 0, loc)
	if !end.After(start) {
		return Interval{}, fmt.Errorf("non-chronological range %s-%s", startClock, endClock)
	}
	return Interval{Start: start, End: end}, nil
}

// WeekdayIndex returns 0..6 (0 = Sunday) for t evaluated in loc. Using the
// business location rather than the caller's avoids off-by-one-day errors near
// midnight.
func WeekdayIndex(t time.Time, loc *time.Location) int {
	return int(t.In(loc).Weekday())
}

// LoadLocation resolves an IANA timezone name, falling back to UTC when the
// name is empty or unknown.
func LoadLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
