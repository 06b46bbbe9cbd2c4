package availability

import (
	"sort"
	"time"

	"github.com/slotline/slotline/internal/model"
)

// ResolveOpenIntervals computes the ordered open windows for one calendar day.
// It is a pure function of its inputs and is the single source of truth shared
// by the availability-query and booking-creation paths.
//
// An exception fully overrides the weekly rules: Closed yields no windows at
// all, an open override yields exactly its own interval (or none if the
// override fails validation). Without an exception, each rule for the day's
// weekday contributes its own interval; individually invalid rules are
// discarded rather than failing the whole day. Rule intervals are not merged
// or de-duplicated, so split shifts stay separate windows.
func ResolveOpenIntervals(day time.Time, loc *time.Location, rules []model.AvailabilityRule, exc *model.AvailabilityException) []Interval {
	if exc != nil {
		if exc.Closed {
			return nil
		}
		iv, err := ResolveDayInterval(day, loc, exc.StartClock, exc.EndClock)
		if err != nil {
			return nil
		}
		return []Interval{iv}
	}

	weekday := WeekdayIndex(day, loc)
	var intervals []Interval
	for _, rule := range rules {
		if rule.Weekday != weekday {
			continue
		}
		iv, err := ResolveDayInterval(day, loc, rule.StartClock, rule.EndClock)
		if err != nil {
			continue
		}
		intervals = append(intervals, iv)
	}
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start.Before(intervals[j].Start)
	})
	return intervals
}

// ContainsRange reports whether [start, end) fits fully inside at least one of
// the intervals.
func ContainsRange(intervals []Interval, start, end time.Time) bool {
	for _, iv := range intervals {
		if !start.Before(iv.Start) && !end.After(iv.End) {
			return true
		}
	}
	return false
}
