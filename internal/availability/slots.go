package availability

import (
	"time"

	"github.com/slotline/slotline/internal/model"
)

const DefaultStepMinutes = 15

// pastGrace tolerates clock skew between the caller and the service: a slot
// whose start is within one minute behind now is still offered.
const pastGrace = time.Minute

type Slot struct {
	Start time.Time
	End   time.Time
}

// Slots walks the open intervals at step granularity and emits candidate
// bookable slots of exactly duration length that are not in the past and do
// not conflict with existing appointments under staff scoping.
//
// Emission order is interval order; intervals are expected pre-sorted by
// ResolveOpenIntervals. A service longer than an interval simply yields no
// slots from it.
func Slots(intervals []Interval, duration, step time.Duration, existing []model.Appointment, staffID string, now time.Time) []Slot {
	if duration <= 0 || step <= 0 {
		return nil
	}

	cutoff := now.Add(-pastGrace)
	var slots []Slot
	for _, iv := range intervals {
		for t := iv.Start; !t.Add(duration).After(iv.End); t = t.Add(step) {
			if !t.After(cutoff) {
				continue
			}
			if ConflictsAny(t, t.Add(duration), staffID, existing) {
				continue
			}
			slots = append(slots, Slot{Start: t, End: t.Add(duration)})
		}
	}
	return slots
}
