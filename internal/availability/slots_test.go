package availability

import (
	"testing"
	"time"

	"github.com/slotline/slotline/internal/model"
)

func TestSlots_TokyoFullDay(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, tokyo) // Monday
	rules := []model.AvailabilityRule{{Weekday: 1, StartClock: "09:00", EndClock: "18:00"}}
	intervals := ResolveOpenIntervals(day, tokyo, rules, nil)

	slots := Slots(intervals, 60*time.Minute, 15*time.Minute, nil, "", day)
	// 09:00 through 17:00 inclusive at 15-minute steps.
	if len(slots) != 33 {
		t.Fatalf("expected 33 slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(time.Date(2026, 1, 5, 9, 0, 0, 0, tokyo)) {
		t.Fatalf("first slot starts %s", slots[0].Start)
	}
	last := slots[len(slots)-1]
	if !last.Start.Equal(time.Date(2026, 1, 5, 17, 0, 0, 0, tokyo)) {
		t.Fatalf("last slot starts %s", last.Start)
	}
	for _, s := range slots {
		if s.End.Sub(s.Start) != 60*time.Minute {
			t.Fatalf("slot [%s, %s) is not exactly the service duration", s.Start, s.End)
		}
	}
}

func TestSlots_BookedSlotRemovesOverlappingStarts(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, tokyo)
	rules := []model.AvailabilityRule{{Weekday: 1, StartClock: "09:00", EndClock: "18:00"}}
	intervals := ResolveOpenIntervals(day, tokyo, rules, nil)

	booked := []model.Appointment{{
		StartAt: time.Date(2026, 1, 5, 10, 0, 0, 0, tokyo),
		EndAt:   time.Date(2026, 1, 5, 11, 0, 0, 0, tokyo),
		Status:  model.StatusBooked,
	}}

	slots := Slots(intervals, 60*time.Minute, 15*time.Minute, booked, "", day)
	// Starts 09:15 through 10:45 all overlap the 10:00-11:00 booking.
	blocked := map[string]bool{}
	for m := 9*60 + 15; m <= 10*60+45; m += 15 {
		blocked[time.Date(2026, 1, 5, 0, 0, 0, 0, tokyo).Add(time.Duration(m)*time.Minute).Format(time.RFC3339)] = true
	}
	for _, s := range slots {
		if blocked[s.Start.Format(time.RFC3339)] {
			t.Fatalf("slot %s overlaps the booking and must not be offered", s.Start)
		}
		if ConflictsAny(s.Start, s.End, "", booked) {
			t.Fatalf("emitted slot %s conflicts with a booked appointment", s.Start)
		}
	}
	if len(slots) != 33-7 {
		t.Fatalf("expected 26 slots, got %d", len(slots))
	}
}

func TestSlots_GraceWindow(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	intervals := []Interval{{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)}}

	// now = 09:00:30; the 09:00 slot is only 30s in the past, inside the grace window.
	now := day.Add(9*time.Hour + 30*time.Second)
	slots := Slots(intervals, 30*time.Minute, 15*time.Minute, nil, "", now)
	if len(slots) != 3 {
		t.Fatalf("expected 09:00, 09:15, 09:30 offered, got %d slots", len(slots))
	}

	// now = 09:16; 09:15 is a minute and a second past, beyond the grace window.
	now = day.Add(9*time.Hour + 16*time.Minute + time.Second)
	slots = Slots(intervals, 30*time.Minute, 15*time.Minute, nil, "", now)
	if len(slots) != 1 || !slots[0].Start.Equal(day.Add(9*time.Hour+30*time.Minute)) {
		t.Fatalf("expected only 09:30, got %v", slots)
	}
}

func TestSlots_ParallelStaff(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	intervals := []Interval{{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)}}
	booked := []model.Appointment{{
		StaffID: "staff-a",
		StartAt: day.Add(9 * time.Hour),
		EndAt:   day.Add(10 * time.Hour),
		Status:  model.StatusBooked,
	}}

	if got := Slots(intervals, 60*time.Minute, 15*time.Minute, booked, "staff-b", day); len(got) != 1 {
		t.Fatalf("different staff should book in parallel, got %d slots", len(got))
	}
	if got := Slots(intervals, 60*time.Minute, 15*time.Minute, booked, "staff-a", day); len(got) != 0 {
		t.Fatalf("same staff must conflict, got %d slots", len(got))
	}
	if got := Slots(intervals, 60*time.Minute, 15*time.Minute, booked, "", day); len(got) != 0 {
		t.Fatalf("unstaffed request must conflict with staffed booking, got %d slots", len(got))
	}
}

func TestSlots_EdgeCases(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	short := []Interval{{Start: day.Add(9 * time.Hour), End: day.Add(9*time.Hour + 30*time.Minute)}}

	if got := Slots(short, 60*time.Minute, 15*time.Minute, nil, "", day); got != nil {
		t.Fatalf("duration longer than interval should yield no slots, got %v", got)
	}
	if got := Slots(short, 30*time.Minute, 2*time.Hour, nil, "", day); len(got) != 1 {
		t.Fatalf("step larger than interval should yield at most the first slot, got %d", len(got))
	}
	if got := Slots(short, 0, 15*time.Minute, nil, "", day); got != nil {
		t.Fatal("non-positive duration should yield nil")
	}
	if got := Slots(short, 30*time.Minute, 0, nil, "", day); got != nil {
		t.Fatal("non-positive step should yield nil")
	}
}

func TestSlots_OverlappingRulesKeepSeparateWalks(t *testing.T) {
	// Two overlapping same-day rules stay independent interval walks, so
	// boundary slots can be offered twice. Accepted split-shift behavior.
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rules := []model.AvailabilityRule{
		{Weekday: 1, StartClock: "09:00", EndClock: "10:00"},
		{Weekday: 1, StartClock: "09:30", EndClock: "10:30"},
	}
	intervals := ResolveOpenIntervals(day, time.UTC, rules, nil)
	if len(intervals) != 2 {
		t.Fatalf("overlapping rules must not merge, got %d intervals", len(intervals))
	}

	slots := Slots(intervals, 30*time.Minute, 30*time.Minute, nil, "", day)
	// First walk: 09:00, 09:30. Second walk: 09:30, 10:00. The duplicate 09:30 stays.
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots including duplicate boundary offer, got %d", len(slots))
	}
	if !slots[1].Start.Equal(slots[2].Start) {
		t.Fatalf("expected duplicate 09:30 offers, got %s and %s", slots[1].Start, slots[2].Start)
	}
}
