package availability

import (
	"testing"
	"time"

	"github.com/slotline/slotline/internal/model"
)

// 2026-01-05 is a Monday.
var monday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func TestResolveOpenIntervals_RulesOnly(t *testing.T) {
	rules := []model.AvailabilityRule{
		{Weekday: 1, StartClock: "13:00", EndClock: "17:00"},
		{Weekday: 1, StartClock: "09:00", EndClock: "12:00"},
		{Weekday: 2, StartClock: "10:00", EndClock: "16:00"}, // different weekday, ignored
	}

	got := ResolveOpenIntervals(monday, time.UTC, rules, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(got))
	}
	if !got[0].Start.Equal(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("intervals not sorted ascending: first starts %s", got[0].Start)
	}
	if !got[1].Start.Equal(time.Date(2026, 1, 5, 13, 0, 0, 0, time.UTC)) {
		t.Fatalf("second interval starts %s", got[1].Start)
	}
}

func TestResolveOpenIntervals_DiscardsInvalidRules(t *testing.T) {
	rules := []model.AvailabilityRule{
		{Weekday: 1, StartClock: "17:00", EndClock: "09:00"}, // non-chronological
		{Weekday: 1, StartClock: "bad", EndClock: "12:00"},
		{Weekday: 1, StartClock: "09:00", EndClock: "12:00"},
	}

	got := ResolveOpenIntervals(monday, time.UTC, rules, nil)
	if len(got) != 1 {
		t.Fatalf("expected invalid rules discarded, got %d intervals", len(got))
	}
}

func TestResolveOpenIntervals_ClosedExceptionOverridesAllRules(t *testing.T) {
	rules := []model.AvailabilityRule{
		{Weekday: 1, StartClock: "09:00", EndClock: "12:00"},
		{Weekday: 1, StartClock: "13:00", EndClock: "17:00"},
	}
	exc := &model.AvailabilityException{Date: monday, Closed: true}

	if got := ResolveOpenIntervals(monday, time.UTC, rules, exc); len(got) != 0 {
		t.Fatalf("closed exception must yield zero intervals, got %d", len(got))
	}
}

func TestResolveOpenIntervals_OpenExceptionReplacesRules(t *testing.T) {
	rules := []model.AvailabilityRule{
		{Weekday: 1, StartClock: "09:00", EndClock: "18:00"},
	}
	exc := &model.AvailabilityException{Date: monday, StartClock: "11:00", EndClock: "14:00"}

	got := ResolveOpenIntervals(monday, time.UTC, rules, exc)
	if len(got) != 1 {
		t.Fatalf("expected exactly the override interval, got %d", len(got))
	}
	if !got[0].Start.Equal(time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC)) ||
		!got[0].End.Equal(time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("override interval [%s, %s) wrong", got[0].Start, got[0].End)
	}
}

func TestResolveOpenIntervals_InvalidOverrideYieldsEmpty(t *testing.T) {
	rules := []model.AvailabilityRule{
		{Weekday: 1, StartClock: "09:00", EndClock: "18:00"},
	}
	exc := &model.AvailabilityException{Date: monday, StartClock: "14:00", EndClock: "11:00"}

	if got := ResolveOpenIntervals(monday, time.UTC, rules, exc); len(got) != 0 {
		t.Fatalf("invalid override must not fall back to rules, got %d intervals", len(got))
	}
}

func TestResolveOpenIntervals_Deterministic(t *testing.T) {
	rules := []model.AvailabilityRule{
		{Weekday: 1, StartClock: "09:00", EndClock: "12:00"},
		{Weekday: 1, StartClock: "13:00", EndClock: "17:00"},
	}

	first := ResolveOpenIntervals(monday, time.UTC, rules, nil)
	second := ResolveOpenIntervals(monday, time.UTC, rules, nil)
	if len(first) != len(second) {
		t.Fatalf("non-deterministic length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Start.Equal(second[i].Start) || !first[i].End.Equal(second[i].End) {
			t.Fatalf("non-deterministic interval %d", i)
		}
	}
}

func TestContainsRange(t *testing.T) {
	intervals := []Interval{
		{Start: monday.Add(9 * time.Hour), End: monday.Add(12 * time.Hour)},
		{Start: monday.Add(13 * time.Hour), End: monday.Add(17 * time.Hour)},
	}

	if !ContainsRange(intervals, monday.Add(9*time.Hour), monday.Add(10*time.Hour)) {
		t.Fatal("range at interval start should be contained")
	}
	if !ContainsRange(intervals, monday.Add(16*time.Hour), monday.Add(17*time.Hour)) {
		t.Fatal("range ending exactly at interval end should be contained")
	}
	if ContainsRange(intervals, monday.Add(11*time.Hour+30*time.Minute), monday.Add(12*time.Hour+30*time.Minute)) {
		t.Fatal("range spilling past interval end should not be contained")
	}
	if ContainsRange(intervals, monday.Add(12*time.Hour), monday.Add(13*time.Hour)) {
		t.Fatal("range in the gap between intervals should not be contained")
	}
}
