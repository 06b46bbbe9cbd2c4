package availability

import (
	"testing"
	"time"

	"github.com/slotline/slotline/internal/model"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name           string
		aStart, aEnd   time.Time
		bStart, bEnd   time.Time
		expectsOverlap bool
	}{
		{"identical", base, base.Add(time.Hour), base, base.Add(time.Hour), true},
		{"partial", base, base.Add(time.Hour), base.Add(30 * time.Minute), base.Add(90 * time.Minute), true},
		{"contained", base, base.Add(2 * time.Hour), base.Add(30 * time.Minute), base.Add(time.Hour), true},
		{"touching ends", base, base.Add(time.Hour), base.Add(time.Hour), base.Add(2 * time.Hour), false},
		{"disjoint", base, base.Add(time.Hour), base.Add(3 * time.Hour), base.Add(4 * time.Hour), false},
	}

	for _, tt := range cases {
		if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.expectsOverlap {
			t.Fatalf("%s: Overlaps=%v, want %v", tt.name, got, tt.expectsOverlap)
		}
	}
}

func TestStaffScopeConflicts(t *testing.T) {
	cases := []struct {
		candidate string
		existing  string
		conflicts bool
	}{
		{"", "", true},
		{"staff-a", "", true},
		{"", "staff-a", true},
		{"staff-a", "staff-a", true},
		{"staff-a", "staff-b", false},
	}

	for _, tt := range cases {
		if got := StaffScopeConflicts(tt.candidate, tt.existing); got != tt.conflicts {
			t.Fatalf("StaffScopeConflicts(%q, %q)=%v, want %v", tt.candidate, tt.existing, got, tt.conflicts)
		}
	}
}

func TestConflictsAny(t *testing.T) {
	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	existing := []model.Appointment{
		{StaffID: "staff-a", StartAt: base, EndAt: base.Add(time.Hour), Status: model.StatusBooked},
		{StaffID: "staff-b", StartAt: base, EndAt: base.Add(time.Hour), Status: model.StatusCancelled},
	}

	if !ConflictsAny(base, base.Add(time.Hour), "staff-a", existing) {
		t.Fatal("same staff overlapping should conflict")
	}
	if !ConflictsAny(base, base.Add(time.Hour), "", existing) {
		t.Fatal("unstaffed candidate should conflict with staffed appointment")
	}
	if ConflictsAny(base, base.Add(time.Hour), "staff-b", existing) {
		t.Fatal("different staff should not conflict; cancelled must be ignored")
	}
	if ConflictsAny(base.Add(2*time.Hour), base.Add(3*time.Hour), "staff-a", existing) {
		t.Fatal("disjoint range should not conflict")
	}
}

func TestConflictsAny_ConfirmedStillOccupies(t *testing.T) {
	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	for _, status := range []string{model.StatusConfirmed, model.StatusCompleted} {
		existing := []model.Appointment{{StartAt: base, EndAt: base.Add(time.Hour), Status: status}}
		if !ConflictsAny(base, base.Add(time.Hour), "", existing) {
			t.Fatalf("status %q must still occupy the slot", status)
		}
	}
}
