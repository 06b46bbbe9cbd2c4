package model

import "testing"

func TestValidTransition(t *testing.T) {
	cases := []struct {
		action string
		from   string
		valid  bool
	}{
		{"confirm", "booked", true},
		{"confirm", "confirmed", false},
		{"confirm", "cancelled", false},
		{"cancel", "booked", true},
		{"cancel", "confirmed", true},
		{"cancel", "cancelled", false},
		{"cancel", "completed", false},
		{"complete", "confirmed", true},
		{"complete", "booked", false},
		{"complete", "cancelled", false},
		{"unknown", "booked", false},
	}

	for _, tt := range cases {
		if got := ValidTransition(tt.action, tt.from); got != tt.valid {
			t.Fatalf("ValidTransition(%q, %q)=%v, want %v", tt.action, tt.from, got, tt.valid)
		}
	}
}

func TestOccupies(t *testing.T) {
	for _, status := range []string{StatusBooked, StatusConfirmed, StatusCompleted} {
		if !(Appointment{Status: status}).Occupies() {
			t.Fatalf("status %q should occupy its slot", status)
		}
	}
	if (Appointment{Status: StatusCancelled}).Occupies() {
		t.Fatal("cancelled appointment should not occupy its slot")
	}
}
