package availability

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
		ok     bool
	}{
		{"09:00", 9, 0, true},
		{"23:59", 23, 59, true},
		{"00:00", 0, 0, true},
		{" 10:30 ", 10, 30, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"9", 0, 0, false},
		{"ab:cd", 0, 0, false},
		{"", 0, 0, false},
		{"-1:30", 0, 0, false},
	}

	for _, tt := range cases {
		h, m, err := ParseClock(tt.in)
		if tt.ok && err != nil {
			t.Fatalf("ParseClock(%q) unexpected error: %v", tt.in, err)
		}
		if !tt.ok && err == nil {
			t.Fatalf("ParseClock(%q) expected error", tt.in)
		}
		if tt.ok && (h != tt.hour || m != tt.minute) {
			t.Fatalf("ParseClock(%q)=%d:%d, want %d:%d", tt.in, h, m, tt.hour, tt.minute)
		}
	}
}

func TestResolveDayInterval(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	iv, err := ResolveDayInterval(day, tokyo, "09:00", "18:00")
	if err != nil {
		t.Fatalf("ResolveDayInterval failed: %v", err)
	}
	wantStart := time.Date(2026, 1, 5, 9, 0, 0, 0, tokyo)
	wantEnd := time.Date(2026, 1, 5, 18, 0, 0, 0, tokyo)
	if !iv.Start.Equal(wantStart) || !iv.End.Equal(wantEnd) {
		t.Fatalf("got [%s, %s), want [%s, %s)", iv.Start, iv.End, wantStart, wantEnd)
	}
}

func TestResolveDayInterval_Rejects(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	if _, err := ResolveDayInterval(day, time.UTC, "18:00", "09:00"); err == nil {
		t.Fatal("expected error for non-chronological range")
	}
	if _, err := ResolveDayInterval(day, time.UTC, "09:00", "09:00"); err == nil {
		t.Fatal("expected error for zero-length range")
	}
	if _, err := ResolveDayInterval(day, time.UTC, "9am", "17:00"); err == nil {
		t.Fatal("expected error for unparseable start")
	}
}

func TestWeekdayIndex_UsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}
	// 16:00 UTC Sunday is already 01:00 Monday in Tokyo.
	instant := time.Date(2026, 1, 4, 16, 0, 0, 0, time.UTC)
	if got := WeekdayIndex(instant, time.UTC); got != 0 {
		t.Fatalf("UTC weekday=%d, want 0", got)
	}
	if got := WeekdayIndex(instant, tokyo); got != 1 {
		t.Fatalf("Tokyo weekday=%d, want 1", got)
	}
}

func TestLoadLocationFallback(t *testing.T) {
	if loc := LoadLocation(""); loc != time.UTC {
		t.Fatalf("empty name should fall back to UTC, got %v", loc)
	}
	if loc := LoadLocation("Not/AZone"); loc != time.UTC {
		t.Fatalf("unknown name should fall back to UTC, got %v", loc)
	}
	if loc := LoadLocation("Asia/Tokyo"); loc.String() != "Asia/Tokyo" {
		t.Fatalf("expected Asia/Tokyo, got %v", loc)
	}
}
