package model

import "time"

// Appointment statuses. Confirmed and completed are business-side transitions;
// everything except cancelled occupies its slot.
const (
	StatusBooked    = "booked"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const DefaultTimezone = "UTC"

type Business struct {
	ID        string
	OwnerID   string
	Name      string
	Timezone  string // IANA name; empty means DefaultTimezone
	CreatedAt time.Time
}

type Service struct {
	ID           string
	BusinessID   string
	Name         string
	DurationMins int
	Price        string
	Active       bool
	CreatedAt    time.Time
}

type Staff struct {
	ID         string
	BusinessID string
	Name       string
	Active     bool
	CreatedAt  time.Time
}

type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// AvailabilityRule is one recurring weekly open window. A business may carry
// several rules per weekday (split shifts).
type AvailabilityRule struct {
	ID         string
	BusinessID string
	Weekday    int    // 0..6, 0 = Sunday
	StartClock string // "HH:MM" wall clock in the business timezone
	EndClock   string
	CreatedAt  time.Time
}

// AvailabilityException overrides the weekly rules for a single calendar date.
// Date is stored UTC-normalized to start of day. When Closed is false the
// override clocks replace the day's rule-derived windows entirely.
type AvailabilityException struct {
	ID         string
	BusinessID string
	Date       time.Time
	Closed     bool
	StartClock string
	EndClock   string
	CreatedAt  time.Time
}

type Appointment struct {
	ID          string
	BusinessID  string
	ServiceID   string
	CustomerID  string
	StaffID     string // empty = unstaffed, consumes shared business capacity
	StartAt     time.Time
	EndAt       time.Time
	Status      string
	Note        string
	CancelledAt *time.Time
	CreatedAt   time.Time
}

// Occupies reports whether the appointment still blocks its time range.
func (a Appointment) Occupies() bool {
	return a.Status != StatusCancelled
}
