package scheduler

import (
	"context"
	"time"

	"github.com/slotline/slotline/internal/model"
)

// Store is the data-access contract the engine runs against. Reads are keyed
// by business identifier and calendar date range; CreateAppointment must be
// atomic: validate-overlap-then-insert as one unit, returning ErrConflict for
// the losing side of a race.
type Store interface {
	GetBusiness(ctx context.Context, id string) (model.Business, error)
	GetService(ctx context.Context, id string) (model.Service, error)
	GetCustomer(ctx context.Context, id string) (model.Customer, error)
	GetStaff(ctx context.Context, businessID, staffID string) (model.Staff, error)

	ListRules(ctx context.Context, businessID string, weekday int) ([]model.AvailabilityRule, error)
	// GetException returns the exception pinned to the UTC-normalized date, or
	// nil when none exists. When duplicates exist the most recently created
	// wins.
	GetException(ctx context.Context, businessID string, date time.Time) (*model.AvailabilityException, error)

	// ListOccupying returns non-cancelled appointments for the business whose
	// [StartAt, EndAt) overlaps [from, to).
	ListOccupying(ctx context.Context, businessID string, from, to time.Time) ([]model.Appointment, error)

	CreateAppointment(ctx context.Context, appt *model.Appointment) error
	GetAppointment(ctx context.Context, id string) (model.Appointment, error)
	CancelAppointment(ctx context.Context, id string) (model.Appointment, error)
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]model.Appointment, error)
}

// AppointmentFilter selects appointments for listing. Cancelled appointments
// are always excluded; results are ordered by start time ascending.
type AppointmentFilter struct {
	BusinessID string
	CustomerID string
	Limit      int
}
