package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/slotline/slotline/internal/availability"
	"github.com/slotline/slotline/internal/model"
)

const (
	maxListLimit     = 200
	defaultListLimit = 50
)

// Scheduler orchestrates availability resolution and conflict detection around
// the appointment lifecycle. It is request-scoped and stateless between calls;
// all state lives in the Store.
type Scheduler struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func New(store Store, logger *slog.Logger) *Scheduler {
	return &Scheduler{store: store, logger: logger, now: time.Now}
}

// WithClock fixes the time source. Tests use this to make slot filtering
// deterministic.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Availability is one day's bookable slots for a service.
type Availability struct {
	Date         string
	Timezone     string
	DurationMins int
	StepMins     int
	Slots        []availability.Slot
}

// ActorKind distinguishes who is asking for a cancellation.
type ActorKind string

const (
	ActorCustomer ActorKind = "customer"
	ActorBusiness ActorKind = "business"
)

type Actor struct {
	Kind ActorKind
	ID   string
}

// GetAvailability computes the bookable slots for a business, service and
// calendar date. stepMins <= 0 selects the default step.
func (s *Scheduler) GetAvailability(ctx context.Context, businessID, serviceID, date string, stepMins int, staffID string) (Availability, error) {
	business, err := s.store.GetBusiness(ctx, businessID)
	if err != nil {
		return Availability{}, err
	}
	svc, err := s.bookableService(ctx, business.ID, serviceID)
	if err != nil {
		return Availability{}, err
	}
	if staffID != "" {
		if _, err := s.store.GetStaff(ctx, business.ID, staffID); err != nil {
			return Availability{}, err
		}
	}

	loc := availability.LoadLocation(business.Timezone)
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return Availability{}, fmt.Errorf("%w: bad date %q", ErrInvalid, date)
	}
	if stepMins == 0 {
		stepMins = availability.DefaultStepMinutes
	}
	if stepMins < 0 {
		return Availability{}, fmt.Errorf("%w: step_minutes must be positive", ErrInvalid)
	}

	intervals, err := s.openIntervals(ctx, business.ID, day, loc)
	if err != nil {
		return Availability{}, err
	}

	existing, err := s.occupyingFor(ctx, business.ID, intervals)
	if err != nil {
		return Availability{}, err
	}

	slots := availability.Slots(
		intervals,
		time.Duration(svc.DurationMins)*time.Minute,
		time.Duration(stepMins)*time.Minute,
		existing,
		staffID,
		s.now(),
	)

	return Availability{
		Date:         date,
		Timezone:     loc.String(),
		DurationMins: svc.DurationMins,
		StepMins:     stepMins,
		Slots:        slots,
	}, nil
}

// CreateRequest is a validated booking request.
type CreateRequest struct {
	BusinessID string
	ServiceID  string
	CustomerID string
	StaffID    string
	StartAt    time.Time
	Note       string
}

// CreateAppointment re-derives the day's open intervals and conflict state
// before committing, so the query and booking paths cannot disagree. The final
// overlap check and insert are atomic at the store; a concurrent racer loses
// with ErrConflict.
func (s *Scheduler) CreateAppointment(ctx context.Context, req CreateRequest) (model.Appointment, error) {
	business, err := s.store.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		return model.Appointment{}, err
	}
	svc, err := s.bookableService(ctx, business.ID, req.ServiceID)
	if err != nil {
		return model.Appointment{}, err
	}
	if _, err := s.store.GetCustomer(ctx, req.CustomerID); err != nil {
		return model.Appointment{}, err
	}
	if req.StaffID != "" {
		if _, err := s.store.GetStaff(ctx, business.ID, req.StaffID); err != nil {
			return model.Appointment{}, err
		}
	}

	loc := availability.LoadLocation(business.Timezone)
	startAt := req.StartAt.UTC()
	endAt := startAt.Add(time.Duration(svc.DurationMins) * time.Minute)

	intervals, err := s.openIntervals(ctx, business.ID, startAt.In(loc), loc)
	if err != nil {
		return model.Appointment{}, err
	}
	if !availability.ContainsRange(intervals, startAt, endAt) {
		return model.Appointment{}, fmt.Errorf("%w: requested time is outside business availability", ErrInvalid)
	}

	// Early conflict check for a friendly error; the store re-checks under its
	// own lock, which is the authoritative gate against racers.
	existing, err := s.store.ListOccupying(ctx, business.ID, startAt, endAt)
	if err != nil {
		return model.Appointment{}, err
	}
	if availability.ConflictsAny(startAt, endAt, req.StaffID, existing) {
		return model.Appointment{}, ErrConflict
	}

	appt := model.Appointment{
		BusinessID: business.ID,
		ServiceID:  svc.ID,
		CustomerID: req.CustomerID,
		StaffID:    req.StaffID,
		StartAt:    startAt,
		EndAt:      endAt,
		Status:     model.StatusBooked,
		Note:       req.Note,
	}
	if err := s.store.CreateAppointment(ctx, &appt); err != nil {
		return model.Appointment{}, err
	}
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"business_id", appt.BusinessID,
		"start_at", appt.StartAt.Format(time.RFC3339),
	)
	return appt, nil
}

// CancelAppointment transitions an appointment to cancelled. Cancelling an
// already-cancelled appointment is a no-op success. Customers may cancel only
// their own appointments, businesses only their own business's.
func (s *Scheduler) CancelAppointment(ctx context.Context, appointmentID string, actor Actor) (model.Appointment, error) {
	appt, err := s.store.GetAppointment(ctx, appointmentID)
	if err != nil {
		return model.Appointment{}, err
	}

	switch actor.Kind {
	case ActorCustomer:
		if actor.ID != appt.CustomerID {
			return model.Appointment{}, ErrForbidden
		}
	case ActorBusiness:
		if actor.ID != appt.BusinessID {
			return model.Appointment{}, ErrForbidden
		}
	default:
		return model.Appointment{}, ErrForbidden
	}

	if appt.Status == model.StatusCancelled {
		return appt, nil
	}
	if !model.ValidTransition("cancel", appt.Status) {
		return model.Appointment{}, fmt.Errorf("%w: appointment is %s", ErrConflict, appt.Status)
	}

	cancelled, err := s.store.CancelAppointment(ctx, appt.ID)
	if err != nil {
		return model.Appointment{}, err
	}
	s.logger.Info("appointment cancelled",
		"appointment_id", cancelled.ID,
		"business_id", cancelled.BusinessID,
		"actor_kind", string(actor.Kind),
	)
	return cancelled, nil
}

// ListAppointments returns non-cancelled appointments matching the filter,
// ordered by start time ascending.
func (s *Scheduler) ListAppointments(ctx context.Context, filter AppointmentFilter) ([]model.Appointment, error) {
	if filter.BusinessID == "" && filter.CustomerID == "" {
		return nil, fmt.Errorf("%w: business_id or customer_id required", ErrInvalid)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	return s.store.ListAppointments(ctx, filter)
}

func (s *Scheduler) bookableService(ctx context.Context, businessID, serviceID string) (model.Service, error) {
	svc, err := s.store.GetService(ctx, serviceID)
	if err != nil {
		return model.Service{}, err
	}
	if svc.BusinessID != businessID {
		return model.Service{}, fmt.Errorf("%w: service does not belong to business", ErrInvalid)
	}
	if !svc.Active {
		return model.Service{}, fmt.Errorf("%w: service is inactive", ErrNotFound)
	}
	return svc, nil
}

func (s *Scheduler) openIntervals(ctx context.Context, businessID string, day time.Time, loc *time.Location) ([]availability.Interval, error) {
	local := day.In(loc)
	weekday := availability.WeekdayIndex(local, loc)

	rules, err := s.store.ListRules(ctx, businessID, weekday)
	if err != nil {
		return nil, err
	}
	exc, err := s.store.GetException(ctx, businessID, utcDate(local))
	if err != nil {
		return nil, err
	}
	return availability.ResolveOpenIntervals(local, loc, rules, exc), nil
}

func (s *Scheduler) occupyingFor(ctx context.Context, businessID string, intervals []availability.Interval) ([]model.Appointment, error) {
	if len(intervals) == 0 {
		return nil, nil
	}
	from := intervals[0].Start
	to := intervals[0].End
	for _, iv := range intervals[1:] {
		if iv.Start.Before(from) {
			from = iv.Start
		}
		if iv.End.After(to) {
			to = iv.End
		}
	}
	return s.store.ListOccupying(ctx, businessID, from, to)
}

// utcDate normalizes a local time to its calendar date at UTC midnight, the
// key exceptions are stored under.
func utcDate(local time.Time) time.Time {
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
