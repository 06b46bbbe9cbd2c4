package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/slotline/slotline/internal/model"
	"github.com/slotline/slotline/internal/outbox"
	"github.com/slotline/slotline/internal/scheduler"
)

const (
	eventBooked    = "booking.appointment.booked.v1"
	eventCancelled = "booking.appointment.cancelled.v1"
)

// WithOutbox attaches an outbox repository so appointment writes emit domain
// events in the same transaction.
func (r *Repository) WithOutbox(repo *outbox.Repository) *Repository {
	r.outbox = repo
	return r
}

const appointmentColumns = `
	id::text, business_id::text, service_id::text, customer_id::text, staff_id,
	start_at, end_at, status, COALESCE(note, ''), cancelled_at, created_at
`

// CreateAppointment commits a booking as one atomic unit: a per-business
// advisory lock serializes writers, the overlap re-check runs under that lock
// with the staff-scoping predicate, then the row and its outbox event insert
// together. The losing side of a race gets scheduler.ErrConflict, with the
// btree_gist exclusion constraint as a second line of defense.
func (r *Repository) CreateAppointment(ctx context.Context, appt *model.Appointment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, appt.BusinessID); err != nil {
		return err
	}

	var conflict bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE business_id = $1
				AND status <> 'cancelled'
				AND start_at < $3
				AND end_at > $2
				AND (staff_id = '' OR $4 = '' OR staff_id = $4)
		)
	`, appt.BusinessID, appt.StartAt, appt.EndAt, appt.StaffID).Scan(&conflict)
	if err != nil {
		return err
	}
	if conflict {
		return scheduler.ErrConflict
	}

	appt.ID = uuid.NewString()
	err = tx.QueryRow(ctx, `
		INSERT INTO appointments (id, business_id, service_id, customer_id, staff_id, start_at, end_at, status, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, appt.ID, appt.BusinessID, appt.ServiceID, appt.CustomerID, appt.StaffID,
		appt.StartAt, appt.EndAt, appt.Status, appt.Note).Scan(&appt.CreatedAt)
	if err != nil {
		if IsConflict(err) {
			return scheduler.ErrConflict
		}
		return err
	}

	if r.outbox != nil {
		payload, err := json.Marshal(map[string]any{
			"appointment_id": appt.ID,
			"business_id":    appt.BusinessID,
			"service_id":     appt.ServiceID,
			"customer_id":    appt.CustomerID,
			"staff_id":       appt.StaffID,
			"start_at":       appt.StartAt.UTC().Format(time.RFC3339),
			"end_at":         appt.EndAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
		if err := r.outbox.Insert(ctx, tx, outbox.Event{
			AggregateType: "appointment",
			AggregateID:   appt.ID,
			EventType:     eventBooked,
			Payload:       payload,
		}); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repository) GetAppointment(ctx context.Context, id string) (model.Appointment, error) {
	var appt model.Appointment
	err := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id).Scan(
		&appt.ID, &appt.BusinessID, &appt.ServiceID, &appt.CustomerID, &appt.StaffID,
		&appt.StartAt, &appt.EndAt, &appt.Status, &appt.Note, &appt.CancelledAt, &appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, notFoundOr(err)
	}
	return appt, nil
}

// CancelAppointment flips the row to cancelled and emits the cancellation
// event in the same transaction. The slot becomes immediately re-bookable.
func (r *Repository) CancelAppointment(ctx context.Context, id string) (model.Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var appt model.Appointment
	err = tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'cancelled', cancelled_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id).Scan(
		&appt.ID, &appt.BusinessID, &appt.ServiceID, &appt.CustomerID, &appt.StaffID,
		&appt.StartAt, &appt.EndAt, &appt.Status, &appt.Note, &appt.CancelledAt, &appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, notFoundOr(err)
	}

	if r.outbox != nil {
		payload, err := json.Marshal(map[string]any{
			"appointment_id": appt.ID,
			"business_id":    appt.BusinessID,
			"service_id":     appt.ServiceID,
			"staff_id":       appt.StaffID,
			"start_at":       appt.StartAt.UTC().Format(time.RFC3339),
			"end_at":         appt.EndAt.UTC().Format(time.RFC3339),
			"cancelled_at":   appt.CancelledAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return model.Appointment{}, err
		}
		if err := r.outbox.Insert(ctx, tx, outbox.Event{
			AggregateType: "appointment",
			AggregateID:   appt.ID,
			EventType:     eventCancelled,
			Payload:       payload,
		}); err != nil {
			return model.Appointment{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

func (r *Repository) ListOccupying(ctx context.Context, businessID string, from, to time.Time) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE business_id = $1
			AND status <> 'cancelled'
			AND start_at < $3
			AND end_at > $2
		ORDER BY start_at ASC
	`, businessID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func (r *Repository) ListAppointments(ctx context.Context, filter scheduler.AppointmentFilter) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status <> 'cancelled'
			AND ($1 = '' OR business_id::text = $1)
			AND ($2 = '' OR customer_id::text = $2)
		ORDER BY start_at ASC
		LIMIT $3
	`, filter.BusinessID, filter.CustomerID, filter.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func scanAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	var out []model.Appointment
	for rows.Next() {
		var appt model.Appointment
		if err := rows.Scan(
			&appt.ID, &appt.BusinessID, &appt.ServiceID, &appt.CustomerID, &appt.StaffID,
			&appt.StartAt, &appt.EndAt, &appt.Status, &appt.Note, &appt.CancelledAt, &appt.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
