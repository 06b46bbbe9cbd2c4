package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/slotline/slotline/internal/availability"
	"github.com/slotline/slotline/internal/model"
	"github.com/slotline/slotline/internal/outbox"
	"github.com/slotline/slotline/internal/scheduler"
	"github.com/slotline/slotline/libs/db"
)

// Repository is the postgres-backed implementation of scheduler.Store plus the
// administrative reads and writes the business API needs.
type Repository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func New(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsConflict recognizes postgres exclusion (23P01) and unique (23505)
// violations, the backstops behind the advisory-lock booking path.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "23P01" || pgErr.Code == "23505")
}

func notFoundOr(err error) error {
	if IsNotFound(err) {
		return scheduler.ErrNotFound
	}
	return err
}

func (r *Repository) GetBusiness(ctx context.Context, id string) (model.Business, error) {
	var b model.Business
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, owner_id::text, name, timezone, created_at
		FROM businesses
		WHERE id = $1
	`, id).Scan(&b.ID, &b.OwnerID, &b.Name, &b.Timezone, &b.CreatedAt)
	if err != nil {
		return model.Business{}, notFoundOr(err)
	}
	return b, nil
}

func (r *Repository) CreateBusiness(ctx context.Context, ownerID, name, timezone string) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO businesses (id, owner_id, name, timezone)
		VALUES ($1, $2, $3, $4)
	`, id, ownerID, name, timezone)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) UpdateBusinessProfile(ctx context.Context, businessID, name, timezone string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE businesses
		SET name = $2, timezone = $3, updated_at = now()
		WHERE id = $1
	`, businessID, name, timezone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return scheduler.ErrNotFound
	}
	return nil
}

func (r *Repository) GetService(ctx context.Context, id string) (model.Service, error) {
	var s model.Service
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, business_id::text, name, duration_minutes, price::text, active, created_at
		FROM services
		WHERE id = $1
	`, id).Scan(&s.ID, &s.BusinessID, &s.Name, &s.DurationMins, &s.Price, &s.Active, &s.CreatedAt)
	if err != nil {
		return model.Service{}, notFoundOr(err)
	}
	return s, nil
}

func (r *Repository) CreateService(ctx context.Context, businessID, name string, durationMins int, price string) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO services (id, business_id, name, duration_minutes, price)
		VALUES ($1, $2, $3, $4, $5)
	`, id, businessID, name, durationMins, price)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListServices(ctx context.Context, businessID string, limit int) ([]model.Service, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, business_id::text, name, duration_minutes, price::text, active, created_at
		FROM services
		WHERE business_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, businessID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.BusinessID, &s.Name, &s.DurationMins, &s.Price, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// DeactivateService hides a service from slot and booking queries without
// deleting it.
func (r *Repository) DeactivateService(ctx context.Context, businessID, serviceID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE services
		SET active = false
		WHERE id = $1 AND business_id = $2
	`, serviceID, businessID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return scheduler.ErrNotFound
	}
	return nil
}

func (r *Repository) GetCustomer(ctx context.Context, id string) (model.Customer, error) {
	var c model.Customer
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, email, phone, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		return model.Customer{}, notFoundOr(err)
	}
	return c, nil
}

func (r *Repository) CreateCustomer(ctx context.Context, name, email, phone string) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO customers (id, name, email, phone)
		VALUES ($1, $2, $3, $4)
	`, id, name, email, phone)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) GetStaff(ctx context.Context, businessID, staffID string) (model.Staff, error) {
	var s model.Staff
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, business_id::text, name, active, created_at
		FROM staff
		WHERE id = $1 AND business_id = $2
	`, staffID, businessID).Scan(&s.ID, &s.BusinessID, &s.Name, &s.Active, &s.CreatedAt)
	if err != nil {
		return model.Staff{}, notFoundOr(err)
	}
	return s, nil
}

func (r *Repository) CreateStaff(ctx context.Context, businessID, name string, active bool) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff (id, business_id, name, active)
		VALUES ($1, $2, $3, $4)
	`, id, businessID, name, active)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListStaff(ctx context.Context, businessID string, limit int) ([]model.Staff, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, business_id::text, name, active, created_at
		FROM staff
		WHERE business_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, businessID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Staff
	for rows.Next() {
		var s model.Staff
		if err := rows.Scan(&s.ID, &s.BusinessID, &s.Name, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// CreateRule validates the clock strings against a reference date before
// writing, so an invalid rule is rejected whole, never partially applied.
func (r *Repository) CreateRule(ctx context.Context, businessID string, weekday int, startClock, endClock string) (string, error) {
	if weekday < 0 || weekday > 6 {
		return "", fmt.Errorf("%w: weekday out of range", scheduler.ErrInvalid)
	}
	reference := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := availability.ResolveDayInterval(reference, time.UTC, startClock, endClock); err != nil {
		return "", fmt.Errorf("%w: %v", scheduler.ErrInvalid, err)
	}

	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO availability_rules (id, business_id, weekday, start_clock, end_clock)
		VALUES ($1, $2, $3, $4, $5)
	`, id, businessID, weekday, startClock, endClock)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListRules(ctx context.Context, businessID string, weekday int) ([]model.AvailabilityRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, business_id::text, weekday, start_clock, end_clock, created_at
		FROM availability_rules
		WHERE business_id = $1 AND weekday = $2
		ORDER BY start_clock ASC
	`, businessID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

func (r *Repository) ListAllRules(ctx context.Context, businessID string) ([]model.AvailabilityRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, business_id::text, weekday, start_clock, end_clock, created_at
		FROM availability_rules
		WHERE business_id = $1
		ORDER BY weekday ASC, start_clock ASC
	`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

func scanRules(rows pgx.Rows) ([]model.AvailabilityRule, error) {
	var out []model.AvailabilityRule
	for rows.Next() {
		var rule model.AvailabilityRule
		if err := rows.Scan(&rule.ID, &rule.BusinessID, &rule.Weekday, &rule.StartClock, &rule.EndClock, &rule.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) DeleteRule(ctx context.Context, businessID, ruleID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM availability_rules
		WHERE id = $1 AND business_id = $2
	`, ruleID, businessID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return scheduler.ErrNotFound
	}
	return nil
}

// CreateException stores a per-date override. The open form validates its
// clocks the same way rules do; the schema enforces one exception per
// (business, date).
func (r *Repository) CreateException(ctx context.Context, businessID string, date time.Time, closed bool, startClock, endClock string) (string, error) {
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if !closed {
		reference := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		if _, err := availability.ResolveDayInterval(reference, time.UTC, startClock, endClock); err != nil {
			return "", fmt.Errorf("%w: %v", scheduler.ErrInvalid, err)
		}
	} else {
		startClock, endClock = "", ""
	}

	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO availability_exceptions (id, business_id, date, closed, start_clock, end_clock)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, businessID, date, closed, startClock, endClock)
	if err != nil {
		if IsConflict(err) {
			return "", fmt.Errorf("%w: exception already exists for %s", scheduler.ErrConflict, date.Format("2006-01-02"))
		}
		return "", err
	}
	return id, nil
}

// GetException returns the exception for the UTC-normalized date, or nil when
// none exists. Ordering by created_at keeps the pick deterministic even if
// duplicates predate the unique index.
func (r *Repository) GetException(ctx context.Context, businessID string, date time.Time) (*model.AvailabilityException, error) {
	var exc model.AvailabilityException
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, business_id::text, date, closed, start_clock, end_clock, created_at
		FROM availability_exceptions
		WHERE business_id = $1 AND date = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, businessID, date).Scan(&exc.ID, &exc.BusinessID, &exc.Date, &exc.Closed, &exc.StartClock, &exc.EndClock, &exc.CreatedAt)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &exc, nil
}

func (r *Repository) ListExceptions(ctx context.Context, businessID string, from, to time.Time) ([]model.AvailabilityException, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, business_id::text, date, closed, start_clock, end_clock, created_at
		FROM availability_exceptions
		WHERE business_id = $1 AND date >= $2 AND date < $3
		ORDER BY date ASC
	`, businessID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AvailabilityException
	for rows.Next() {
		var exc model.AvailabilityException
		if err := rows.Scan(&exc.ID, &exc.BusinessID, &exc.Date, &exc.Closed, &exc.StartClock, &exc.EndClock, &exc.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, exc)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) DeleteException(ctx context.Context, businessID, exceptionID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM availability_exceptions
		WHERE id = $1 AND business_id = $2
	`, exceptionID, businessID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return scheduler.ErrNotFound
	}
	return nil
}
