package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventregistration/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	if e.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", domain.ErrInvalidInput)
	}
	query := `
		INSERT INTO events (title, description, date, time, location, capacity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var descNull sql.NullString
	if e.Description != nil {
		descNull = sql.NullString{String: *e.Description, Valid: true}
	}
	return r.DB.QueryRowContext(ctx, query,
		e.Title, descNull, e.Date, e.TimeOfDay, e.Location, e.Capacity, e.CreatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT e.id, e.title, e.description, e.date, e.time, e.location, e.capacity, e.reminder_sent, e.created_at,
			(SELECT COUNT(*) FROM registrations reg WHERE reg.event_id = e.id) AS registered_count
		FROM events e
		WHERE e.id = $1
	`
	e := &domain.Event{}
	var descNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Title, &descNull, &e.Date, &e.TimeOfDay, &e.Location,
		&e.Capacity, &e.ReminderSent, &e.CreatedAt, &e.RegisteredCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT e.id, e.title, e.description, e.date, e.time, e.location, e.capacity, e.reminder_sent, e.created_at,
			(SELECT COUNT(*) FROM registrations reg WHERE reg.event_id = e.id) AS registered_count
		FROM events e
		ORDER BY e.date ASC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		var descNull sql.NullString
		if err := rows.Scan(
			&e.ID, &e.Title, &descNull, &e.Date, &e.TimeOfDay, &e.Location,
			&e.Capacity, &e.ReminderSent, &e.CreatedAt, &e.RegisteredCount,
		); err != nil {
			return nil, err
		}
		if descNull.Valid {
			e.Description = &descNull.String
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Delete removes the event and its registrations in a single transaction so no
// reader ever observes registrations without their event.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM registrations WHERE event_id = $1`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		err = domain.ErrNotFound
		return err
	}
	return tx.Commit()
}

func (r *eventRepository) ListDue(ctx context.Context, targetDate time.Time) ([]*domain.Event, error) {
	query := `
		SELECT id, title, description, date, time, location, capacity, reminder_sent, created_at
		FROM events
		WHERE date = $1 AND reminder_sent = FALSE
	`
	rows, err := r.DB.QueryContext(ctx, query, targetDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		var descNull sql.NullString
		if err := rows.Scan(
			&e.ID, &e.Title, &descNull, &e.Date, &e.TimeOfDay, &e.Location,
			&e.Capacity, &e.ReminderSent, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if descNull.Valid {
			e.Description = &descNull.String
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) MarkReminded(ctx context.Context, id string) error {
	// No rows affected is fine: the flag flip is idempotent.
	_, err := r.DB.ExecContext(ctx, `UPDATE events SET reminder_sent = TRUE WHERE id = $1`, id)
	return err
}
