package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventregistration/internal/domain"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

// Reserve claims one seat inside a single transaction.
//
// SELECT ... FOR UPDATE takes a row-level lock on the event, so concurrent
// reserves for the same event serialize on the capacity check while reserves
// for different events proceed in parallel. The registration count is read
// under that lock; without it two transactions could both see a free seat and
// overbook. The (event_id, email) unique constraint backs the duplicate check.
func (r *registrationRepository) Reserve(ctx context.Context, eventID, name, email string, phone *string) (*domain.Registration, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var capacity int
	err = tx.QueryRowContext(ctx,
		`SELECT capacity FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrNotFound
			return nil, err
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`,
		eventID,
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	if count >= capacity {
		err = domain.ErrEventFull
		return nil, err
	}

	reg := &domain.Registration{
		EventID: eventID,
		Name:    name,
		Email:   email,
		Phone:   phone,
	}
	var phoneNull sql.NullString
	if phone != nil {
		phoneNull = sql.NullString{String: *phone, Valid: true}
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO registrations (event_id, name, email, phone)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		eventID, name, email, phoneNull,
	).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			err = domain.ErrDuplicateRegistration
			return nil, err
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return reg, nil
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	query := `
		SELECT id, event_id, name, email, phone, reminder_sent, created_at
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at DESC
	`
	return r.queryRegistrations(ctx, query, eventID)
}

func (r *registrationRepository) ListUnreminded(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	query := `
		SELECT id, event_id, name, email, phone, reminder_sent, created_at
		FROM registrations
		WHERE event_id = $1 AND reminder_sent = FALSE
		ORDER BY created_at ASC
	`
	return r.queryRegistrations(ctx, query, eventID)
}

func (r *registrationRepository) queryRegistrations(ctx context.Context, query, eventID string) ([]*domain.Registration, error) {
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		var phoneNull sql.NullString
		if err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.Name, &reg.Email, &phoneNull,
			&reg.ReminderSent, &reg.CreatedAt,
		); err != nil {
			return nil, err
		}
		if phoneNull.Valid {
			reg.Phone = &phoneNull.String
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *registrationRepository) MarkReminded(ctx context.Context, id string) error {
	// No rows affected is fine: the flag flip is idempotent.
	_, err := r.DB.ExecContext(ctx, `UPDATE registrations SET reminder_sent = TRUE WHERE id = $1`, id)
	return err
}
