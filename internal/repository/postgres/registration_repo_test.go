package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"eventregistration/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestRegistrationRepository_Reserve(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(10))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM registrations WHERE event_id = \$1`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
				mock.ExpectQuery(`INSERT INTO registrations`).
					WithArgs("ev-1", "Alice", "a@x.com", sql.NullString{}).
					WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("reg-1", createdAt))
				mock.ExpectCommit()
			},
			wantID: "reg-1",
		},
		{
			name: "last seat",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(1))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM registrations WHERE event_id = \$1`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectQuery(`INSERT INTO registrations`).
					WithArgs("ev-1", "Alice", "a@x.com", sql.NullString{}).
					WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("reg-1", createdAt))
				mock.ExpectCommit()
			},
			wantID: "reg-1",
		},
		{
			name: "event full",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(2))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM registrations WHERE event_id = \$1`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrEventFull,
		},
		{
			name: "event not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-1").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "duplicate registration",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(10))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM registrations WHERE event_id = \$1`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
				mock.ExpectQuery(`INSERT INTO registrations`).
					WithArgs("ev-1", "Alice", "a@x.com", sql.NullString{}).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "registrations_event_id_email_key"})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrDuplicateRegistration,
		},
		{
			name: "db error on lock",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-1").
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			reg, err := repo.Reserve(ctx, "ev-1", "Alice", "a@x.com", nil)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.wantErr))
				require.Nil(t, reg)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, reg.ID)
			require.Equal(t, "ev-1", reg.EventID)
			require.Equal(t, "a@x.com", reg.Email)
			require.Equal(t, createdAt, reg.CreatedAt)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_ListUnreminded(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    int
		wantErr bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "event_id", "name", "email", "phone", "reminder_sent", "created_at"}).
					AddRow("reg-1", "ev-1", "Alice", "a@x.com", nil, false, createdAt).
					AddRow("reg-2", "ev-1", "Bob", "b@x.com", "555-0100", false, createdAt)
				mock.ExpectQuery(`SELECT id, event_id, name, email, phone, reminder_sent, created_at`).
					WithArgs("ev-1").
					WillReturnRows(rows)
			},
			want: 2,
		},
		{
			name: "empty",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, event_id, name, email, phone, reminder_sent, created_at`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "name", "email", "phone", "reminder_sent", "created_at"}))
			},
			want: 0,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, event_id, name, email, phone, reminder_sent, created_at`).
					WithArgs("ev-1").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			regs, err := repo.ListUnreminded(ctx, "ev-1")
			if tt.wantErr {
				require.Error(t, err)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Len(t, regs, tt.want)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_MarkReminded(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE registrations SET reminder_sent = TRUE WHERE id = \$1`).
			WithArgs("reg-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewRegistrationRepository(db)
		require.NoError(t, repo.MarkReminded(ctx, "reg-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already set is not an error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE registrations SET reminder_sent = TRUE WHERE id = \$1`).
			WithArgs("reg-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewRegistrationRepository(db)
		require.NoError(t, repo.MarkReminded(ctx, "reg-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
