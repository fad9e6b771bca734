package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"eventregistration/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name: "success",
			event: &domain.Event{
				Title:     "Go Meetup",
				Date:      date,
				TimeOfDay: "18:30",
				Location:  "Main Hall",
				Capacity:  50,
				CreatedAt: createdAt,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(title, description, date, time, location, capacity, created_at\)`).
					WithArgs("Go Meetup", sql.NullString{}, date, "18:30", "Main Hall", 50, createdAt).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
			},
			wantID: "ev-1",
		},
		{
			name: "non-positive capacity rejected before touching the store",
			event: &domain.Event{
				Title:     "Go Meetup",
				Date:      date,
				TimeOfDay: "18:30",
				Location:  "Main Hall",
				Capacity:  0,
				CreatedAt: createdAt,
			},
			mock:    func(mock sqlmock.Sqlmock) {},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "db error",
			event: &domain.Event{
				Title:     "Go Meetup",
				Date:      date,
				TimeOfDay: "18:30",
				Location:  "Main Hall",
				Capacity:  50,
				CreatedAt: createdAt,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
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
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.wantErr))
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success with registration count", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"id", "title", "description", "date", "time", "location", "capacity", "reminder_sent", "created_at", "registered_count"}).
			AddRow("ev-1", "Go Meetup", "Talks and pizza", date, "18:30", "Main Hall", 50, false, createdAt, 12)
		mock.ExpectQuery(`SELECT e.id, e.title, e.description`).
			WithArgs("ev-1").
			WillReturnRows(rows)

		repo := NewEventRepository(db)
		got, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "ev-1", got.ID)
		require.Equal(t, "Go Meetup", got.Title)
		require.NotNil(t, got.Description)
		require.Equal(t, "Talks and pizza", *got.Description)
		require.Equal(t, 12, got.RegisteredCount)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT e.id, e.title, e.description`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		got, err := repo.GetByID(ctx, "ev-missing")
		require.True(t, errors.Is(err, domain.ErrNotFound))
		require.Nil(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("ordered by date with counts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"id", "title", "description", "date", "time", "location", "capacity", "reminder_sent", "created_at", "registered_count"}).
			AddRow("ev-1", "Conf A", nil, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), "09:00", "Hall A", 100, false, createdAt, 40).
			AddRow("ev-2", "Conf B", nil, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), "09:00", "Hall B", 80, false, createdAt, 0)
		mock.ExpectQuery(`ORDER BY e.date ASC`).
			WillReturnRows(rows)

		repo := NewEventRepository(db)
		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, 40, got[0].RegisteredCount)
		require.Nil(t, got[0].Description)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`ORDER BY e.date ASC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "date", "time", "location", "capacity", "reminder_sent", "created_at", "registered_count"}))

		repo := NewEventRepository(db)
		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.Equal(t, []*domain.Event{}, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		mock       func(mock sqlmock.Sqlmock)
		wantErr    bool
		isNotFound bool
	}{
		{
			name: "deletes registrations and event in one transaction",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM registrations WHERE event_id = \$1`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 3))
				mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "not found rolls back",
			id:   "ev-missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM registrations WHERE event_id = \$1`).
					WithArgs("ev-missing").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
					WithArgs("ev-missing").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr:    true,
			isNotFound: true,
		},
		{
			name: "db error rolls back",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM registrations WHERE event_id = \$1`).
					WithArgs("ev-1").
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
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
			repo := NewEventRepository(db)
			err = repo.Delete(ctx, tt.id)
			if tt.wantErr {
				require.Error(t, err)
				if tt.isNotFound {
					require.True(t, errors.Is(err, domain.ErrNotFound))
				}
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_ListDue(t *testing.T) {
	ctx := context.Background()
	target := time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("returns only unreminded events on the target date", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"id", "title", "description", "date", "time", "location", "capacity", "reminder_sent", "created_at"}).
			AddRow("ev-1", "Go Meetup", nil, target, "18:30", "Main Hall", 50, false, createdAt)
		mock.ExpectQuery(`WHERE date = \$1 AND reminder_sent = FALSE`).
			WithArgs(target).
			WillReturnRows(rows)

		repo := NewEventRepository(db)
		got, err := repo.ListDue(ctx, target)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "ev-1", got[0].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`WHERE date = \$1 AND reminder_sent = FALSE`).
			WithArgs(target).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "date", "time", "location", "capacity", "reminder_sent", "created_at"}))

		repo := NewEventRepository(db)
		got, err := repo.ListDue(ctx, target)
		require.NoError(t, err)
		require.Empty(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_MarkReminded(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE events SET reminder_sent = TRUE WHERE id = \$1`).
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewEventRepository(db)
	require.NoError(t, repo.MarkReminded(ctx, "ev-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
