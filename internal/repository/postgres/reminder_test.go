package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderRepo_AddReminder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReminderRepo(db)

	userID := int64(123)
	created := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("UPDATE users").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"last_reminder_id"}).AddRow(4))
	mock.ExpectQuery("INSERT INTO reminders").
		WithArgs(userID, 4, "Call the doctor", "2025-10-28", "13:30").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	rem, err := repo.AddReminder(context.Background(), userID, "Call the doctor", "2025-10-28", "13:30")

	require.NoError(t, err)
	assert.Equal(t, 4, rem.ID)
	assert.Equal(t, "2025-10-28 13:30", rem.DateTime())
	assert.Equal(t, created, rem.CreatedAt)
	assert.False(t, rem.IsSent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepo_AddReminder_RollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReminderRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("UPDATE users").
		WillReturnRows(sqlmock.NewRows([]string{"last_reminder_id"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO reminders").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	rem, err := repo.AddReminder(context.Background(), 1, "text", "2025-10-28", "10:00")

	assert.Error(t, err)
	assert.Nil(t, rem)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepo_ListReminders(t *testing.T) {
	tests := []struct {
		name          string
		activeOnly    bool
		mockRows      *sqlmock.Rows
		mockError     error
		expectedCount int
		expectedError bool
	}{
		{
			name:       "all reminders",
			activeOnly: false,
			mockRows: sqlmock.NewRows([]string{"id", "reminder_text", "remind_date", "remind_time", "created_at", "is_sent"}).
				AddRow(1, "a", "2025-10-28", "10:00", time.Now(), true).
				AddRow(2, "b", "2025-10-29", "10:00", time.Now(), false),
			expectedCount: 2,
		},
		{
			name:          "empty",
			activeOnly:    true,
			mockRows:      sqlmock.NewRows([]string{"id", "reminder_text", "remind_date", "remind_time", "created_at", "is_sent"}),
			expectedCount: 0,
		},
		{
			name:       "scan error",
			activeOnly: true,
			mockRows: sqlmock.NewRows([]string{"id", "reminder_text", "remind_date", "remind_time", "created_at", "is_sent"}).
				AddRow("invalid", "a", "2025-10-28", "10:00", time.Now(), false),
			expectedError: true,
		},
		{
			name:          "query error",
			activeOnly:    false,
			mockError:     sql.ErrConnDone,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewReminderRepo(db)

			expect := mock.ExpectQuery("SELECT (.+) FROM reminders").WithArgs(int64(123), tt.activeOnly)
			if tt.mockError != nil {
				expect.WillReturnError(tt.mockError)
			} else {
				expect.WillReturnRows(tt.mockRows)
			}

			reminders, err := repo.ListReminders(context.Background(), 123, tt.activeOnly)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, reminders, tt.expectedCount)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReminderRepo_DeleteReminder(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		expected bool
	}{
		{name: "existing reminder", affected: 1, expected: true},
		{name: "missing reminder", affected: 0, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewReminderRepo(db)

			mock.ExpectExec("DELETE FROM reminders WHERE user_id = \\$1 AND id = \\$2").
				WithArgs(int64(123), 5).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			removed, err := repo.DeleteReminder(context.Background(), 123, 5)

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, removed)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReminderRepo_MarkSent(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		expected bool
	}{
		{name: "existing reminder", affected: 1, expected: true},
		{name: "missing reminder", affected: 0, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewReminderRepo(db)

			mock.ExpectExec("UPDATE reminders SET is_sent = TRUE").
				WithArgs(int64(123), 5).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			found, err := repo.MarkSent(context.Background(), 123, 5)

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, found)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReminderRepo_AllPendingReminders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReminderRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM reminders WHERE is_sent = FALSE").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "id", "reminder_text", "remind_date", "remind_time", "created_at", "is_sent"}).
			AddRow(1, 1, "a", "2025-10-28", "10:00", time.Now(), false).
			AddRow(2, 3, "b", "2025-10-28", "11:00", time.Now(), false))

	pending, err := repo.AllPendingReminders(context.Background())

	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, int64(2), pending[1].UserID)
	assert.Equal(t, 3, pending[1].Reminder.ID)
	assert.Equal(t, "b", pending[1].Reminder.Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepo_PurgeSent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReminderRepo(db)

	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("DELETE FROM reminders").
		WithArgs("2025-06-01 00:00").
		WillReturnResult(sqlmock.NewResult(0, 3))

	purged, err := repo.PurgeSent(context.Background(), cutoff)

	assert.NoError(t, err)
	assert.Equal(t, 3, purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}
