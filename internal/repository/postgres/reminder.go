package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reminderbot/internal/domain"
)

// ReminderRepo implements repository.ReminderRepository
type ReminderRepo struct {
	db *sql.DB
}

// NewReminderRepo creates a new reminder repository
func NewReminderRepo(db *sql.DB) *ReminderRepo {
	return &ReminderRepo{db: db}
}

// AddReminder allocates the next per-user id and inserts an unsent reminder
func (r *ReminderRepo) AddReminder(ctx context.Context, userID int64, text, date, clock string) (*domain.Reminder, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := ensureUser(ctx, tx, userID); err != nil {
		return nil, err
	}

	rem := domain.Reminder{Text: text, Date: date, Time: clock}

	query := `
		UPDATE users
		SET last_reminder_id = last_reminder_id + 1
		WHERE user_id = $1
		RETURNING last_reminder_id
	`
	if err := tx.QueryRowContext(ctx, query, userID).Scan(&rem.ID); err != nil {
		return nil, fmt.Errorf("failed to allocate reminder id: %w", err)
	}

	query = `
		INSERT INTO reminders (user_id, id, reminder_text, remind_date, remind_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	if err := tx.QueryRowContext(ctx, query, userID, rem.ID, text, date, clock).Scan(&rem.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &rem, nil
}

// ListReminders returns the user's reminders in creation order
func (r *ReminderRepo) ListReminders(ctx context.Context, userID int64, activeOnly bool) ([]domain.Reminder, error) {
	query := `
		SELECT id, reminder_text, remind_date, remind_time, created_at, is_sent
		FROM reminders
		WHERE user_id = $1 AND (is_sent = FALSE OR $2 = FALSE)
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, userID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := []domain.Reminder{}
	for rows.Next() {
		var rem domain.Reminder
		if err := rows.Scan(&rem.ID, &rem.Text, &rem.Date, &rem.Time, &rem.CreatedAt, &rem.IsSent); err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}

	return reminders, rows.Err()
}

// DeleteReminder removes a reminder and reports whether it existed
func (r *ReminderRepo) DeleteReminder(ctx context.Context, userID int64, id int) (bool, error) {
	query := `DELETE FROM reminders WHERE user_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MarkSent flags a reminder as delivered and reports whether it exists
func (r *ReminderRepo) MarkSent(ctx context.Context, userID int64, id int) (bool, error) {
	query := `UPDATE reminders SET is_sent = TRUE WHERE user_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// AllPendingReminders returns unsent reminders of all users
func (r *ReminderRepo) AllPendingReminders(ctx context.Context) ([]domain.PendingReminder, error) {
	query := `
		SELECT user_id, id, reminder_text, remind_date, remind_time, created_at, is_sent
		FROM reminders
		WHERE is_sent = FALSE
		ORDER BY user_id, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []domain.PendingReminder
	for rows.Next() {
		var p domain.PendingReminder
		rem := &p.Reminder
		if err := rows.Scan(&p.UserID, &rem.ID, &rem.Text, &rem.Date, &rem.Time, &rem.CreatedAt, &rem.IsSent); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}

	return pending, rows.Err()
}

// PurgeSent deletes sent reminders whose trigger instant is before the cutoff
func (r *ReminderRepo) PurgeSent(ctx context.Context, triggeredBefore time.Time) (int, error) {
	query := `
		DELETE FROM reminders
		WHERE is_sent = TRUE
			AND (remind_date || ' ' || remind_time) < $1
	`
	res, err := r.db.ExecContext(ctx, query, triggeredBefore.UTC().Format(domain.DateTimeLayout))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
