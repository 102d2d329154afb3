// Package sqlite keeps profiles and reminders in keyed SQLite tables.
// Each operation touches only the rows of one user, so concurrent updates
// of different reminders do not overwrite each other.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"reminderbot/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type reminderRow struct {
	UserID    int64     `db:"user_id"`
	ID        int       `db:"id"`
	Text      string    `db:"reminder_text"`
	Date      string    `db:"remind_date"`
	Time      string    `db:"remind_time"`
	CreatedAt time.Time `db:"created_at"`
	IsSent    bool      `db:"is_sent"`
}

func (r reminderRow) toDomain() domain.Reminder {
	return domain.Reminder{
		ID:        r.ID,
		Text:      r.Text,
		Date:      r.Date,
		Time:      r.Time,
		CreatedAt: r.CreatedAt,
		IsSent:    r.IsSent,
	}
}

const reminderColumns = `user_id, id, reminder_text, remind_date, remind_time, created_at, is_sent`

// Store implements repository.Store on SQLite
type Store struct {
	db    *sqlx.DB
	clock clockwork.Clock
}

// Open opens (and creates when missing) the database at path and applies the schema
func Open(path string, clock clockwork.Clock) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, clock: clock}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func ensureUser(ctx context.Context, ex sqlx.ExecerContext, userID int64) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO users (user_id) VALUES (?) ON CONFLICT(user_id) DO NOTHING`,
		userID,
	)
	return err
}

// GetProfile returns the user's profile, creating it with defaults on first access
func (s *Store) GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	if err := ensureUser(ctx, s.db, userID); err != nil {
		return nil, err
	}

	var row struct {
		Language string `db:"language"`
		Timezone string `db:"timezone"`
	}
	if err := s.db.GetContext(ctx, &row,
		`SELECT language, timezone FROM users WHERE user_id = ?`, userID,
	); err != nil {
		return nil, err
	}

	reminders, err := s.ListReminders(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	return &domain.UserProfile{
		UserID:    userID,
		Language:  domain.Language(row.Language),
		Timezone:  row.Timezone,
		Reminders: reminders,
	}, nil
}

// SetLanguage stores the user's language
func (s *Store) SetLanguage(ctx context.Context, userID int64, lang domain.Language) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, language) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET language = excluded.language`,
		userID, string(lang),
	)
	return err
}

// SetTimezone stores the user's timezone
func (s *Store) SetTimezone(ctx context.Context, userID int64, tz string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, timezone) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET timezone = excluded.timezone`,
		userID, tz,
	)
	return err
}

// AddReminder inserts a reminder with the next id from the user's counter
func (s *Store) AddReminder(ctx context.Context, userID int64, text, date, clock string) (*domain.Reminder, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := ensureUser(ctx, tx, userID); err != nil {
		return nil, err
	}

	row := reminderRow{
		UserID:    userID,
		Text:      text,
		Date:      date,
		Time:      clock,
		CreatedAt: s.clock.Now(),
	}
	if err := tx.GetContext(ctx, &row.ID,
		`UPDATE users SET last_reminder_id = last_reminder_id + 1 WHERE user_id = ? RETURNING last_reminder_id`,
		userID,
	); err != nil {
		return nil, fmt.Errorf("failed to allocate reminder id: %w", err)
	}

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO reminders (`+reminderColumns+`)
		VALUES (:user_id, :id, :reminder_text, :remind_date, :remind_time, :created_at, :is_sent)`,
		row,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	r := row.toDomain()
	return &r, nil
}

// ListReminders returns reminders in creation order
func (s *Store) ListReminders(ctx context.Context, userID int64, activeOnly bool) ([]domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = ?`
	if activeOnly {
		query += ` AND is_sent = 0`
	}
	query += ` ORDER BY id`

	var rows []reminderRow
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}

	reminders := make([]domain.Reminder, 0, len(rows))
	for _, r := range rows {
		reminders = append(reminders, r.toDomain())
	}
	return reminders, nil
}

// DeleteReminder removes a reminder and reports whether it existed
func (s *Store) DeleteReminder(ctx context.Context, userID int64, id int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// MarkSent flags a reminder as delivered and reports whether it exists
func (s *Store) MarkSent(ctx context.Context, userID int64, id int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE reminders SET is_sent = 1 WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// AllPendingReminders returns unsent reminders of all users
func (s *Store) AllPendingReminders(ctx context.Context) ([]domain.PendingReminder, error) {
	var rows []reminderRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT `+reminderColumns+` FROM reminders WHERE is_sent = 0 ORDER BY user_id, id`,
	); err != nil {
		return nil, err
	}

	pending := make([]domain.PendingReminder, 0, len(rows))
	for _, r := range rows {
		pending = append(pending, domain.PendingReminder{UserID: r.UserID, Reminder: r.toDomain()})
	}
	return pending, nil
}

// PurgeSent removes sent reminders whose trigger instant is before the cutoff
func (s *Store) PurgeSent(ctx context.Context, triggeredBefore time.Time) (int, error) {
	cutoff := triggeredBefore.UTC().Format(domain.DateTimeLayout)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE is_sent = 1 AND (remind_date || ' ' || remind_time) < ?`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
