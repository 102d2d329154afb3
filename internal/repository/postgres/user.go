package postgres

import (
	"context"
	"database/sql"

	"reminderbot/internal/domain"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db        *sql.DB
	reminders *ReminderRepo
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db, reminders: NewReminderRepo(db)}
}

// ensureUser creates the user row with defaults if it does not exist
func ensureUser(ctx context.Context, ex execer, userID int64) error {
	query := `
		INSERT INTO users (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := ex.ExecContext(ctx, query, userID)
	return err
}

// GetProfile returns the user's profile, creating it on first access
func (r *UserRepo) GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	if err := ensureUser(ctx, r.db, userID); err != nil {
		return nil, err
	}

	var lang, tz string
	query := `SELECT language, timezone FROM users WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&lang, &tz); err != nil {
		return nil, err
	}

	reminders, err := r.reminders.ListReminders(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	return &domain.UserProfile{
		UserID:    userID,
		Language:  domain.Language(lang),
		Timezone:  tz,
		Reminders: reminders,
	}, nil
}

// SetLanguage stores the user's language
func (r *UserRepo) SetLanguage(ctx context.Context, userID int64, lang domain.Language) error {
	query := `
		INSERT INTO users (user_id, language)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET language = EXCLUDED.language
	`
	_, err := r.db.ExecContext(ctx, query, userID, string(lang))
	return err
}

// SetTimezone stores the user's timezone
func (r *UserRepo) SetTimezone(ctx context.Context, userID int64, tz string) error {
	query := `
		INSERT INTO users (user_id, timezone)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET timezone = EXCLUDED.timezone
	`
	_, err := r.db.ExecContext(ctx, query, userID, tz)
	return err
}
