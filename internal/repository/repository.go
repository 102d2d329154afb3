package repository

import (
	"context"
	"errors"
	"time"

	"reminderbot/internal/domain"
)

// ErrReminderNotFound is returned when a reminder id does not exist for the user
var ErrReminderNotFound = errors.New("reminder not found")

// UserRepository defines user profile operations.
// Profiles are created with defaults on first access.
type UserRepository interface {
	GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error)
	SetLanguage(ctx context.Context, userID int64, lang domain.Language) error
	SetTimezone(ctx context.Context, userID int64, tz string) error
}

// ReminderRepository defines reminder data operations
type ReminderRepository interface {
	AddReminder(ctx context.Context, userID int64, text, date, clock string) (*domain.Reminder, error)
	ListReminders(ctx context.Context, userID int64, activeOnly bool) ([]domain.Reminder, error)
	DeleteReminder(ctx context.Context, userID int64, id int) (bool, error)
	MarkSent(ctx context.Context, userID int64, id int) (bool, error)
	AllPendingReminders(ctx context.Context) ([]domain.PendingReminder, error)
	PurgeSent(ctx context.Context, triggeredBefore time.Time) (int, error)
}

// Store is a durable backend serving both repositories
type Store interface {
	UserRepository
	ReminderRepository
	Close() error
}

// SessionRepository keeps transient dialog sessions keyed by conversation
type SessionRepository interface {
	Get(userID int64) (*domain.DialogSession, bool)
	Set(userID int64, session *domain.DialogSession)
	Delete(userID int64)
}
