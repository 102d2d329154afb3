package testutil

import (
	"context"
	"time"

	"reminderbot/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

func (m *MockUserRepository) SetLanguage(ctx context.Context, userID int64, lang domain.Language) error {
	args := m.Called(ctx, userID, lang)
	return args.Error(0)
}

func (m *MockUserRepository) SetTimezone(ctx context.Context, userID int64, tz string) error {
	args := m.Called(ctx, userID, tz)
	return args.Error(0)
}

// MockReminderRepository is a mock for ReminderRepository
type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) AddReminder(ctx context.Context, userID int64, text, date, clock string) (*domain.Reminder, error) {
	args := m.Called(ctx, userID, text, date, clock)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reminder), args.Error(1)
}

func (m *MockReminderRepository) ListReminders(ctx context.Context, userID int64, activeOnly bool) ([]domain.Reminder, error) {
	args := m.Called(ctx, userID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reminder), args.Error(1)
}

func (m *MockReminderRepository) DeleteReminder(ctx context.Context, userID int64, id int) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockReminderRepository) MarkSent(ctx context.Context, userID int64, id int) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockReminderRepository) AllPendingReminders(ctx context.Context) ([]domain.PendingReminder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PendingReminder), args.Error(1)
}

func (m *MockReminderRepository) PurgeSent(ctx context.Context, triggeredBefore time.Time) (int, error) {
	args := m.Called(ctx, triggeredBefore)
	return args.Int(0), args.Error(1)
}

// MockNotifier is a mock for scheduler.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, userID int64, text string) error {
	args := m.Called(ctx, userID, text)
	return args.Error(0)
}
