package testutil

import (
	"reminderbot/internal/domain"
	"time"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestProfile creates a test profile
func NewTestProfile(userID int64, lang domain.Language, tz string) *domain.UserProfile {
	return &domain.UserProfile{
		UserID:    userID,
		Language:  lang,
		Timezone:  tz,
		Reminders: []domain.Reminder{},
	}
}

// NewTestReminder creates an unsent test reminder with a UTC trigger
func NewTestReminder(id int, text, date, clock string) domain.Reminder {
	return domain.Reminder{
		ID:        id,
		Text:      text,
		Date:      date,
		Time:      clock,
		CreatedAt: time.Now(),
	}
}
