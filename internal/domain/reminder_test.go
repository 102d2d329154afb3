package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReminder_DateTime(t *testing.T) {
	r := Reminder{Date: "2025-10-28", Time: "13:30"}
	assert.Equal(t, "2025-10-28 13:30", r.DateTime())
}

func TestReminder_TriggerAt(t *testing.T) {
	tests := []struct {
		name          string
		date          string
		time          string
		expected      time.Time
		expectedError bool
	}{
		{
			name:     "valid datetime",
			date:     "2025-10-28",
			time:     "13:30",
			expected: time.Date(2025, 10, 28, 13, 30, 0, 0, time.UTC),
		},
		{
			name:          "malformed date",
			date:          "28.10.2025",
			time:          "13:30",
			expectedError: true,
		},
		{
			name:          "malformed time",
			date:          "2025-10-28",
			time:          "25:99",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Reminder{Date: tt.date, Time: tt.time}
			result, err := r.TriggerAt()

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.True(t, tt.expected.Equal(result))
			}
		})
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		code     string
		expected Language
		ok       bool
	}{
		{code: "en", expected: LangEN, ok: true},
		{code: "ru", expected: LangRU, ok: true},
		{code: "ua", expected: LangUA, ok: true},
		{code: "uk", ok: false},
		{code: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			lang, ok := ParseLanguage(tt.code)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, lang)
		})
	}
}

func TestNewUserProfile(t *testing.T) {
	p := NewUserProfile(42)

	assert.Equal(t, int64(42), p.UserID)
	assert.Equal(t, LangEN, p.Language)
	assert.Equal(t, "UTC", p.Timezone)
	assert.NotNil(t, p.Reminders)
	assert.Empty(t, p.Reminders)
}
