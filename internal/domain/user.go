package domain

import "time"

// Language is a supported interface language code
type Language string

const (
	LangEN Language = "en"
	LangRU Language = "ru"
	LangUA Language = "ua"
)

// DefaultLanguage is assigned to users on first access
const DefaultLanguage = LangEN

// DefaultTimezone is assigned to users on first access
const DefaultTimezone = "UTC"

// Languages lists supported languages in display order
var Languages = []Language{LangEN, LangRU, LangUA}

// ParseLanguage validates a language code
func ParseLanguage(code string) (Language, bool) {
	for _, l := range Languages {
		if string(l) == code {
			return l, true
		}
	}
	return "", false
}

// UserProfile represents a bot user with preferences and reminders
type UserProfile struct {
	UserID    int64
	Language  Language
	Timezone  string
	Reminders []Reminder
}

// NewUserProfile returns a profile with default settings
func NewUserProfile(userID int64) *UserProfile {
	return &UserProfile{
		UserID:    userID,
		Language:  DefaultLanguage,
		Timezone:  DefaultTimezone,
		Reminders: []Reminder{},
	}
}

// DialogState represents user's position in the reminder creation dialog
type DialogState string

const (
	StateIdle         DialogState = "idle"
	StateAwaitingText DialogState = "awaiting_text"
	StateAwaitingDate DialogState = "awaiting_date"
	StateAwaitingTime DialogState = "awaiting_time"
)

// DialogSession holds temporary data collected during reminder creation
type DialogSession struct {
	State     DialogState
	Text      string
	Date      string // local date as entered, YYYY-MM-DD
	UpdatedAt time.Time
}
