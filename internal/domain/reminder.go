package domain

import (
	"fmt"
	"time"
)

// Layouts used for stored and user-entered values
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = DateLayout + " " + TimeLayout
	CreatedLayout  = "2006-01-02 15:04:05"
)

// Reminder represents a one-time reminder. Date and Time are in UTC.
type Reminder struct {
	ID        int
	Text      string
	Date      string
	Time      string
	CreatedAt time.Time
	IsSent    bool
}

// DateTime returns the sort/comparison key "YYYY-MM-DD HH:MM"
func (r Reminder) DateTime() string {
	return r.Date + " " + r.Time
}

// TriggerAt parses the stored trigger instant
func (r Reminder) TriggerAt() (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, r.DateTime(), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reminder datetime %q: %w", r.DateTime(), err)
	}
	return t, nil
}

// PendingReminder is an unsent reminder together with its owner
type PendingReminder struct {
	UserID   int64
	Reminder Reminder
}
