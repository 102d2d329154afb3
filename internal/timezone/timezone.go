// Package timezone holds the curated timezone list offered to users and
// conversions between a user's wall-clock time and UTC.
package timezone

import (
	"fmt"
	"sync"
	"time"
	_ "time/tzdata" // zone database for hosts without /usr/share/zoneinfo

	"reminderbot/internal/domain"

	"go.uber.org/zap"
)

// Zone is a catalog entry. Label carries a static UTC offset hint.
type Zone struct {
	ID    string
	Label string
}

var zones = []Zone{
	{ID: "UTC", Label: "🌍 UTC (GMT+0)"},
	{ID: "Europe/London", Label: "🇬🇧 London (GMT+0)"},
	{ID: "Europe/Paris", Label: "🇫🇷 Paris (GMT+1)"},
	{ID: "Europe/Berlin", Label: "🇩🇪 Berlin (GMT+1)"},
	{ID: "Europe/Kiev", Label: "🇺🇦 Kyiv (GMT+2)"},
	{ID: "Europe/Moscow", Label: "🇷🇺 Moscow (GMT+3)"},
	{ID: "Asia/Dubai", Label: "🇦🇪 Dubai (GMT+4)"},
	{ID: "Asia/Karachi", Label: "🇵🇰 Karachi (GMT+5)"},
	{ID: "Asia/Almaty", Label: "🇰🇿 Almaty (GMT+6)"},
	{ID: "Asia/Bangkok", Label: "🇹🇭 Bangkok (GMT+7)"},
	{ID: "Asia/Shanghai", Label: "🇨🇳 Shanghai (GMT+8)"},
	{ID: "Asia/Tokyo", Label: "🇯🇵 Tokyo (GMT+9)"},
	{ID: "Australia/Sydney", Label: "🇦🇺 Sydney (GMT+11)"},
	{ID: "Pacific/Auckland", Label: "🇳🇿 Auckland (GMT+13)"},
	{ID: "America/New_York", Label: "🇺🇸 New York (GMT-5)"},
	{ID: "America/Chicago", Label: "🇺🇸 Chicago (GMT-6)"},
	{ID: "America/Denver", Label: "🇺🇸 Denver (GMT-7)"},
	{ID: "America/Los_Angeles", Label: "🇺🇸 Los Angeles (GMT-8)"},
}

// List returns the catalog in display order
func List() []Zone {
	out := make([]Zone, len(zones))
	copy(out, zones)
	return out
}

// Lookup finds a catalog entry by id
func Lookup(id string) (Zone, bool) {
	for _, z := range zones {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

// Converter translates between local wall-clock time and UTC.
// Unknown zones degrade to treating the input as UTC.
type Converter struct {
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]*time.Location
}

// NewConverter creates a new converter
func NewConverter(logger *zap.Logger) *Converter {
	return &Converter{
		logger: logger,
		cache:  make(map[string]*time.Location),
	}
}

// ToUTC interprets date (YYYY-MM-DD) and clock (HH:MM) as wall-clock time in tzID
// and returns the UTC instant. An error is returned only for unparsable input.
func (c *Converter) ToUTC(date, clock, tzID string) (time.Time, error) {
	naive, err := time.ParseInLocation(domain.DateTimeLayout, date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid local datetime: %w", err)
	}

	loc, err := c.location(tzID)
	if err != nil {
		c.logger.Warn("Timezone conversion degraded to UTC",
			zap.String("timezone", tzID),
			zap.String("direction", "to_utc"),
			zap.Error(err),
		)
		return naive, nil
	}

	local := time.Date(naive.Year(), naive.Month(), naive.Day(), naive.Hour(), naive.Minute(), 0, 0, loc)
	return local.UTC(), nil
}

// ToLocal converts a UTC instant to wall-clock time in tzID.
// On failure the input is returned unchanged.
func (c *Converter) ToLocal(utc time.Time, tzID string) time.Time {
	loc, err := c.location(tzID)
	if err != nil {
		c.logger.Warn("Timezone conversion degraded to UTC",
			zap.String("timezone", tzID),
			zap.String("direction", "to_local"),
			zap.Error(err),
		)
		return utc
	}
	return utc.In(loc)
}

// valid reports whether tzID can be loaded
func (c *Converter) valid(tzID string) bool {
	_, err := c.location(tzID)
	return err == nil
}

func (c *Converter) location(tzID string) (*time.Location, error) {
	if tzID == "" {
		return nil, fmt.Errorf("empty timezone")
	}

	c.mu.RLock()
	loc, ok := c.cache[tzID]
	c.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(tzID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[tzID] = loc
	c.mu.Unlock()
	return loc, nil
}

// FormatLocal renders a stored UTC date and clock as wall-clock strings in tzID.
// Unparsable input is returned as is.
func (c *Converter) FormatLocal(date, clock, tzID string) (string, string) {
	utc, err := time.ParseInLocation(domain.DateTimeLayout, date+" "+clock, time.UTC)
	if err != nil {
		return date, clock
	}
	local := c.ToLocal(utc, tzID)
	return local.Format(domain.DateLayout), local.Format(domain.TimeLayout)
}
