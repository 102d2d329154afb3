// Package jsonfile stores all users in a single JSON document.
//
// Every mutating call loads the whole document, mutates it and writes it back.
// Calls on one Store are serialized by a mutex; separate processes (or separate
// Store values) sharing a file are not coordinated and the last write wins.
// An unreadable or corrupt file is treated as an empty dataset.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"reminderbot/internal/domain"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type reminderRecord struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	DateTime  string `json:"datetime"`
	CreatedAt string `json:"created_at"`
	IsSent    bool   `json:"is_sent"`
}

type userRecord struct {
	Language       string           `json:"language"`
	Timezone       string           `json:"timezone"`
	LastReminderID int              `json:"last_reminder_id"`
	Reminders      []reminderRecord `json:"reminders"`
}

type document map[string]*userRecord

// Store implements repository.Store on top of a JSON file
type Store struct {
	path   string
	clock  clockwork.Clock
	logger *zap.Logger

	mu sync.Mutex
}

// New creates a store backed by path. The file is created on first write.
func New(path string, clock clockwork.Clock, logger *zap.Logger) *Store {
	return &Store{
		path:   path,
		clock:  clock,
		logger: logger,
	}
}

// Close is a no-op, the file is not held open between calls
func (s *Store) Close() error {
	return nil
}

// GetProfile returns the user's profile, creating it with defaults on first access
func (s *Store) GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	var profile *domain.UserProfile
	err := s.update(ctx, func(doc document) (bool, error) {
		u, created := doc.ensure(userID)
		profile = u.toProfile(userID)
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// SetLanguage stores the user's language
func (s *Store) SetLanguage(ctx context.Context, userID int64, lang domain.Language) error {
	return s.update(ctx, func(doc document) (bool, error) {
		u, _ := doc.ensure(userID)
		u.Language = string(lang)
		return true, nil
	})
}

// SetTimezone stores the user's timezone
func (s *Store) SetTimezone(ctx context.Context, userID int64, tz string) error {
	return s.update(ctx, func(doc document) (bool, error) {
		u, _ := doc.ensure(userID)
		u.Timezone = tz
		return true, nil
	})
}

// AddReminder appends a new unsent reminder with the next per-user id
func (s *Store) AddReminder(ctx context.Context, userID int64, text, date, clock string) (*domain.Reminder, error) {
	var created domain.Reminder
	err := s.update(ctx, func(doc document) (bool, error) {
		u, _ := doc.ensure(userID)
		u.LastReminderID++

		rec := reminderRecord{
			ID:        u.LastReminderID,
			Text:      text,
			Date:      date,
			Time:      clock,
			DateTime:  date + " " + clock,
			CreatedAt: s.clock.Now().Format(domain.CreatedLayout),
			IsSent:    false,
		}
		u.Reminders = append(u.Reminders, rec)
		created = rec.toDomain()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListReminders returns reminders in insertion order
func (s *Store) ListReminders(ctx context.Context, userID int64, activeOnly bool) ([]domain.Reminder, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	reminders := make([]domain.Reminder, 0, len(profile.Reminders))
	for _, r := range profile.Reminders {
		if activeOnly && r.IsSent {
			continue
		}
		reminders = append(reminders, r)
	}
	return reminders, nil
}

// DeleteReminder removes a reminder and reports whether it existed
func (s *Store) DeleteReminder(ctx context.Context, userID int64, id int) (bool, error) {
	var removed bool
	err := s.update(ctx, func(doc document) (bool, error) {
		u, ok := doc[userKey(userID)]
		if !ok {
			return false, nil
		}

		kept := u.Reminders[:0]
		for _, r := range u.Reminders {
			if r.ID == id {
				removed = true
				continue
			}
			kept = append(kept, r)
		}
		u.Reminders = kept
		return removed, nil
	})
	return removed, err
}

// MarkSent flags a reminder as delivered and reports whether it exists
func (s *Store) MarkSent(ctx context.Context, userID int64, id int) (bool, error) {
	var found bool
	err := s.update(ctx, func(doc document) (bool, error) {
		u, ok := doc[userKey(userID)]
		if !ok {
			return false, nil
		}
		for i := range u.Reminders {
			if u.Reminders[i].ID == id {
				found = true
				u.Reminders[i].IsSent = true
				return true, nil
			}
		}
		return false, nil
	})
	return found, err
}

// AllPendingReminders returns unsent reminders of all users ordered by user id
func (s *Store) AllPendingReminders(ctx context.Context) ([]domain.PendingReminder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	doc := s.load()
	s.mu.Unlock()

	var pending []domain.PendingReminder
	for key, u := range doc {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			s.logger.Warn("Skipping record with invalid user key", zap.String("key", key))
			continue
		}
		for _, r := range u.Reminders {
			if r.IsSent {
				continue
			}
			pending = append(pending, domain.PendingReminder{UserID: userID, Reminder: r.toDomain()})
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].UserID < pending[j].UserID
	})
	return pending, nil
}

// PurgeSent removes sent reminders whose trigger instant is before the cutoff
func (s *Store) PurgeSent(ctx context.Context, triggeredBefore time.Time) (int, error) {
	cutoff := triggeredBefore.UTC().Format(domain.DateTimeLayout)

	var purged int
	err := s.update(ctx, func(doc document) (bool, error) {
		for _, u := range doc {
			kept := u.Reminders[:0]
			for _, r := range u.Reminders {
				if r.IsSent && r.Date+" "+r.Time < cutoff {
					purged++
					continue
				}
				kept = append(kept, r)
			}
			u.Reminders = kept
		}
		return purged > 0, nil
	})
	return purged, err
}

// update runs fn on the loaded document and saves it when fn reports a change
func (s *Store) update(ctx context.Context, fn func(doc document) (bool, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	changed, err := fn(doc)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.save(doc)
}

func (s *Store) load() document {
	doc := make(document)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc
	}
	if err != nil {
		s.logger.Error("Store file unreadable, using empty dataset",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return doc
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Error("Store file corrupt, using empty dataset",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return make(document)
	}

	for key, u := range doc {
		if u == nil {
			doc[key] = newUserRecord()
			continue
		}
		u.normalize()
	}
	return doc
}

func (s *Store) save(doc document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".reminders-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func newUserRecord() *userRecord {
	return &userRecord{
		Language:  string(domain.DefaultLanguage),
		Timezone:  domain.DefaultTimezone,
		Reminders: []reminderRecord{},
	}
}

// ensure returns the user's record, creating it when absent
func (d document) ensure(userID int64) (*userRecord, bool) {
	key := userKey(userID)
	if u, ok := d[key]; ok {
		return u, false
	}
	u := newUserRecord()
	d[key] = u
	return u, true
}

// normalize fills fields missing in documents written by older versions
func (u *userRecord) normalize() {
	if u.Language == "" {
		u.Language = string(domain.DefaultLanguage)
	}
	if u.Timezone == "" {
		u.Timezone = domain.DefaultTimezone
	}
	if u.Reminders == nil {
		u.Reminders = []reminderRecord{}
	}
	for _, r := range u.Reminders {
		if r.ID > u.LastReminderID {
			u.LastReminderID = r.ID
		}
	}
}

func (u *userRecord) toProfile(userID int64) *domain.UserProfile {
	p := &domain.UserProfile{
		UserID:    userID,
		Language:  domain.Language(u.Language),
		Timezone:  u.Timezone,
		Reminders: make([]domain.Reminder, 0, len(u.Reminders)),
	}
	for _, r := range u.Reminders {
		p.Reminders = append(p.Reminders, r.toDomain())
	}
	return p
}

func (r reminderRecord) toDomain() domain.Reminder {
	created, _ := time.ParseInLocation(domain.CreatedLayout, r.CreatedAt, time.Local)
	return domain.Reminder{
		ID:        r.ID,
		Text:      r.Text,
		Date:      r.Date,
		Time:      r.Time,
		CreatedAt: created,
		IsSent:    r.IsSent,
	}
}
