// Package scheduler delivers due reminders on a fixed period.
package scheduler

import (
	"context"
	"fmt"
	"html"
	"time"

	"reminderbot/internal/domain"
	"reminderbot/internal/locale"
	"reminderbot/internal/repository"
	"reminderbot/internal/timezone"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Notifier delivers a rendered notification to a user
type Notifier interface {
	Send(ctx context.Context, userID int64, text string) error
}

// Cleaner runs periodic housekeeping
type Cleaner interface {
	CleanupOldData(ctx context.Context) error
}

// Config controls tick timing
type Config struct {
	Interval        time.Duration
	CatchUp         bool
	CleanupInterval time.Duration
}

// TickReport summarizes one tick
type TickReport struct {
	Pending   int
	Due       int
	Delivered int
	Failed    int
}

// Scheduler scans pending reminders once per interval and notifies their owners.
// Ticks never overlap: a tick that runs long delays the next one.
type Scheduler struct {
	cfg       Config
	reminders repository.ReminderRepository
	users     repository.UserRepository
	notifier  Notifier
	cleaner   Cleaner
	converter *timezone.Converter
	clock     clockwork.Clock
	logger    *zap.Logger

	cron   gocron.Scheduler
	cancel context.CancelFunc
}

// New creates a scheduler. cleaner may be nil.
func New(
	cfg Config,
	reminders repository.ReminderRepository,
	users repository.UserRepository,
	notifier Notifier,
	cleaner Cleaner,
	converter *timezone.Converter,
	clock clockwork.Clock,
	logger *zap.Logger,
) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 24 * time.Hour
	}
	return &Scheduler{
		cfg:       cfg,
		reminders: reminders,
		users:     users,
		notifier:  notifier,
		cleaner:   cleaner,
		converter: converter,
		clock:     clock,
		logger:    logger,
	}
}

// Start registers the jobs and starts running them in the background.
// The first tick runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	cron, err := gocron.NewScheduler(gocron.WithClock(s.clock))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)

	_, err = cron.NewJob(
		gocron.DurationJob(s.cfg.Interval),
		gocron.NewTask(func() {
			s.Tick(ctx)
		}),
		gocron.WithName("deliver-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		cancel()
		_ = cron.Shutdown()
		return fmt.Errorf("failed to register delivery job: %w", err)
	}

	if s.cleaner != nil {
		_, err = cron.NewJob(
			gocron.DurationJob(s.cfg.CleanupInterval),
			gocron.NewTask(func() {
				if err := s.cleaner.CleanupOldData(ctx); err != nil {
					s.logger.Error("Failed to run scheduled cleanup", zap.Error(err))
				}
			}),
			gocron.WithName("cleanup"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			cancel()
			_ = cron.Shutdown()
			return fmt.Errorf("failed to register cleanup job: %w", err)
		}
	}

	s.cron = cron
	s.cancel = cancel
	cron.Start()

	s.logger.Info("Scheduler started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Bool("catch_up", s.cfg.CatchUp),
	)
	return nil
}

// Stop cancels the running tick between items and waits for jobs to finish
func (s *Scheduler) Stop() error {
	if s.cron == nil {
		return nil
	}
	s.cancel()
	err := s.cron.Shutdown()
	s.cron = nil

	s.logger.Info("Scheduler stopped")
	return err
}

// Tick delivers every pending reminder whose trigger minute is due.
// Failures are logged per item and never abort the batch.
func (s *Scheduler) Tick(ctx context.Context) TickReport {
	var report TickReport

	pending, err := s.reminders.AllPendingReminders(ctx)
	if err != nil {
		s.logger.Error("Failed to load pending reminders", zap.Error(err))
		return report
	}
	report.Pending = len(pending)

	now := s.clock.Now().UTC().Truncate(time.Minute)

	for _, p := range pending {
		if ctx.Err() != nil {
			s.logger.Info("Tick interrupted", zap.Int("delivered", report.Delivered))
			break
		}

		trigger, err := p.Reminder.TriggerAt()
		if err != nil {
			s.logger.Error("Skipping reminder with malformed datetime",
				zap.Int64("user_id", p.UserID),
				zap.Int("reminder_id", p.Reminder.ID),
				zap.Error(err),
			)
			report.Failed++
			continue
		}
		if !s.isDue(trigger, now) {
			continue
		}
		report.Due++

		if err := s.deliver(ctx, p); err != nil {
			s.logger.Error("Failed to deliver reminder",
				zap.Int64("user_id", p.UserID),
				zap.Int("reminder_id", p.Reminder.ID),
				zap.Error(err),
			)
			report.Failed++
			continue
		}
		report.Delivered++
	}

	if report.Due > 0 {
		s.logger.Info("Tick completed",
			zap.Int("pending", report.Pending),
			zap.Int("due", report.Due),
			zap.Int("delivered", report.Delivered),
			zap.Int("failed", report.Failed),
		)
	}
	return report
}

func (s *Scheduler) isDue(trigger, now time.Time) bool {
	if s.cfg.CatchUp {
		return !trigger.After(now)
	}
	return trigger.Equal(now)
}

func (s *Scheduler) deliver(ctx context.Context, p domain.PendingReminder) error {
	lang, tz := domain.DefaultLanguage, domain.DefaultTimezone
	profile, err := s.users.GetProfile(ctx, p.UserID)
	if err != nil {
		s.logger.Warn("Profile unavailable, notifying with defaults",
			zap.Int64("user_id", p.UserID),
			zap.Error(err),
		)
	} else {
		lang, tz = profile.Language, profile.Timezone
	}

	date, clock := s.converter.FormatLocal(p.Reminder.Date, p.Reminder.Time, tz)
	text := locale.Format(lang, "reminder_notification", locale.Args{
		"text": html.EscapeString(p.Reminder.Text),
		"date": date,
		"time": clock,
	})

	if err := s.notifier.Send(ctx, p.UserID, text); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	found, err := s.reminders.MarkSent(ctx, p.UserID, p.Reminder.ID)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	if !found {
		s.logger.Warn("Delivered reminder disappeared before marking",
			zap.Int64("user_id", p.UserID),
			zap.Int("reminder_id", p.Reminder.ID),
		)
	}
	return nil
}
