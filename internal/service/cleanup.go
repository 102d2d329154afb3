package service

import (
	"context"
	"time"

	"reminderbot/internal/repository"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// SessionSweeper drops expired dialog sessions
type SessionSweeper interface {
	Sweep() int
	Len() int
}

// CleanupService removes old sent reminders and stale dialog sessions
type CleanupService struct {
	reminderRepo repository.ReminderRepository
	sessions     SessionSweeper
	retention    time.Duration
	clock        clockwork.Clock
	logger       *zap.Logger
}

// NewCleanupService creates a new cleanup service. sessions may be nil.
func NewCleanupService(
	reminderRepo repository.ReminderRepository,
	sessions SessionSweeper,
	retention time.Duration,
	clock clockwork.Clock,
	logger *zap.Logger,
) *CleanupService {
	return &CleanupService{
		reminderRepo: reminderRepo,
		sessions:     sessions,
		retention:    retention,
		clock:        clock,
		logger:       logger,
	}
}

// CleanupOldData purges sent reminders whose trigger time is older than the retention
func (s *CleanupService) CleanupOldData(ctx context.Context) error {
	cutoff := s.clock.Now().UTC().Add(-s.retention)

	s.logger.Info("Starting cleanup of sent reminders",
		zap.Duration("retention", s.retention),
		zap.Time("cutoff", cutoff),
	)

	purged, err := s.reminderRepo.PurgeSent(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to purge sent reminders", zap.Error(err))
		return err
	}

	swept, active := 0, 0
	if s.sessions != nil {
		swept = s.sessions.Sweep()
		active = s.sessions.Len()
	}

	s.logger.Info("Cleanup completed successfully",
		zap.Int("purged_reminders", purged),
		zap.Int("expired_sessions", swept),
		zap.Int("active_sessions", active),
	)
	return nil
}
