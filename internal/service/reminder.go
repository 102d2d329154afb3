package service

import (
	"context"
	"sort"

	"reminderbot/internal/domain"
	"reminderbot/internal/repository"

	"go.uber.org/zap"
)

// ReminderService handles listing and the delete-confirm-cancel flow
type ReminderService struct {
	reminderRepo repository.ReminderRepository
	logger       *zap.Logger
}

// NewReminderService creates a new reminder service
func NewReminderService(reminderRepo repository.ReminderRepository, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		logger:       logger,
	}
}

// ListActive returns unsent reminders ordered by trigger time
func (s *ReminderService) ListActive(ctx context.Context, userID int64) ([]domain.Reminder, error) {
	reminders, err := s.reminderRepo.ListReminders(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].DateTime() < reminders[j].DateTime()
	})
	return reminders, nil
}

// RequestDelete returns the active reminder to confirm deletion of
func (s *ReminderService) RequestDelete(ctx context.Context, userID int64, id int) (*domain.Reminder, error) {
	r, err := s.findActive(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, repository.ErrReminderNotFound
	}
	return r, nil
}

// ConfirmDelete removes the reminder. A second call for the same id reports not found.
func (s *ReminderService) ConfirmDelete(ctx context.Context, userID int64, id int) error {
	removed, err := s.reminderRepo.DeleteReminder(ctx, userID, id)
	if err != nil {
		return err
	}
	if !removed {
		return repository.ErrReminderNotFound
	}

	s.logger.Info("Reminder deleted",
		zap.Int64("user_id", userID),
		zap.Int("reminder_id", id),
	)
	return nil
}

// CancelDelete returns the reminder so it can be displayed again,
// or nil when it no longer exists.
func (s *ReminderService) CancelDelete(ctx context.Context, userID int64, id int) (*domain.Reminder, error) {
	return s.findActive(ctx, userID, id)
}

func (s *ReminderService) findActive(ctx context.Context, userID int64, id int) (*domain.Reminder, error) {
	reminders, err := s.reminderRepo.ListReminders(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	for i := range reminders {
		if reminders[i].ID == id {
			return &reminders[i], nil
		}
	}
	return nil, nil
}
