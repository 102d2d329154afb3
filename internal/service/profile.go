package service

import (
	"context"
	"fmt"

	"reminderbot/internal/domain"
	"reminderbot/internal/repository"
	"reminderbot/internal/timezone"

	"go.uber.org/zap"
)

// ProfileService handles user language and timezone preferences
type ProfileService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(userRepo repository.UserRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Profile returns the user's profile, creating it with defaults if needed
func (s *ProfileService) Profile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	return s.userRepo.GetProfile(ctx, userID)
}

// Language returns the user's language. Storage failures fall back to the default.
func (s *ProfileService) Language(ctx context.Context, userID int64) domain.Language {
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load profile, using default language",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return domain.DefaultLanguage
	}
	if _, ok := domain.ParseLanguage(string(profile.Language)); !ok {
		return domain.DefaultLanguage
	}
	return profile.Language
}

// SetLanguage validates and stores the user's language
func (s *ProfileService) SetLanguage(ctx context.Context, userID int64, code string) (domain.Language, error) {
	lang, ok := domain.ParseLanguage(code)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	if err := s.userRepo.SetLanguage(ctx, userID, lang); err != nil {
		return "", err
	}

	s.logger.Info("Language changed",
		zap.Int64("user_id", userID),
		zap.String("language", string(lang)),
	)
	return lang, nil
}

// SetTimezone validates tzID against the catalog and stores it
func (s *ProfileService) SetTimezone(ctx context.Context, userID int64, tzID string) (timezone.Zone, error) {
	zone, ok := timezone.Lookup(tzID)
	if !ok {
		return timezone.Zone{}, fmt.Errorf("%w: %q", ErrUnknownTimezone, tzID)
	}
	if err := s.userRepo.SetTimezone(ctx, userID, zone.ID); err != nil {
		return timezone.Zone{}, err
	}

	s.logger.Info("Timezone changed",
		zap.Int64("user_id", userID),
		zap.String("timezone", zone.ID),
	)
	return zone, nil
}
