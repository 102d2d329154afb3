package middleware

import (
	"context"

	"reminderbot/internal/domain"
	"reminderbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// LanguageKey is the context key holding the sender's domain.Language
const LanguageKey = "lang"

// ProfileMiddleware ensures the sender has a profile and stores their language in the context
func ProfileMiddleware(profiles *service.ProfileService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				logger.Debug("Skipping update without sender")
				return nil
			}

			c.Set(LanguageKey, profiles.Language(context.Background(), sender.ID))
			return next(c)
		}
	}
}

// Language returns the language stored by ProfileMiddleware, or the default
func Language(c tele.Context) domain.Language {
	if lang, ok := c.Get(LanguageKey).(domain.Language); ok {
		return lang
	}
	return domain.DefaultLanguage
}
