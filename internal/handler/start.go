package handler

import (
	"context"
	"errors"

	"reminderbot/internal/domain"
	"reminderbot/internal/locale"
	"reminderbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleStart handles /start command: resets any dialog and shows the language picker
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User started bot",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	h.dialogService.Cancel(userID)
	return c.Send(locale.Text(h.lang(c), "welcome_picker"), languageMarkup(btnOnboardLanguage.Unique))
}

// handleHelp handles /help command
func (h *Handler) handleHelp(c tele.Context) error {
	lang := h.lang(c)
	return c.Send(helpText(lang), mainMenuMarkup(lang))
}

// handleLanguage handles /language command
func (h *Handler) handleLanguage(c tele.Context) error {
	return c.Send(locale.Text(h.lang(c), "select_language"), languageMarkup(btnLanguage.Unique))
}

// handleTimezone handles /timezone command: shows the current zone and the picker
func (h *Handler) handleTimezone(c tele.Context) error {
	userID := c.Sender().ID
	lang := h.lang(c)

	profile, err := h.profileService.Profile(context.Background(), userID)
	if err != nil {
		h.logger.Error("Failed to load profile", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send(locale.Text(lang, "error_generic"))
	}

	if err := c.Send(locale.Format(lang, "current_timezone", locale.Args{"timezone": zoneLabel(profile.Timezone)})); err != nil {
		return err
	}
	return c.Send(locale.Text(lang, "select_timezone"), timezoneMarkup(btnTimezone.Unique))
}

// handleOnboardLanguage stores the language chosen after /start and asks for the timezone
func (h *Handler) handleOnboardLanguage(c tele.Context) error {
	lang, ok := h.applyLanguage(c)
	if !ok {
		return nil
	}

	text := locale.Text(lang, "language_changed") + "\n\n" + locale.Text(lang, "select_timezone")
	return h.editOrSend(c, text, timezoneMarkup(btnOnboardTimezone.Unique))
}

// handleLanguageSelected stores the language chosen via /language
func (h *Handler) handleLanguageSelected(c tele.Context) error {
	lang, ok := h.applyLanguage(c)
	if !ok {
		return nil
	}

	if err := h.editOrSend(c, locale.Text(lang, "language_changed"), nil); err != nil {
		return err
	}
	return c.Send(locale.Text(lang, "menu_opened"), mainMenuMarkup(lang))
}

// handleOnboardTimezone finishes onboarding
func (h *Handler) handleOnboardTimezone(c tele.Context) error {
	lang, ok := h.applyTimezone(c)
	if !ok {
		return nil
	}
	return c.Send(startText(lang), mainMenuMarkup(lang))
}

// handleTimezoneSelected stores the timezone chosen via /timezone
func (h *Handler) handleTimezoneSelected(c tele.Context) error {
	lang, ok := h.applyTimezone(c)
	if !ok {
		return nil
	}
	return c.Send(locale.Text(lang, "menu_opened"), mainMenuMarkup(lang))
}

// applyLanguage stores the language from callback data and refreshes the chat's command menu
func (h *Handler) applyLanguage(c tele.Context) (domain.Language, bool) {
	userID := c.Sender().ID
	code := cleanCallbackData(c.Data())

	lang, err := h.profileService.SetLanguage(context.Background(), userID, code)
	if err != nil {
		current := h.lang(c)
		if errors.Is(err, service.ErrUnsupportedLanguage) {
			h.logger.Warn("Unsupported language in callback", zap.Int64("user_id", userID), zap.String("data", code))
		} else {
			h.logger.Error("Failed to set language", zap.Int64("user_id", userID), zap.Error(err))
		}
		_ = c.Respond(&tele.CallbackResponse{Text: locale.Text(current, "error_generic")})
		return "", false
	}

	if err := h.setCommands(lang, c.Chat()); err != nil {
		h.logger.Warn("Failed to update command menu", zap.Int64("user_id", userID), zap.Error(err))
	}
	return lang, true
}

// applyTimezone stores the timezone from callback data and confirms it in place
func (h *Handler) applyTimezone(c tele.Context) (domain.Language, bool) {
	userID := c.Sender().ID
	lang := h.lang(c)
	tzID := cleanCallbackData(c.Data())

	zone, err := h.profileService.SetTimezone(context.Background(), userID, tzID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownTimezone) {
			h.logger.Warn("Unknown timezone in callback", zap.Int64("user_id", userID), zap.String("timezone", tzID))
		} else {
			h.logger.Error("Failed to set timezone", zap.Int64("user_id", userID), zap.Error(err))
		}
		_ = c.Respond(&tele.CallbackResponse{Text: locale.Text(lang, "error_generic")})
		return lang, false
	}

	text := locale.Format(lang, "timezone_changed", locale.Args{"timezone": zone.Label})
	if err := h.editOrSend(c, text, nil); err != nil {
		h.logger.Warn("Failed to confirm timezone", zap.Int64("user_id", userID), zap.Error(err))
	}
	return lang, true
}
