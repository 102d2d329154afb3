package handler

import (
	"context"
	"html"
	"strings"

	"reminderbot/internal/domain"
	"reminderbot/internal/locale"
	"reminderbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// dialogPrompts maps re-prompting dialog results to locale keys
var dialogPrompts = map[service.DialogResult]string{
	service.ResultAskText:     "reminder_text_prompt",
	service.ResultEmptyText:   "reminder_text_prompt",
	service.ResultAskDate:     "reminder_date_prompt",
	service.ResultInvalidDate: "invalid_date_format",
	service.ResultDateInPast:  "date_in_past",
	service.ResultAskTime:     "reminder_time_prompt",
	service.ResultInvalidTime: "invalid_time_format",
	service.ResultTimeInPast:  "time_in_past",
}

// dialogReply renders the message for a dialog step. The second value is false
// when nothing should be sent.
func dialogReply(lang domain.Language, out service.DialogOutcome) (string, bool) {
	if out.Result == service.ResultCreated {
		text := ""
		if out.Reminder != nil {
			text = out.Reminder.Text
		}
		return locale.Format(lang, "reminder_created", locale.Args{
			"text": html.EscapeString(text),
			"date": out.LocalDate,
			"time": out.LocalTime,
		}), true
	}

	key, ok := dialogPrompts[out.Result]
	if !ok {
		return "", false
	}
	return locale.Text(lang, key), true
}

// handleSetReminder starts the creation dialog
func (h *Handler) handleSetReminder(c tele.Context) error {
	lang := h.lang(c)
	out := h.dialogService.Start(c.Sender().ID)

	text, _ := dialogReply(lang, out)
	return c.Send(text, cancelMarkup(lang))
}

// handleCancel aborts the creation dialog
func (h *Handler) handleCancel(c tele.Context) error {
	userID := c.Sender().ID
	lang := h.lang(c)

	if h.dialogService.Cancel(userID) {
		h.logger.Info("Reminder creation cancelled", zap.Int64("user_id", userID))
	}
	return c.Send(locale.Text(lang, "reminder_cancelled"), mainMenuMarkup(lang))
}

// handleListReminders sends one message per active reminder
func (h *Handler) handleListReminders(c tele.Context) error {
	userID := c.Sender().ID
	lang := h.lang(c)
	ctx := context.Background()

	reminders, err := h.reminderService.ListActive(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to list reminders", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send(locale.Text(lang, "error_generic"))
	}

	if len(reminders) == 0 {
		return c.Send(locale.Text(lang, "no_reminders"), mainMenuMarkup(lang))
	}

	if err := c.Send(locale.Text(lang, "your_reminders")); err != nil {
		return err
	}

	tz := h.timezoneOf(ctx, userID)
	for _, r := range reminders {
		text, markup := reminderItem(lang, r, tz, h.converter)
		if err := c.Send(text, markup); err != nil {
			h.logger.Warn("Failed to send reminder item",
				zap.Int64("user_id", userID),
				zap.Int("reminder_id", r.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// handleText handles menu buttons and dialog input.
// During a dialog only the cancel button is routed; other text is dialog input.
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	if h.dialogService.Active(userID) {
		if _, ok := locale.Match(text, "btn_cancel"); ok {
			return h.handleCancel(c)
		}
		// Unknown commands are not reminder text
		if strings.HasPrefix(text, "/") {
			reply, ok := dialogReply(h.lang(c), h.dialogService.Resume(userID))
			if !ok {
				return nil
			}
			return c.Send(reply)
		}
		return h.handleDialog(c, userID, c.Text())
	}

	// Ignore unknown commands
	if strings.HasPrefix(text, "/") {
		return nil
	}

	// Menu buttons work in every language
	key, ok := locale.Match(text,
		"btn_create_reminder", "btn_my_reminders", "btn_change_language", "btn_help", "btn_cancel",
	)
	if !ok {
		return nil
	}

	switch key {
	case "btn_create_reminder":
		return h.handleSetReminder(c)
	case "btn_my_reminders":
		return h.handleListReminders(c)
	case "btn_change_language":
		return h.handleLanguage(c)
	case "btn_help":
		return h.handleHelp(c)
	default:
		return h.handleCancel(c)
	}
}

// handleDialog feeds text into the creation dialog
func (h *Handler) handleDialog(c tele.Context, userID int64, input string) error {
	lang := h.lang(c)

	out, err := h.dialogService.Handle(context.Background(), userID, input)
	if err != nil {
		h.logger.Error("Failed to process dialog step", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send(locale.Text(lang, "error_generic"))
	}

	reply, ok := dialogReply(lang, out)
	if !ok {
		return nil
	}
	if out.Result == service.ResultCreated {
		return c.Send(reply, mainMenuMarkup(lang))
	}
	return c.Send(reply)
}

// timezoneOf returns the user's timezone, or the default when unavailable
func (h *Handler) timezoneOf(ctx context.Context, userID int64) string {
	profile, err := h.profileService.Profile(ctx, userID)
	if err != nil {
		h.logger.Warn("Profile unavailable, using default timezone", zap.Int64("user_id", userID), zap.Error(err))
		return domain.DefaultTimezone
	}
	return profile.Timezone
}
