package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"reminderbot/internal/locale"
	"reminderbot/internal/repository"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// parseReminderID extracts a positive reminder id from callback data
func parseReminderID(data string) (int, error) {
	id, err := cast.ToIntE(cleanCallbackData(data))
	if err != nil {
		return 0, fmt.Errorf("invalid reminder id %q: %w", data, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid reminder id %q", data)
	}
	return id, nil
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// Already edited by another callback: acknowledge only
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		_ = c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// editOrSend edits the callback's message in place, or sends a new message for commands
func (h *Handler) editOrSend(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	var opts []interface{}
	if markup != nil {
		opts = append(opts, markup)
	}

	if c.Callback() != nil {
		if err := c.Edit(text, opts...); err != nil {
			if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
				return nil
			}
			return c.Send(text, opts...)
		}
		return c.Respond()
	}
	return c.Send(text, opts...)
}

// handleCallback acknowledges callbacks no specific handler matched
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	h.logger.Warn("Unhandled callback",
		zap.String("data", cleanCallbackData(callback.Data)),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)
	return c.Respond()
}

// handleDeleteRequest asks for confirmation before deleting a reminder
func (h *Handler) handleDeleteRequest(c tele.Context) error {
	userID := c.Sender().ID
	lang := h.lang(c)

	id, err := parseReminderID(c.Data())
	if err != nil {
		h.logger.Warn("Bad delete callback", zap.Int64("user_id", userID), zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: locale.Text(lang, "reminder_not_found")})
	}

	ctx := context.Background()
	reminder, err := h.reminderService.RequestDelete(ctx, userID, id)
	if errors.Is(err, repository.ErrReminderNotFound) {
		return c.Respond(&tele.CallbackResponse{Text: locale.Text(lang, "reminder_not_found"), ShowAlert: true})
	}
	if err != nil {
		h.logger.Error("Failed to load reminder", zap.Int64("user_id", userID), zap.Int("reminder_id", id), zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: locale.Text(lang, "error_generic")})
	}

	text, markup := confirmDelete(lang, *reminder, h.timezoneOf(ctx, userID), h.converter)
	return h.editOrSend(c, text, markup)
}

// handleDeleteConfirm deletes the reminder
func (h *Handler) handleDeleteConfirm(c tele.Context) error {
	userID := c.Sender().ID
	lang := h.lang(c)

	id, err := parseReminderID(c.Data())
	if err != nil {
		h.logger.Warn("Bad delete callback", zap.Int64("user_id", userID), zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: locale.Text(lang, "reminder_not_found")})
	}

	err = h.reminderService.ConfirmDelete(context.Background(), userID, id)
	switch {
	case errors.Is(err, repository.ErrReminderNotFound):
		return h.editOrSend(c, locale.Text(lang, "reminder_not_found"), nil)
	case err != nil:
		h.logger.Error("Failed to delete reminder", zap.Int64("user_id", userID), zap.Int("reminder_id", id), zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: locale.Text(lang, "error_generic")})
	}
	return h.editOrSend(c, locale.Text(lang, "reminder_deleted"), nil)
}

// handleDeleteCancel restores the reminder's list entry
func (h *Handler) handleDeleteCancel(c tele.Context) error {
	userID := c.Sender().ID
	lang := h.lang(c)
	ack := &tele.CallbackResponse{Text: locale.Text(lang, "deletion_cancelled")}

	id, err := parseReminderID(c.Data())
	if err != nil {
		h.logger.Warn("Bad delete callback", zap.Int64("user_id", userID), zap.Error(err))
		return c.Respond(ack)
	}

	ctx := context.Background()
	reminder, err := h.reminderService.CancelDelete(ctx, userID, id)
	if err != nil {
		h.logger.Error("Failed to load reminder", zap.Int64("user_id", userID), zap.Int("reminder_id", id), zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: locale.Text(lang, "error_generic")})
	}
	if reminder == nil {
		// Deleted meanwhile, nothing to restore
		return c.Respond(ack)
	}

	text, markup := reminderItem(lang, *reminder, h.timezoneOf(ctx, userID), h.converter)
	if err := c.Edit(text, markup); err != nil {
		if handleErr := h.handleEditError(err, c, userID); handleErr == nil {
			return nil
		}
		return c.Send(text, markup)
	}
	return c.Respond(ack)
}
