package handler

import (
	"reminderbot/internal/domain"
	"reminderbot/internal/locale"

	tele "gopkg.in/telebot.v3"
)

var commandKeys = []struct {
	command string
	key     string
}{
	{"start", "cmd_start"},
	{"set_reminder", "cmd_set_reminder"},
	{"list_reminders", "cmd_list_reminders"},
	{"language", "cmd_language"},
	{"timezone", "cmd_timezone"},
	{"cancel", "cmd_cancel"},
	{"help", "cmd_help"},
}

// commandList returns the command menu in lang
func commandList(lang domain.Language) []tele.Command {
	cmds := make([]tele.Command, 0, len(commandKeys))
	for _, ck := range commandKeys {
		cmds = append(cmds, tele.Command{Text: ck.command, Description: locale.Text(lang, ck.key)})
	}
	return cmds
}

// setCommands registers the command menu for a chat, or the default scope when chat is nil
func (h *Handler) setCommands(lang domain.Language, chat *tele.Chat) error {
	cmds := commandList(lang)
	if chat == nil {
		return h.bot.SetCommands(cmds)
	}
	return h.bot.SetCommands(cmds, tele.CommandScope{Type: tele.CommandScopeChat, ChatID: chat.ID})
}
