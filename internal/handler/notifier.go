package handler

import (
	"context"

	tele "gopkg.in/telebot.v3"
)

// Notifier delivers scheduler notifications through the bot
type Notifier struct {
	bot *tele.Bot
}

// NewNotifier creates a new notifier
func NewNotifier(bot *tele.Bot) *Notifier {
	return &Notifier{bot: bot}
}

// Send sends an HTML message to the user's private chat
func (n *Notifier) Send(ctx context.Context, userID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := n.bot.Send(tele.ChatID(userID), text, tele.ModeHTML)
	return err
}
