package handler

import (
	"html"
	"strconv"

	"reminderbot/internal/domain"
	"reminderbot/internal/locale"
	"reminderbot/internal/timezone"

	tele "gopkg.in/telebot.v3"
)

var languageLabels = map[domain.Language]string{
	domain.LangEN: "🇬🇧 English",
	domain.LangRU: "🇷🇺 Русский",
	domain.LangUA: "🇺🇦 Українська",
}

// languageMarkup lists supported languages as buttons bound to unique
func languageMarkup(unique string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(domain.Languages))
	for _, l := range domain.Languages {
		rows = append(rows, markup.Row(markup.Data(languageLabels[l], unique, string(l))))
	}
	markup.Inline(rows...)
	return markup
}

// timezoneMarkup lists the catalog two per row
func timezoneMarkup(unique string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	zones := timezone.List()
	rows := make([]tele.Row, 0, (len(zones)+1)/2)
	for i := 0; i < len(zones); i += 2 {
		row := tele.Row{markup.Data(zones[i].Label, unique, zones[i].ID)}
		if i+1 < len(zones) {
			row = append(row, markup.Data(zones[i+1].Label, unique, zones[i+1].ID))
		}
		rows = append(rows, row)
	}
	markup.Inline(rows...)
	return markup
}

// mainMenuMarkup returns the main menu reply keyboard
func mainMenuMarkup(lang domain.Language) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(
		menu.Row(
			menu.Text(locale.Text(lang, "btn_create_reminder")),
			menu.Text(locale.Text(lang, "btn_my_reminders")),
		),
		menu.Row(
			menu.Text(locale.Text(lang, "btn_change_language")),
			menu.Text(locale.Text(lang, "btn_help")),
		),
	)
	return menu
}

// cancelMarkup returns the reply keyboard shown during the creation dialog
func cancelMarkup(lang domain.Language) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(menu.Row(menu.Text(locale.Text(lang, "btn_cancel"))))
	return menu
}

// reminderItem renders one reminder in the user's local time with a delete button
func reminderItem(lang domain.Language, r domain.Reminder, tz string, conv *timezone.Converter) (string, *tele.ReplyMarkup) {
	date, clock := conv.FormatLocal(r.Date, r.Time, tz)
	text := locale.Format(lang, "reminder_item", locale.Args{
		"id":   strconv.Itoa(r.ID),
		"text": html.EscapeString(r.Text),
		"date": date,
		"time": clock,
	})

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data(locale.Text(lang, "btn_delete"), btnDelete.Unique, strconv.Itoa(r.ID))))
	return text, markup
}

// confirmDelete renders the deletion prompt for a reminder
func confirmDelete(lang domain.Language, r domain.Reminder, tz string, conv *timezone.Converter) (string, *tele.ReplyMarkup) {
	date, clock := conv.FormatLocal(r.Date, r.Time, tz)
	text := locale.Format(lang, "confirm_delete", locale.Args{
		"text": html.EscapeString(r.Text),
		"date": date,
		"time": clock,
	})

	id := strconv.Itoa(r.ID)
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data(locale.Text(lang, "btn_confirm_delete"), btnDeleteConfirm.Unique, id),
		markup.Data(locale.Text(lang, "btn_cancel_delete"), btnDeleteCancel.Unique, id),
	))
	return text, markup
}

// startText is the welcome message shown after onboarding
func startText(lang domain.Language) string {
	return locale.Text(lang, "start_title") + "\n\n" +
		locale.Text(lang, "start_info") +
		locale.Text(lang, "timezone_info")
}

// helpText renders the command overview
func helpText(lang domain.Language) string {
	return locale.Text(lang, "help_title") + "\n\n" + locale.Text(lang, "help_text")
}

// zoneLabel returns the catalog label for id, or id itself
func zoneLabel(id string) string {
	if z, ok := timezone.Lookup(id); ok {
		return z.Label
	}
	return id
}
