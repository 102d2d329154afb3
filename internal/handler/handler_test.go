package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"reminderbot/internal/domain"
	"reminderbot/internal/locale"
	"reminderbot/internal/repository/memory"
	"reminderbot/internal/repository/sqlite"
	"reminderbot/internal/service"
	"reminderbot/internal/testutil"
	"reminderbot/internal/timezone"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

type apiCall struct {
	Method string
	Params map[string]any
}

// botAPI records Bot API requests and answers them with success
type botAPI struct {
	mu    sync.Mutex
	calls []apiCall
}

func (a *botAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params := make(map[string]any)
	_ = json.NewDecoder(r.Body).Decode(&params)

	method := path.Base(r.URL.Path)
	a.mu.Lock()
	a.calls = append(a.calls, apiCall{Method: method, Params: params})
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "sendMessage", "editMessageText":
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`)
	default:
		_, _ = io.WriteString(w, `{"ok":true,"result":true}`)
	}
}

// texts returns the "text" parameter of every call to method, in order
func (a *botAPI) texts(method string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := []string{}
	for _, call := range a.calls {
		if call.Method != method {
			continue
		}
		text, _ := call.Params["text"].(string)
		out = append(out, text)
	}
	return out
}

func (a *botAPI) reset() {
	a.mu.Lock()
	a.calls = nil
	a.mu.Unlock()
}

type handlerFixture struct {
	handler *Handler
	bot     *tele.Bot
	api     *botAPI
	store   *sqlite.Store
	conv    *timezone.Converter
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	api := &botAPI{}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	bot, err := tele.NewBot(tele.Settings{URL: server.URL, Token: "test", Offline: true})
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC))
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "reminders.db"), clock)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := testutil.NewTestLogger()
	conv := timezone.NewConverter(logger)
	sessions := memory.NewSessionStore(clock, 30*time.Minute)

	h := NewHandler(bot,
		service.NewProfileService(store, logger),
		service.NewReminderService(store, logger),
		service.NewDialogService(sessions, store, store, conv, clock, logger),
		conv,
		logger,
	)

	return &handlerFixture{handler: h, bot: bot, api: api, store: store, conv: conv}
}

func (f *handlerFixture) message(userID int64, text string) tele.Context {
	return f.bot.NewContext(tele.Update{Message: &tele.Message{
		ID:     1,
		Sender: &tele.User{ID: userID},
		Chat:   &tele.Chat{ID: userID},
		Text:   text,
	}})
}

func (f *handlerFixture) callback(userID int64, data string) tele.Context {
	return f.bot.NewContext(tele.Update{Callback: &tele.Callback{
		ID:      "cb",
		Sender:  &tele.User{ID: userID},
		Data:    data,
		Message: &tele.Message{ID: 10, Chat: &tele.Chat{ID: userID}},
	}})
}

func en(key string) string {
	return locale.Text(domain.LangEN, key)
}

func TestHandleListReminders(t *testing.T) {
	t.Run("no active reminders", func(t *testing.T) {
		f := newHandlerFixture(t)

		require.NoError(t, f.handler.handleListReminders(f.message(5, "/list_reminders")))

		assert.Equal(t, []string{en("no_reminders")}, f.api.texts("sendMessage"))
	})

	t.Run("one message per active reminder in local time", func(t *testing.T) {
		f := newHandlerFixture(t)
		ctx := context.Background()

		require.NoError(t, f.store.SetTimezone(ctx, 5, "Europe/Kiev"))
		_, err := f.store.AddReminder(ctx, 5, "Buy milk", "2025-10-29", "08:00")
		require.NoError(t, err)
		_, err = f.store.AddReminder(ctx, 5, "Call <Bob>", "2025-10-28", "13:30")
		require.NoError(t, err)
		sent, err := f.store.AddReminder(ctx, 5, "Old", "2025-10-27", "08:00")
		require.NoError(t, err)
		_, err = f.store.MarkSent(ctx, 5, sent.ID)
		require.NoError(t, err)

		require.NoError(t, f.handler.handleListReminders(f.message(5, "/list_reminders")))

		texts := f.api.texts("sendMessage")
		require.Len(t, texts, 3)
		assert.Equal(t, en("your_reminders"), texts[0])
		assert.Contains(t, texts[1], "Call &lt;Bob&gt;")
		assert.Contains(t, texts[1], "15:30")
		assert.Contains(t, texts[2], "Buy milk")
		assert.Contains(t, texts[2], "10:00")
	})
}

func TestDeleteFlow(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()

	reminder, err := f.store.AddReminder(ctx, 5, "Call the doctor", "2025-10-28", "13:30")
	require.NoError(t, err)
	confirmText, _ := confirmDelete(domain.LangEN, *reminder, domain.DefaultTimezone, f.conv)

	require.NoError(t, f.handler.handleDeleteRequest(f.callback(5, "1")))
	require.NoError(t, f.handler.handleDeleteConfirm(f.callback(5, "1")))
	require.NoError(t, f.handler.handleDeleteConfirm(f.callback(5, "1")))

	assert.Equal(t, []string{
		confirmText,
		en("reminder_deleted"),
		en("reminder_not_found"),
	}, f.api.texts("editMessageText"))
	assert.Empty(t, f.api.texts("sendMessage"))

	remaining, err := f.store.ListReminders(ctx, 5, false)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestHandleDeleteRequest_UnknownReminder(t *testing.T) {
	f := newHandlerFixture(t)

	require.NoError(t, f.handler.handleDeleteRequest(f.callback(5, "9")))

	assert.Empty(t, f.api.texts("editMessageText"))
	assert.Equal(t, []string{en("reminder_not_found")}, f.api.texts("answerCallbackQuery"))
}

func TestHandleDeleteCancel(t *testing.T) {
	t.Run("restores the list entry", func(t *testing.T) {
		f := newHandlerFixture(t)

		reminder, err := f.store.AddReminder(context.Background(), 5, "Buy milk", "2025-10-29", "08:00")
		require.NoError(t, err)
		itemText, _ := reminderItem(domain.LangEN, *reminder, domain.DefaultTimezone, f.conv)

		require.NoError(t, f.handler.handleDeleteCancel(f.callback(5, "1")))

		assert.Equal(t, []string{itemText}, f.api.texts("editMessageText"))
		assert.Equal(t, []string{en("deletion_cancelled")}, f.api.texts("answerCallbackQuery"))
	})

	t.Run("reminder already deleted", func(t *testing.T) {
		f := newHandlerFixture(t)

		require.NoError(t, f.handler.handleDeleteCancel(f.callback(5, "1")))

		assert.Empty(t, f.api.texts("editMessageText"))
		assert.Empty(t, f.api.texts("sendMessage"))
		assert.Equal(t, []string{en("deletion_cancelled")}, f.api.texts("answerCallbackQuery"))
	})
}

func TestHandleText_Routing(t *testing.T) {
	tests := []struct {
		name          string
		inDialog      bool
		input         string
		expectedTexts []string
		expectActive  bool
	}{
		{
			name:          "menu button outside dialog",
			input:         en("btn_my_reminders"),
			expectedTexts: []string{en("no_reminders")},
		},
		{
			name:          "menu button in another language",
			input:         locale.Text(domain.LangRU, "btn_my_reminders"),
			expectedTexts: []string{en("no_reminders")},
		},
		{
			name:          "create button starts the dialog",
			input:         en("btn_create_reminder"),
			expectedTexts: []string{en("reminder_text_prompt")},
			expectActive:  true,
		},
		{
			name:          "plain text outside dialog is ignored",
			input:         "hello",
			expectedTexts: []string{},
		},
		{
			name:          "unknown command outside dialog is ignored",
			input:         "/unknown",
			expectedTexts: []string{},
		},
		{
			name:          "cancel outside dialog still answers",
			input:         en("btn_cancel"),
			expectedTexts: []string{en("reminder_cancelled")},
		},
		{
			name:          "menu button text during dialog is reminder text",
			inDialog:      true,
			input:         en("btn_my_reminders"),
			expectedTexts: []string{en("reminder_date_prompt")},
			expectActive:  true,
		},
		{
			name:          "cancel button during dialog",
			inDialog:      true,
			input:         locale.Text(domain.LangUA, "btn_cancel"),
			expectedTexts: []string{en("reminder_cancelled")},
		},
		{
			name:          "unknown command during dialog re-prompts",
			inDialog:      true,
			input:         "/unknown",
			expectedTexts: []string{en("reminder_text_prompt")},
			expectActive:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			if tt.inDialog {
				f.handler.dialogService.Start(5)
			}

			require.NoError(t, f.handler.handleText(f.message(5, tt.input)))

			assert.Equal(t, tt.expectedTexts, f.api.texts("sendMessage"))
			assert.Equal(t, tt.expectActive, f.handler.dialogService.Active(5))
		})
	}
}

func TestDialogThroughHandler(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.SetTimezone(ctx, 5, "Europe/Kiev"))
	require.NoError(t, f.handler.handleSetReminder(f.message(5, "/set_reminder")))
	for _, input := range []string{"Call the doctor", "2025-10-28", "15:30"} {
		require.NoError(t, f.handler.handleText(f.message(5, input)))
	}

	texts := f.api.texts("sendMessage")
	require.Len(t, texts, 4)
	assert.Equal(t, en("reminder_text_prompt"), texts[0])
	assert.Equal(t, en("reminder_date_prompt"), texts[1])
	assert.Equal(t, en("reminder_time_prompt"), texts[2])
	assert.Contains(t, texts[3], "2025-10-28")
	assert.Contains(t, texts[3], "15:30")

	stored, err := f.store.ListReminders(ctx, 5, true)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "13:30", stored[0].Time)

	f.api.reset()
	require.NoError(t, f.handler.handleText(f.message(5, "15:30")))
	assert.Empty(t, f.api.texts("sendMessage"), "dialog is over")
}
