package handler

import (
	"reminderbot/internal/domain"
	"reminderbot/internal/middleware"
	"reminderbot/internal/service"
	"reminderbot/internal/timezone"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Handler manages all bot interactions
type Handler struct {
	bot             *tele.Bot
	profileService  *service.ProfileService
	reminderService *service.ReminderService
	dialogService   *service.DialogService
	converter       *timezone.Converter
	logger          *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	profileService *service.ProfileService,
	reminderService *service.ReminderService,
	dialogService *service.DialogService,
	converter *timezone.Converter,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:             bot,
		profileService:  profileService,
		reminderService: reminderService,
		dialogService:   dialogService,
		converter:       converter,
		logger:          logger,
	}
}

// RegisterHandlers registers middlewares and all bot handlers
func (h *Handler) RegisterHandlers() {
	h.bot.Use(
		middleware.RecoverMiddleware(h.logger),
		middleware.ProfileMiddleware(h.profileService, h.logger),
	)

	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/help", h.handleHelp)
	h.bot.Handle("/language", h.handleLanguage)
	h.bot.Handle("/timezone", h.handleTimezone)
	h.bot.Handle("/set_reminder", h.handleSetReminder)
	h.bot.Handle("/list_reminders", h.handleListReminders)
	h.bot.Handle("/cancel", h.handleCancel)

	// Text messages: menu buttons and dialog input
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnOnboardLanguage, h.handleOnboardLanguage)
	h.bot.Handle(&btnLanguage, h.handleLanguageSelected)
	h.bot.Handle(&btnOnboardTimezone, h.handleOnboardTimezone)
	h.bot.Handle(&btnTimezone, h.handleTimezoneSelected)
	h.bot.Handle(&btnDelete, h.handleDeleteRequest)
	h.bot.Handle(&btnDeleteConfirm, h.handleDeleteConfirm)
	h.bot.Handle(&btnDeleteCancel, h.handleDeleteCancel)

	// Generic callback handler for anything unrecognized
	h.bot.Handle(tele.OnCallback, h.handleCallback)

	if err := h.setCommands(domain.DefaultLanguage, nil); err != nil {
		h.logger.Warn("Failed to register default command menu", zap.Error(err))
	}
}

// lang returns the sender's language resolved by middleware
func (h *Handler) lang(c tele.Context) domain.Language {
	return middleware.Language(c)
}

// Inline keyboard buttons, matched by Unique
var (
	btnOnboardLanguage = tele.Btn{Unique: "onboard_lang"}
	btnLanguage        = tele.Btn{Unique: "lang"}
	btnOnboardTimezone = tele.Btn{Unique: "onboard_tz"}
	btnTimezone        = tele.Btn{Unique: "tz"}
	btnDelete          = tele.Btn{Unique: "del"}
	btnDeleteConfirm   = tele.Btn{Unique: "del_yes"}
	btnDeleteCancel    = tele.Btn{Unique: "del_no"}
)
