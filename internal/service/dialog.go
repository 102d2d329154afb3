package service

import (
	"context"
	"strings"
	"time"

	"reminderbot/internal/domain"
	"reminderbot/internal/repository"
	"reminderbot/internal/timezone"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// DialogResult tells the caller which message to show after a dialog step
type DialogResult int

const (
	// ResultIgnored means the user has no active dialog
	ResultIgnored DialogResult = iota
	ResultAskText
	ResultEmptyText
	ResultAskDate
	ResultInvalidDate
	ResultDateInPast
	ResultAskTime
	ResultInvalidTime
	ResultTimeInPast
	ResultCreated
)

// Input layouts accept values without zero padding, e.g. 2025-1-5 and 9:5
const (
	dateInputLayout = "2006-1-2"
	timeInputLayout = "15:4"
)

var resultNames = map[DialogResult]string{
	ResultIgnored:     "ignored",
	ResultAskText:     "ask_text",
	ResultEmptyText:   "empty_text",
	ResultAskDate:     "ask_date",
	ResultInvalidDate: "invalid_date",
	ResultDateInPast:  "date_in_past",
	ResultAskTime:     "ask_time",
	ResultInvalidTime: "invalid_time",
	ResultTimeInPast:  "time_in_past",
	ResultCreated:     "created",
}

func (r DialogResult) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "unknown"
}

// DialogOutcome is the result of one dialog step.
// For ResultCreated, LocalDate and LocalTime hold the values the user entered.
type DialogOutcome struct {
	Result    DialogResult
	Reminder  *domain.Reminder
	LocalDate string
	LocalTime string
}

// DialogService drives the reminder creation dialog:
// text, then date, then time, then commit.
type DialogService struct {
	sessions     repository.SessionRepository
	userRepo     repository.UserRepository
	reminderRepo repository.ReminderRepository
	converter    *timezone.Converter
	clock        clockwork.Clock
	logger       *zap.Logger
}

// NewDialogService creates a new dialog service
func NewDialogService(
	sessions repository.SessionRepository,
	userRepo repository.UserRepository,
	reminderRepo repository.ReminderRepository,
	converter *timezone.Converter,
	clock clockwork.Clock,
	logger *zap.Logger,
) *DialogService {
	return &DialogService{
		sessions:     sessions,
		userRepo:     userRepo,
		reminderRepo: reminderRepo,
		converter:    converter,
		clock:        clock,
		logger:       logger,
	}
}

// Start begins a new dialog, discarding any unfinished one
func (s *DialogService) Start(userID int64) DialogOutcome {
	s.sessions.Set(userID, &domain.DialogSession{State: domain.StateAwaitingText})
	return DialogOutcome{Result: ResultAskText}
}

// Cancel drops the dialog and reports whether one was active
func (s *DialogService) Cancel(userID int64) bool {
	_, ok := s.sessions.Get(userID)
	s.sessions.Delete(userID)
	return ok
}

// Active reports whether the user is in the middle of a dialog
func (s *DialogService) Active(userID int64) bool {
	session, ok := s.sessions.Get(userID)
	return ok && session.State != domain.StateIdle
}

// Resume returns the prompt of the user's current dialog step
func (s *DialogService) Resume(userID int64) DialogOutcome {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return DialogOutcome{Result: ResultIgnored}
	}

	switch session.State {
	case domain.StateAwaitingText:
		return DialogOutcome{Result: ResultAskText}
	case domain.StateAwaitingDate:
		return DialogOutcome{Result: ResultAskDate}
	case domain.StateAwaitingTime:
		return DialogOutcome{Result: ResultAskTime}
	default:
		return DialogOutcome{Result: ResultIgnored}
	}
}

// Handle feeds one user message into the dialog. Invalid input keeps the
// current step. A Go error is returned only for storage failures.
func (s *DialogService) Handle(ctx context.Context, userID int64, input string) (DialogOutcome, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return DialogOutcome{Result: ResultIgnored}, nil
	}

	switch session.State {
	case domain.StateAwaitingText:
		return s.handleText(userID, session, input), nil
	case domain.StateAwaitingDate:
		return s.handleDate(userID, session, input), nil
	case domain.StateAwaitingTime:
		return s.handleTime(ctx, userID, session, input)
	default:
		s.sessions.Delete(userID)
		return DialogOutcome{Result: ResultIgnored}, nil
	}
}

func (s *DialogService) handleText(userID int64, session *domain.DialogSession, input string) DialogOutcome {
	text, err := normalizeText(input)
	if err != nil {
		s.sessions.Set(userID, session)
		return DialogOutcome{Result: ResultEmptyText}
	}

	session.Text = text
	session.State = domain.StateAwaitingDate
	s.sessions.Set(userID, session)
	return DialogOutcome{Result: ResultAskDate}
}

func (s *DialogService) handleDate(userID int64, session *domain.DialogSession, input string) DialogOutcome {
	// Keep the session alive while the user retries
	s.sessions.Set(userID, session)

	date, err := time.Parse(dateInputLayout, strings.TrimSpace(input))
	if err != nil {
		return DialogOutcome{Result: ResultInvalidDate}
	}

	// Compared against the process-local date, before timezone conversion
	today := s.clock.Now().In(time.Local).Format(domain.DateLayout)
	entered := date.Format(domain.DateLayout)
	if entered < today {
		return DialogOutcome{Result: ResultDateInPast}
	}

	session.Date = entered
	session.State = domain.StateAwaitingTime
	s.sessions.Set(userID, session)
	return DialogOutcome{Result: ResultAskTime}
}

func (s *DialogService) handleTime(ctx context.Context, userID int64, session *domain.DialogSession, input string) (DialogOutcome, error) {
	s.sessions.Set(userID, session)

	parsed, err := time.Parse(timeInputLayout, strings.TrimSpace(input))
	if err != nil {
		return DialogOutcome{Result: ResultInvalidTime}, nil
	}
	clock := parsed.Format(domain.TimeLayout)

	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return DialogOutcome{}, err
	}

	utc, err := s.converter.ToUTC(session.Date, clock, profile.Timezone)
	if err != nil {
		return DialogOutcome{Result: ResultInvalidTime}, nil
	}

	if utc.Before(s.clock.Now().UTC()) {
		return DialogOutcome{Result: ResultTimeInPast}, nil
	}

	reminder, err := s.reminderRepo.AddReminder(ctx, userID, session.Text,
		utc.Format(domain.DateLayout), utc.Format(domain.TimeLayout))
	if err != nil {
		return DialogOutcome{}, err
	}
	s.sessions.Delete(userID)

	s.logger.Info("Reminder created",
		zap.Int64("user_id", userID),
		zap.Int("reminder_id", reminder.ID),
		zap.String("trigger_utc", reminder.DateTime()),
		zap.String("timezone", profile.Timezone),
	)

	return DialogOutcome{
		Result:    ResultCreated,
		Reminder:  reminder,
		LocalDate: session.Date,
		LocalTime: clock,
	}, nil
}

func normalizeText(input string) (string, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}
