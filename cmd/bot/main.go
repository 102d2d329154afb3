package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reminderbot/internal/config"
	"reminderbot/internal/handler"
	"reminderbot/internal/repository"
	"reminderbot/internal/repository/jsonfile"
	"reminderbot/internal/repository/memory"
	"reminderbot/internal/repository/postgres"
	"reminderbot/internal/repository/sqlite"
	"reminderbot/internal/scheduler"
	"reminderbot/internal/service"
	"reminderbot/internal/timezone"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Reminder Bot",
		zap.String("storage", cfg.Storage.Driver),
		zap.Duration("scheduler_interval", cfg.Scheduler.Interval),
		zap.Bool("catch_up", cfg.Scheduler.CatchUp),
	)

	clock := clockwork.NewRealClock()

	// Open storage
	store, err := openStore(cfg, clock, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer store.Close()

	logger.Info("Storage ready")

	converter := timezone.NewConverter(logger)
	sessions := memory.NewSessionStore(clock, cfg.SessionTTL)

	// Initialize services
	profileService := service.NewProfileService(store, logger)
	reminderService := service.NewReminderService(store, logger)
	dialogService := service.NewDialogService(sessions, store, store, converter, clock, logger)
	cleanupService := service.NewCleanupService(store, sessions, cfg.Scheduler.SentRetention, clock, logger)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:     cfg.BotToken,
		Poller:    &tele.LongPoller{Timeout: 10 * time.Second},
		ParseMode: tele.ModeHTML,
		OnError: func(err error, c tele.Context) {
			logger.Error("Update handling failed", zap.Error(err))
		},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized")

	// Initialize handler
	h := handler.NewHandler(bot, profileService, reminderService, dialogService, converter, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start scheduler in background
	sched := scheduler.New(
		scheduler.Config{
			Interval: cfg.Scheduler.Interval,
			CatchUp:  cfg.Scheduler.CatchUp,
		},
		store, store,
		handler.NewNotifier(bot),
		cleanupService,
		converter,
		clock,
		logger,
	)
	if err := sched.Start(ctx); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	cancel()
	if err := sched.Stop(); err != nil {
		logger.Warn("Scheduler did not stop cleanly", zap.Error(err))
	}

	logger.Info("Bot stopped gracefully")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStore opens the configured storage backend
func openStore(cfg *config.Config, clock clockwork.Clock, logger *zap.Logger) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverJSON:
		return jsonfile.New(cfg.Storage.DataFile, clock, logger), nil
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Storage.SQLitePath, clock)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverPostgres:
		db, err := connectDatabase(cfg.DSN(), logger)
		if err != nil {
			return nil, err
		}
		if err := runMigrations(db, cfg.MigrationsPath, logger); err != nil {
			db.Close()
			return nil, err
		}
		return postgres.NewStore(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		// Test connection
		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, path string, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+path,
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}

	return nil
}
