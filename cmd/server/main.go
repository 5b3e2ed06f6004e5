package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/efeborasaglam/studyflow-thinknest/internal/assistant"
	"github.com/efeborasaglam/studyflow-thinknest/internal/config"
	"github.com/efeborasaglam/studyflow-thinknest/internal/database"
	"github.com/efeborasaglam/studyflow-thinknest/internal/logger"
	"github.com/efeborasaglam/studyflow-thinknest/internal/notify"
	"github.com/efeborasaglam/studyflow-thinknest/internal/repository"
	"github.com/efeborasaglam/studyflow-thinknest/internal/scheduler"
	"github.com/efeborasaglam/studyflow-thinknest/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pick the event store: Postgres when configured, in-memory otherwise.
	var store scheduler.EventStore
	if cfg.DatabaseURI != "" {
		db, err := database.New(ctx, cfg.DatabaseURI)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		logger.Info("connected to database")

		store = repository.NewEventRepository(db)
	} else {
		logger.Info("no DATABASE_URI set, using in-memory store")
		store = repository.NewMemoryEventStore()
	}

	engine := scheduler.New(store, scheduler.Config{
		DayStartHour:         cfg.DayStartHour,
		MediumSessionsPerDay: cfg.MediumSessionsPerDay,
		SessionColor:         cfg.StudyEventColor,
		MaxSlotProbes:        cfg.SlotMaxProbes,
	})

	// Chat assistant (optional).
	var ai *assistant.Client
	if cfg.AIAPIKey != "" {
		ai = assistant.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		logger.Info("assistant initialized", "model", cfg.AIModel)
	} else {
		logger.Info("assistant not configured, chat endpoint disabled")
	}

	// Telegram study reminders (optional).
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			log.Fatalf("Failed to create Telegram API: %v", err)
		}
		notifier := notify.New(api, store, cfg.TelegramChatID,
			time.Duration(cfg.ReminderLeadMinutes)*time.Minute)
		go notifier.Start(ctx)
	} else {
		logger.Info("Telegram reminders not configured")
	}

	srv := server.New(engine, ai)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
		if err := srv.Shutdown(); err != nil {
			logger.Error("server shutdown failed", err)
		}
	}()

	logger.Info("starting server", "addr", cfg.ListenAddr)
	if err := srv.Listen(cfg.ListenAddr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
