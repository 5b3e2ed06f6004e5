package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI string
	ListenAddr  string
	LogLevel    string

	// Scheduling policy. The original frontend and backend disagreed on the
	// day-start hour (6 vs 9), so it is configuration here, not a constant.
	DayStartHour         int
	MediumSessionsPerDay int
	StudyEventColor      string
	SlotMaxProbes        int

	// Study reminder notifications (optional).
	TelegramToken       string
	TelegramChatID      int64
	ReminderLeadMinutes int

	// Chat assistant (optional).
	AIAPIKey  string
	AIBaseURL string
	AIModel   string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	cfg := &Config{
		DatabaseURI:     os.Getenv("DATABASE_URI"),
		ListenAddr:      getEnvOrDefault("LISTEN_ADDR", ":5000"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		StudyEventColor: getEnvOrDefault("STUDY_EVENT_COLOR", "blue"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		AIAPIKey:        os.Getenv("AI_API_KEY"),
		AIBaseURL:       getEnvOrDefault("AI_BASE_URL", "https://openrouter.ai/api/v1"),
		AIModel:         getEnvOrDefault("AI_MODEL", "openai/gpt-4o-mini"),
	}

	var err error
	if cfg.DayStartHour, err = getEnvInt("DAY_START_HOUR", 6); err != nil {
		return nil, err
	}
	if cfg.DayStartHour < 0 || cfg.DayStartHour > 23 {
		return nil, fmt.Errorf("DAY_START_HOUR must be in [0,23], got %d", cfg.DayStartHour)
	}
	if cfg.MediumSessionsPerDay, err = getEnvInt("MEDIUM_SESSIONS_PER_DAY", 1); err != nil {
		return nil, err
	}
	if cfg.SlotMaxProbes, err = getEnvInt("SLOT_MAX_PROBES", 1000); err != nil {
		return nil, err
	}
	if cfg.ReminderLeadMinutes, err = getEnvInt("REMINDER_LEAD_MINUTES", 30); err != nil {
		return nil, err
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID must be an integer: %w", err)
		}
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
