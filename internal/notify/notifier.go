package notify

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/efeborasaglam/studyflow-thinknest/internal/logger"
	"github.com/efeborasaglam/studyflow-thinknest/internal/models"
	"github.com/efeborasaglam/studyflow-thinknest/internal/scheduler"
)

// Notifier periodically looks for events that start within the reminder
// window and pushes one Telegram message per event to the configured chat.
type Notifier struct {
	api           *tgbotapi.BotAPI
	store         scheduler.EventStore
	chatID        int64
	lead          time.Duration
	checkInterval time.Duration

	notified map[string]time.Time
}

func New(api *tgbotapi.BotAPI, store scheduler.EventStore, chatID int64, lead time.Duration) *Notifier {
	return &Notifier{
		api:           api,
		store:         store,
		chatID:        chatID,
		lead:          lead,
		checkInterval: time.Minute,
		notified:      make(map[string]time.Time),
	}
}

func (n *Notifier) Start(ctx context.Context) {
	logger.Info("notifier started", "lead", n.lead)
	ticker := time.NewTicker(n.checkInterval)
	defer ticker.Stop()

	n.check(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("notifier stopped")
			return
		case <-ticker.C:
			n.check(ctx)
		}
	}
}

func (n *Notifier) check(ctx context.Context) {
	now := time.Now()
	events, err := n.store.FindStartingBetween(ctx, now, now.Add(n.lead))
	if err != nil {
		logger.Error("failed to load upcoming events", err)
		return
	}

	for _, event := range events {
		if event.IsCompleted {
			continue
		}
		if _, sent := n.notified[event.ID]; sent {
			continue
		}

		msg := tgbotapi.NewMessage(n.chatID, reminderText(event, now))
		if _, err := n.api.Send(msg); err != nil {
			logger.Error("failed to send reminder", err, "event_id", event.ID)
			continue
		}
		n.notified[event.ID] = now
	}

	n.prune(now)
}

// prune drops remembered ids once their reminder window has long passed so
// the map does not grow forever.
func (n *Notifier) prune(now time.Time) {
	cutoff := now.Add(-24 * time.Hour)
	for id, sentAt := range n.notified {
		if sentAt.Before(cutoff) {
			delete(n.notified, id)
		}
	}
}

func reminderText(event *models.Event, now time.Time) string {
	in := event.Start.Sub(now).Round(time.Minute)
	kind := "Event"
	switch {
	case event.IsExam:
		kind = "Exam"
	case event.IsStudySession():
		kind = "Study session"
	}
	return fmt.Sprintf("%s starting in %s: %s (%s)",
		kind, in, event.Title, event.Start.Format("15:04"))
}
