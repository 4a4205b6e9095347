package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tldrbot/tldrbot/internal/text"
)

const msgScheduleFailed = "❌ Couldn't update the schedule right now. Please try again later."

// NewScheduleHandler returns a handler for the /schedule command.
// Usage: /schedule HH:MM sets the daily digest time (UTC), /schedule off
// disables it, and /schedule with no argument shows the current setting.
func NewScheduleHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return scheduleHandler{deps}.Handle
}

type scheduleHandler struct {
	deps HandlerDeps
}

func (h scheduleHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "schedule")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	fields := strings.Fields(update.Message.Text)
	if len(fields) < 2 {
		h.showCurrent(ctx, b, chatID, log)
		return
	}

	arg := strings.ToLower(fields[1])

	if arg == "off" {
		if err := h.deps.Schedules.Clear(ctx, chatID); err != nil {
			log.ErrorContext(ctx, "Failed to clear schedule", "chat_id", chatID, "error", err)
			sendReply(ctx, b, chatID, msgScheduleFailed, "", log)
			return
		}
		sendReply(ctx, b, chatID, "🔕 Daily TLDR disabled. I'll go back to silently judging everyone.", "", log)
		return
	}

	// Input is validated before any store or scheduler state changes
	hour, minute, err := text.ParseClock(arg)
	if err != nil {
		sendReply(ctx, b, chatID, "❌ Invalid time format. Use HH:MM (e.g. `/schedule 09:00`)", models.ParseModeMarkdown, log)
		return
	}

	if err := h.deps.Schedules.Set(ctx, chatID, hour, minute); err != nil {
		log.ErrorContext(ctx, "Failed to set schedule", "chat_id", chatID, "time", arg, "error", err)
		sendReply(ctx, b, chatID, msgScheduleFailed, "", log)
		return
	}

	sendReply(ctx, b, chatID, fmt.Sprintf(
		"✅ Done! I'll drop a daily TLDR at *%s UTC* every day.\nUse `/schedule off` to cancel.",
		text.FormatClock(hour, minute)), models.ParseModeMarkdown, log)
}

func (h scheduleHandler) showCurrent(ctx context.Context, b *tgbot.Bot, chatID int64, log *slog.Logger) {
	current, ok, err := h.deps.Schedules.Get(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read schedule", "chat_id", chatID, "error", err)
		sendReply(ctx, b, chatID, msgScheduleFailed, "", log)
		return
	}

	if ok {
		sendReply(ctx, b, chatID, fmt.Sprintf(
			"⏰ Daily TLDR is set for *%s* UTC.\nUse `/schedule HH:MM` to change it or `/schedule off` to disable.",
			current), models.ParseModeMarkdown, log)
	} else {
		sendReply(ctx, b, chatID,
			"No daily TLDR scheduled. Use `/schedule HH:MM` (UTC) to set one.",
			models.ParseModeMarkdown, log)
	}
}
