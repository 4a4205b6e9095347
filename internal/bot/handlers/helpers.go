package handlers

import (
	"context"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// sendReply delivers a message to a chat and logs delivery failures. Replies
// are fire-and-forget: a failed send never propagates to the handler's caller.
func sendReply(ctx context.Context, b *tgbot.Bot, chatID int64, text string, parseMode models.ParseMode, log *slog.Logger) {
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseMode,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "chat_id", chatID, "error", err)
	}
}
