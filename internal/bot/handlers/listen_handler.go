package handlers

import (
	"context"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tldrbot/tldrbot/internal/database"
)

// NewListenHandler returns the default handler that silently archives every
// non-command text message. Ingestion is best-effort: a failed write is
// logged and swallowed, never surfaced to the chat.
func NewListenHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return listenHandler{deps}.Handle
}

type listenHandler struct {
	deps HandlerDeps
}

func (h listenHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "listen")

	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	if msg.Text == "" || strings.HasPrefix(msg.Text, "/") {
		return
	}

	username := msg.From.Username
	if username == "" {
		username = msg.From.FirstName
	}

	err := h.deps.Store.SaveMessage(ctx, &database.Message{
		ChatID:    msg.Chat.ID,
		UserID:    msg.From.ID,
		Username:  username,
		Text:      msg.Text,
		Timestamp: time.Unix(int64(msg.Date), 0).UTC(),
		MessageID: msg.ID,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to archive message", "chat_id", msg.Chat.ID, "message_id", msg.ID, "error", err)
	}
}
