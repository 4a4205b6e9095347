package handlers

import (
	"context"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSupportHandler returns a handler for the /support command, which answers
// a question using recent chat history as context. The question comes either
// from the command arguments or from the replied-to message.
func NewSupportHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return supportHandler{deps}.Handle
}

type supportHandler struct {
	deps HandlerDeps
}

func (h supportHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "support")

	if update.Message == nil {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID

	var question string
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.Text != "" {
		question = msg.ReplyToMessage.Text
	} else if fields := strings.Fields(msg.Text); len(fields) > 1 {
		question = strings.Join(fields[1:], " ")
	}

	if question == "" {
		sendReply(ctx, b, chatID,
			"Usage: Reply to a message with `/support`, or `/support your question here`",
			models.ParseModeMarkdown, log)
		return
	}

	log.InfoContext(ctx, "Handling /support command", "chat_id", chatID)

	messages, err := h.deps.Store.GetMessagesInWindow(ctx, chatID, h.deps.Config.Digest.SupportWindowHours)
	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch support context window", "chat_id", chatID, "error", err)
		sendReply(ctx, b, chatID, msgDigestFailed, "", log)
		return
	}

	if len(messages) == 0 {
		sendReply(ctx, b, chatID,
			"📭 I don't have enough chat history to answer that yet. Keep talking — I'm learning!", "", log)
		return
	}

	sendReply(ctx, b, chatID, "🤔 Searching the chat archives...", "", log)

	answer, err := h.deps.GeminiClient.GenerateAnswer(ctx, question, messages)
	if err != nil {
		log.ErrorContext(ctx, "Answer generation failed", "chat_id", chatID, "error", err)
		sendReply(ctx, b, chatID, msgDigestFailed, "", log)
		return
	}

	sendReply(ctx, b, chatID, answer, models.ParseModeMarkdown, log)
}
