package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewWhoisHandler returns a handler for the /whois command, which builds a
// personality profile of a user from their archived messages.
func NewWhoisHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return whoisHandler{deps}.Handle
}

type whoisHandler struct {
	deps HandlerDeps
}

func (h whoisHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "whois")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	fields := strings.Fields(update.Message.Text)
	if len(fields) < 2 {
		sendReply(ctx, b, chatID, "Usage: `/whois @username`", models.ParseModeMarkdown, log)
		return
	}

	username := strings.TrimPrefix(fields[1], "@")
	log.InfoContext(ctx, "Handling /whois command", "chat_id", chatID, "username", username)

	messages, err := h.deps.Store.GetMessagesByAuthor(ctx, chatID, username, h.deps.Config.Digest.WhoisMessageLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch author messages", "chat_id", chatID, "username", username, "error", err)
		sendReply(ctx, b, chatID, msgDigestFailed, "", log)
		return
	}

	if len(messages) == 0 {
		sendReply(ctx, b, chatID, fmt.Sprintf(
			"🤷 I don't have enough messages from *%s* to build a profile yet. They're either a lurker, or a ghost.",
			username), models.ParseModeMarkdown, log)
		return
	}

	sendReply(ctx, b, chatID, fmt.Sprintf("🔍 Analyzing @%s... this could get interesting.", username), "", log)

	profile, err := h.deps.GeminiClient.GenerateProfile(ctx, username, messages)
	if err != nil {
		log.ErrorContext(ctx, "Profile generation failed", "chat_id", chatID, "username", username, "error", err)
		sendReply(ctx, b, chatID, msgDigestFailed, "", log)
		return
	}

	sendReply(ctx, b, chatID, profile, models.ParseModeMarkdown, log)
}
