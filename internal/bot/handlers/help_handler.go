package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const helpText = "*📋 TLDR Bot — Command Reference*\n\n" +
	"`/tldr` — Summary of the last 24 hours\n" +
	"`/tldr 48` — Summary of the last N hours (up to 168)\n\n" +
	"`/schedule 09:00` — Post daily TLDR at 09:00 UTC\n" +
	"`/schedule off` — Disable daily TLDR\n\n" +
	"`/whois @username` — Personality profile based on their messages\n\n" +
	"`/support question` — Answer a question using chat history\n" +
	"_(or reply to a message with /support)_\n\n" +
	"I silently collect messages once added to a group. " +
	"The more I see, the smarter I get. 🧠"

// NewHelpHandler returns a handler for the /help and /start commands.
func NewHelpHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return helpHandler{deps}.Handle
}

type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")

	if update.Message == nil {
		return
	}

	sendReply(ctx, b, update.Message.Chat.ID, helpText, models.ParseModeMarkdown, log)
}
