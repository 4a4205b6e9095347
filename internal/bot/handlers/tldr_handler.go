package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"

	"github.com/go-telegram/bot/models"

	"github.com/tldrbot/tldrbot/internal/text"
)

const msgDigestFailed = "❌ Couldn't generate the summary right now. Please try again later."

// NewTLDRHandler returns a handler for the /tldr command. An optional numeric
// argument selects the window in hours, clamped to [1,168]; the default comes
// from configuration.
func NewTLDRHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return tldrHandler{deps}.Handle
}

type tldrHandler struct {
	deps HandlerDeps
}

func (h tldrHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "tldr")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	hours := h.deps.Config.Digest.DefaultHours
	if fields := strings.Fields(update.Message.Text); len(fields) > 1 {
		if n, err := strconv.Atoi(fields[1]); err == nil {
			hours = text.ClampHours(n)
		}
		// A non-numeric argument falls back to the default window
	}

	log.InfoContext(ctx, "Handling /tldr command", "chat_id", chatID, "hours", hours)

	sendReply(ctx, b, chatID, fmt.Sprintf("⏳ Brewing your %dh summary... one sec.", hours), "", log)

	if _, err := h.deps.Digester.RunDigest(ctx, chatID, hours, false); err != nil {
		log.ErrorContext(ctx, "On-demand digest failed", "chat_id", chatID, "hours", hours, "error", err)
		sendReply(ctx, b, chatID, msgDigestFailed, "", log)
	}
}
