package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tldrbot/tldrbot/internal/database"
	"github.com/tldrbot/tldrbot/internal/gemini"
)

// MsgNothingToSummarize is sent for on-demand digest requests over an empty
// window. Scheduled runs skip silently instead.
const MsgNothingToSummarize = "📭 Nothing to summarize yet — I haven't seen any messages in that window. " +
	"Give me some time to lurk first."

// MessageSender is the subset of the Telegram bot API needed to deliver
// generated text to a chat. *tgbot.Bot satisfies it.
type MessageSender interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
}

// Digester orchestrates digest generation: it fetches a chat's message
// window, asks the AI for a summary, and delivers the result.
type Digester struct {
	logger         *slog.Logger
	store          database.Store
	ai             gemini.Client
	sender         MessageSender
	scheduledHours int
}

// NewDigester creates a Digester. scheduledHours is the window size used for
// timer-triggered digests.
func NewDigester(logger *slog.Logger, store database.Store, ai gemini.Client, sender MessageSender, scheduledHours int) *Digester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Digester{
		logger:         logger.With("component", "digester"),
		store:          store,
		ai:             ai,
		sender:         sender,
		scheduledHours: scheduledHours,
	}
}

// RunDigest generates and delivers a digest of a chat's last 'hours' hours.
// It returns whether a digest was delivered. An empty window is not an error:
// scheduled runs skip silently while on-demand runs notify the requester.
// Generation and delivery failures propagate to the caller.
func (d *Digester) RunDigest(ctx context.Context, chatID int64, hours int, scheduled bool) (bool, error) {
	messages, err := d.store.GetMessagesInWindow(ctx, chatID, hours)
	if err != nil {
		return false, fmt.Errorf("failed to fetch message window: %w", err)
	}

	if len(messages) == 0 {
		d.logger.DebugContext(ctx, "No messages in digest window", "chat_id", chatID, "hours", hours, "scheduled", scheduled)
		if scheduled {
			// Quiet day, nothing to post
			return false, nil
		}

		_, err := d.sender.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   MsgNothingToSummarize,
		})
		if err != nil {
			return false, fmt.Errorf("failed to send empty-window notice: %w", err)
		}
		return false, nil
	}

	summary, err := d.ai.GenerateDigest(ctx, messages, hours, scheduled)
	if err != nil {
		return false, fmt.Errorf("failed to generate digest: %w", err)
	}

	_, err = d.sender.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      summary,
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		return false, fmt.Errorf("failed to deliver digest: %w", err)
	}

	d.logger.InfoContext(ctx, "Digest delivered", "chat_id", chatID, "hours", hours, "scheduled", scheduled, "message_count", len(messages))
	return true, nil
}

// RunScheduledDigest is the DigestFunc bound to every digest job. Failures
// are logged and dropped: a failed run must not crash the scheduler loop or
// deregister the job, which stays live for the next cycle.
func (d *Digester) RunScheduledDigest(ctx context.Context, chatID int64) {
	if _, err := d.RunDigest(ctx, chatID, d.scheduledHours, true); err != nil {
		d.logger.ErrorContext(ctx, "Scheduled digest failed", "chat_id", chatID, "error", err)
	}
}
