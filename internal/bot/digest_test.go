package bot_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/tldrbot/tldrbot/internal/bot"
	"github.com/tldrbot/tldrbot/internal/database"
)

func seedMessages(store *fakeStore, chatID int64, count int) {
	now := time.Now().UTC()
	for i := 0; i < count; i++ {
		store.messages[chatID] = append(store.messages[chatID], database.Message{
			ChatID:    chatID,
			UserID:    int64(i + 1),
			Username:  "maya",
			Text:      "hello",
			Timestamp: now.Add(-time.Duration(i) * time.Minute),
		})
	}
}

func TestRunDigestDeliversSummary(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedMessages(store, 42, 3)
	ai := &fakeAI{digest: "three people said hello"}
	sender := &fakeSender{}
	digester := bot.NewDigester(nil, store, ai, sender, 24)

	delivered, err := digester.RunDigest(context.Background(), 42, 12, false)
	if err != nil {
		t.Fatalf("RunDigest: %v", err)
	}
	if !delivered {
		t.Error("expected digest to be delivered")
	}

	if ai.digestCalls != 1 {
		t.Fatalf("expected 1 digest generation, got %d", ai.digestCalls)
	}
	if ai.lastHours != 12 || ai.lastScheduled {
		t.Errorf("generation called with hours=%d scheduled=%v, want hours=12 scheduled=false", ai.lastHours, ai.lastScheduled)
	}
	if ai.lastMsgCount != 3 {
		t.Errorf("expected 3 messages passed to generation, got %d", ai.lastMsgCount)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message sent, got %d", len(sender.sent))
	}
	if sender.sent[0].Text != "three people said hello" {
		t.Errorf("unexpected delivered text: %q", sender.sent[0].Text)
	}
	if sender.sent[0].ParseMode != models.ParseModeMarkdown {
		t.Errorf("expected Markdown parse mode, got %q", sender.sent[0].ParseMode)
	}
}

func TestRunDigestEmptyWindowOnDemand(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	ai := &fakeAI{}
	sender := &fakeSender{}
	digester := bot.NewDigester(nil, store, ai, sender, 24)

	delivered, err := digester.RunDigest(context.Background(), 42, 24, false)
	if err != nil {
		t.Fatalf("RunDigest: %v", err)
	}
	if delivered {
		t.Error("an empty window must not count as a delivered digest")
	}

	if ai.digestCalls != 0 {
		t.Errorf("empty window must not reach the AI, got %d calls", ai.digestCalls)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected the empty-window notice to be sent, got %d messages", len(sender.sent))
	}
	if sender.sent[0].Text != bot.MsgNothingToSummarize {
		t.Errorf("unexpected notice text: %q", sender.sent[0].Text)
	}
}

func TestRunDigestEmptyWindowScheduledIsSilent(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	ai := &fakeAI{}
	sender := &fakeSender{}
	digester := bot.NewDigester(nil, store, ai, sender, 24)

	delivered, err := digester.RunDigest(context.Background(), 42, 24, true)
	if err != nil {
		t.Fatalf("RunDigest: %v", err)
	}
	if delivered {
		t.Error("an empty window must not count as a delivered digest")
	}

	if ai.digestCalls != 0 {
		t.Errorf("empty window must not reach the AI, got %d calls", ai.digestCalls)
	}
	if len(sender.sent) != 0 {
		t.Errorf("scheduled run over an empty window must stay silent, got %d messages", len(sender.sent))
	}
}

func TestRunDigestGenerationFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedMessages(store, 42, 2)
	ai := &fakeAI{err: errors.New("model overloaded")}
	sender := &fakeSender{}
	digester := bot.NewDigester(nil, store, ai, sender, 24)

	delivered, err := digester.RunDigest(context.Background(), 42, 24, false)
	if err == nil {
		t.Fatal("expected generation error to propagate")
	}
	if delivered {
		t.Error("a failed run must not report delivery")
	}
	if len(sender.sent) != 0 {
		t.Errorf("nothing should be delivered after a generation failure, got %d messages", len(sender.sent))
	}
}

func TestRunDigestStoreFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.windowErr = errors.New("database locked")
	ai := &fakeAI{}
	sender := &fakeSender{}
	digester := bot.NewDigester(nil, store, ai, sender, 24)

	if _, err := digester.RunDigest(context.Background(), 42, 24, false); err == nil {
		t.Fatal("expected store error to propagate")
	}
	if ai.digestCalls != 0 {
		t.Errorf("store failure must not reach the AI, got %d calls", ai.digestCalls)
	}
}

func TestRunScheduledDigestSwallowsErrors(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.windowErr = errors.New("database locked")
	digester := bot.NewDigester(nil, store, &fakeAI{}, &fakeSender{}, 24)

	// Must not panic; the failure is logged and dropped so the job stays live.
	digester.RunScheduledDigest(context.Background(), 42)
}

func TestRunScheduledDigestUsesConfiguredWindow(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedMessages(store, 42, 1)
	ai := &fakeAI{digest: "quiet day"}
	sender := &fakeSender{}
	digester := bot.NewDigester(nil, store, ai, sender, 24)

	digester.RunScheduledDigest(context.Background(), 42)

	if ai.digestCalls != 1 {
		t.Fatalf("expected 1 digest generation, got %d", ai.digestCalls)
	}
	if ai.lastHours != 24 || !ai.lastScheduled {
		t.Errorf("generation called with hours=%d scheduled=%v, want hours=24 scheduled=true", ai.lastHours, ai.lastScheduled)
	}
	if len(sender.sent) != 1 {
		t.Errorf("expected the digest to be delivered, got %d messages", len(sender.sent))
	}
}
