package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tldrbot/tldrbot/internal/database"
)

// newTestStore opens a fresh temp-file SQLite database with migrations
// applied and returns a Store backed by it.
func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func saveMessage(t *testing.T, store database.Store, chatID int64, username, text string, ts time.Time) {
	t.Helper()

	err := store.SaveMessage(context.Background(), &database.Message{
		ChatID:    chatID,
		UserID:    1,
		Username:  username,
		Text:      text,
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("failed to save message: %v", err)
	}
}

func TestSaveMessageValidation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	testCases := []struct {
		name    string
		message *database.Message
	}{
		{name: "nil message", message: nil},
		{name: "zero chat_id", message: &database.Message{Text: "hi", Timestamp: now}},
		{name: "empty text", message: &database.Message{ChatID: 1, Timestamp: now}},
		{name: "zero timestamp", message: &database.Message{ChatID: 1, Text: "hi"}},
	}

	for _, tc := range testCases {
		if err := store.SaveMessage(ctx, tc.message); err == nil {
			t.Errorf("%s: expected validation error, got nil", tc.name)
		}
	}
}

func TestGetMessagesInWindow(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	saveMessage(t, store, 42, "maya", "recent", now.Add(-1*time.Hour))
	saveMessage(t, store, 42, "sam", "older but inside", now.Add(-20*time.Hour))
	saveMessage(t, store, 42, "maya", "too old", now.Add(-30*time.Hour))
	saveMessage(t, store, 99, "maya", "other chat", now.Add(-1*time.Hour))

	messages, err := store.GetMessagesInWindow(ctx, 42, 24)
	if err != nil {
		t.Fatalf("GetMessagesInWindow: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("expected 2 messages in window, got %d", len(messages))
	}

	// Ascending timestamp order: the 20h-old message comes first
	if messages[0].Text != "older but inside" || messages[1].Text != "recent" {
		t.Errorf("unexpected window order: %q, %q", messages[0].Text, messages[1].Text)
	}
	if !messages[0].Timestamp.Before(messages[1].Timestamp) {
		t.Errorf("messages not in ascending timestamp order")
	}
}

func TestGetMessagesInWindowEmpty(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	messages, err := store.GetMessagesInWindow(context.Background(), 42, 24)
	if err != nil {
		t.Fatalf("GetMessagesInWindow on empty store: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("expected empty result, got %d messages", len(messages))
	}
}

func TestGetMessagesInWindowRejectsBadInput(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetMessagesInWindow(ctx, 0, 24); err == nil {
		t.Error("expected error for zero chat_id")
	}
	if _, err := store.GetMessagesInWindow(ctx, 42, 0); err == nil {
		t.Error("expected error for non-positive hours")
	}
}

func TestGetMessagesByAuthorCaseInsensitive(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	saveMessage(t, store, 42, "Maya", "first", now.Add(-3*time.Hour))
	saveMessage(t, store, 42, "Maya", "second", now.Add(-2*time.Hour))
	saveMessage(t, store, 42, "sam", "not maya", now.Add(-1*time.Hour))

	messages, err := store.GetMessagesByAuthor(ctx, 42, "maya", 10)
	if err != nil {
		t.Fatalf("GetMessagesByAuthor: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("expected 2 messages from maya, got %d", len(messages))
	}

	// Most recent first
	if messages[0].Text != "second" || messages[1].Text != "first" {
		t.Errorf("unexpected author order: %q, %q", messages[0].Text, messages[1].Text)
	}
}

func TestGetMessagesByAuthorLimit(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		saveMessage(t, store, 42, "maya", "msg", now.Add(-time.Duration(i)*time.Minute))
	}

	messages, err := store.GetMessagesByAuthor(context.Background(), 42, "maya", 3)
	if err != nil {
		t.Fatalf("GetMessagesByAuthor: %v", err)
	}
	if len(messages) != 3 {
		t.Errorf("expected limit of 3 messages, got %d", len(messages))
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	// Absent before any write
	schedule, err := store.GetSchedule(ctx, 7)
	if err != nil {
		t.Fatalf("GetSchedule: %v", err)
	}
	if schedule != nil {
		t.Fatalf("expected absent schedule, got %+v", schedule)
	}

	if err := store.SaveSchedule(ctx, 7, "09:00"); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}

	schedule, err = store.GetSchedule(ctx, 7)
	if err != nil {
		t.Fatalf("GetSchedule after save: %v", err)
	}
	if schedule == nil || schedule.TimeOfDay != "09:00" {
		t.Fatalf("expected schedule 09:00, got %+v", schedule)
	}

	if err := store.RemoveSchedule(ctx, 7); err != nil {
		t.Fatalf("RemoveSchedule: %v", err)
	}

	schedule, err = store.GetSchedule(ctx, 7)
	if err != nil {
		t.Fatalf("GetSchedule after remove: %v", err)
	}
	if schedule != nil {
		t.Errorf("expected absent schedule after remove, got %+v", schedule)
	}
}

func TestSaveScheduleUpsertsSingleRow(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveSchedule(ctx, 7, "09:00"); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}
	if err := store.SaveSchedule(ctx, 7, "18:30"); err != nil {
		t.Fatalf("SaveSchedule overwrite: %v", err)
	}

	schedules, err := store.ListSchedules(ctx)
	if err != nil {
		t.Fatalf("ListSchedules: %v", err)
	}
	if len(schedules) != 1 {
		t.Fatalf("expected a single schedule row after upsert, got %d", len(schedules))
	}
	if schedules[0].ChatID != 7 || schedules[0].TimeOfDay != "18:30" {
		t.Errorf("expected chat 7 at 18:30, got %+v", schedules[0])
	}
}

func TestRemoveScheduleAbsentIsNoOp(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	if err := store.RemoveSchedule(context.Background(), 12345); err != nil {
		t.Errorf("removing an absent schedule should be a no-op, got %v", err)
	}
}

func TestListSchedules(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveSchedule(ctx, 7, "09:00"); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}
	if err := store.SaveSchedule(ctx, 8, "12:00"); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}

	schedules, err := store.ListSchedules(ctx)
	if err != nil {
		t.Fatalf("ListSchedules: %v", err)
	}
	if len(schedules) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(schedules))
	}

	byChat := make(map[int64]string, len(schedules))
	for _, s := range schedules {
		byChat[s.ChatID] = s.TimeOfDay
	}
	if byChat[7] != "09:00" || byChat[8] != "12:00" {
		t.Errorf("unexpected schedules: %v", byChat)
	}
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	if err := store.RunSQLMaintenance(context.Background()); err != nil {
		t.Errorf("RunSQLMaintenance: %v", err)
	}
}
