package bot_test

import (
	"context"
	"sort"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tldrbot/tldrbot/internal/database"
)

// fakeStore is an in-memory database.Store used by orchestrator tests.
type fakeStore struct {
	messages  map[int64][]database.Message
	schedules map[int64]string

	windowErr       error
	saveScheduleErr error
	listErr         error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		messages:  make(map[int64][]database.Message),
		schedules: make(map[int64]string),
	}
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) SaveMessage(_ context.Context, message *database.Message) error {
	f.messages[message.ChatID] = append(f.messages[message.ChatID], *message)
	return nil
}

func (f *fakeStore) GetMessagesInWindow(_ context.Context, chatID int64, hours int) ([]database.Message, error) {
	if f.windowErr != nil {
		return nil, f.windowErr
	}
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	var out []database.Message
	for _, m := range f.messages[chatID] {
		if !m.Timestamp.Before(cutoff) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeStore) GetMessagesByAuthor(_ context.Context, chatID int64, _ string, _ int) ([]database.Message, error) {
	return f.messages[chatID], nil
}

func (f *fakeStore) SaveSchedule(_ context.Context, chatID int64, timeOfDay string) error {
	if f.saveScheduleErr != nil {
		return f.saveScheduleErr
	}
	f.schedules[chatID] = timeOfDay
	return nil
}

func (f *fakeStore) GetSchedule(_ context.Context, chatID int64) (*database.Schedule, error) {
	timeOfDay, ok := f.schedules[chatID]
	if !ok {
		return nil, nil
	}
	return &database.Schedule{ChatID: chatID, TimeOfDay: timeOfDay}, nil
}

func (f *fakeStore) RemoveSchedule(_ context.Context, chatID int64) error {
	delete(f.schedules, chatID)
	return nil
}

func (f *fakeStore) ListSchedules(context.Context) ([]database.Schedule, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]database.Schedule, 0, len(f.schedules))
	for chatID, timeOfDay := range f.schedules {
		out = append(out, database.Schedule{ChatID: chatID, TimeOfDay: timeOfDay})
	}
	return out, nil
}

func (f *fakeStore) RunSQLMaintenance(context.Context) error { return nil }

// fakeAI is a canned gemini.Client recording what it was asked to generate.
type fakeAI struct {
	digest string
	err    error

	digestCalls    int
	lastHours      int
	lastScheduled  bool
	lastMsgCount   int
	profileCalls   int
	answerCalls    int
	lastQuestion   string
	lastProfileFor string
}

func (f *fakeAI) GenerateDigest(_ context.Context, messages []database.Message, hours int, scheduled bool) (string, error) {
	f.digestCalls++
	f.lastHours = hours
	f.lastScheduled = scheduled
	f.lastMsgCount = len(messages)
	if f.err != nil {
		return "", f.err
	}
	return f.digest, nil
}

func (f *fakeAI) GenerateProfile(_ context.Context, username string, _ []database.Message) (string, error) {
	f.profileCalls++
	f.lastProfileFor = username
	if f.err != nil {
		return "", f.err
	}
	return "profile of " + username, nil
}

func (f *fakeAI) GenerateAnswer(_ context.Context, question string, _ []database.Message) (string, error) {
	f.answerCalls++
	f.lastQuestion = question
	if f.err != nil {
		return "", f.err
	}
	return "answer to " + question, nil
}

// fakeSender records delivered messages.
type fakeSender struct {
	sent []tgbot.SendMessageParams
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, params *tgbot.SendMessageParams) (*models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, *params)
	return &models.Message{}, nil
}
