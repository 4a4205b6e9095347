package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tldrbot/tldrbot/internal/database"
	"github.com/tldrbot/tldrbot/internal/text"
)

// ScheduleManager is the single mutation path for daily digest schedules. It
// keeps the persisted schedules table and the scheduler's in-memory job
// registry in sync: the table is the source of truth, the registry is a cache
// derived from it.
type ScheduleManager struct {
	logger    *slog.Logger
	store     database.Store
	scheduler *Scheduler
}

// NewScheduleManager creates a ScheduleManager bound to a store and scheduler.
func NewScheduleManager(logger *slog.Logger, store database.Store, scheduler *Scheduler) *ScheduleManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleManager{
		logger:    logger.With("component", "schedule_manager"),
		store:     store,
		scheduler: scheduler,
	}
}

// Set persists the schedule for a chat and registers (or replaces) its digest
// job. The store write happens first: a persistence failure surfaces to the
// caller before the job registry changes.
func (m *ScheduleManager) Set(ctx context.Context, chatID int64, hour, minute int) error {
	timeOfDay := text.FormatClock(hour, minute)

	if err := m.store.SaveSchedule(ctx, chatID, timeOfDay); err != nil {
		return fmt.Errorf("failed to persist schedule: %w", err)
	}

	if err := m.scheduler.UpsertDigestJob(chatID, hour, minute); err != nil {
		return fmt.Errorf("failed to register digest job: %w", err)
	}

	m.logger.InfoContext(ctx, "Schedule set", "chat_id", chatID, "time", timeOfDay)
	return nil
}

// Clear removes a chat's schedule and its digest job. Clearing a chat that
// has no schedule completes without error and leaves no job registered.
func (m *ScheduleManager) Clear(ctx context.Context, chatID int64) error {
	if err := m.store.RemoveSchedule(ctx, chatID); err != nil {
		return fmt.Errorf("failed to remove schedule: %w", err)
	}

	m.scheduler.RemoveDigestJob(chatID)

	m.logger.InfoContext(ctx, "Schedule cleared", "chat_id", chatID)
	return nil
}

// Get returns a chat's persisted trigger time as "HH:MM", or ok=false when
// the chat has no schedule.
func (m *ScheduleManager) Get(ctx context.Context, chatID int64) (string, bool, error) {
	schedule, err := m.store.GetSchedule(ctx, chatID)
	if err != nil {
		return "", false, err
	}
	if schedule == nil {
		return "", false, nil
	}
	return schedule.TimeOfDay, true, nil
}

// Restore rebuilds the digest job registry from the schedules table. It is
// called once at startup, before the scheduler starts firing. A row that
// fails to parse or register is logged and skipped so one bad schedule never
// blocks recovery of the rest.
func (m *ScheduleManager) Restore(ctx context.Context) error {
	schedules, err := m.store.ListSchedules(ctx)
	if err != nil {
		return fmt.Errorf("failed to list schedules for recovery: %w", err)
	}

	restored := 0
	for _, schedule := range schedules {
		hour, minute, err := text.ParseClock(schedule.TimeOfDay)
		if err != nil {
			m.logger.ErrorContext(ctx, "Failed to parse persisted schedule, skipping",
				"chat_id", schedule.ChatID, "time_of_day", schedule.TimeOfDay, "error", err)
			continue
		}

		if err := m.scheduler.UpsertDigestJob(schedule.ChatID, hour, minute); err != nil {
			m.logger.ErrorContext(ctx, "Failed to restore digest job, skipping",
				"chat_id", schedule.ChatID, "time_of_day", schedule.TimeOfDay, "error", err)
			continue
		}

		m.logger.InfoContext(ctx, "Restored schedule", "chat_id", schedule.ChatID, "time_of_day", schedule.TimeOfDay)
		restored++
	}

	m.logger.InfoContext(ctx, "Schedule recovery complete", "restored", restored, "total", len(schedules))
	return nil
}
