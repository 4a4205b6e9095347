package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/tldrbot/tldrbot/internal/bot/tasks"
	"github.com/tldrbot/tldrbot/internal/config"
)

// DigestFunc is the callback invoked when a chat's daily digest job fires.
// Implementations must not panic; errors are handled internally so a failed
// run never deregisters the job.
type DigestFunc func(ctx context.Context, chatID int64)

// Scheduler manages the per-chat daily digest jobs and config-driven
// background tasks using the gocron library. The in-memory job registry is a
// derived cache of the schedules table: it is rebuilt from the store at
// startup and every mutation goes through remove-then-add, so at most one
// live job exists per chat at any time.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       *config.SchedulerConfig
	taskMap   map[string]tasks.ScheduledTaskFunc
	digestFn  DigestFunc

	mu      sync.Mutex
	jobs    map[int64]uuid.UUID // chat_id -> live digest job
	running bool
}

// NewScheduler creates a new scheduler instance using gocron. All digest jobs
// fire at UTC wall-clock times, so the underlying scheduler is pinned to UTC.
func NewScheduler(logger *slog.Logger, cfg *config.SchedulerConfig, taskMap map[string]tasks.ScheduledTaskFunc, digestFn DigestFunc) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "scheduler")

	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    log,
		cfg:       cfg,
		taskMap:   taskMap,
		digestFn:  digestFn,
		jobs:      make(map[int64]uuid.UUID),
	}, nil
}

// UpsertDigestJob registers a daily digest job for a chat at the given UTC
// hour and minute, replacing any existing job for that chat. The
// remove-then-add sequence is what guarantees a chat can never double-fire:
// the old job is always gone before the new one exists.
func (s *Scheduler) UpsertDigestJob(chatID int64, hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid trigger time %02d:%02d for chat %d", hour, minute, chatID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if oldID, exists := s.jobs[chatID]; exists {
		if err := s.scheduler.RemoveJob(oldID); err != nil {
			s.logger.Warn("Failed to remove existing digest job before replacing it", "chat_id", chatID, "job_id", oldID, "error", err)
		}
		delete(s.jobs, chatID)
	}

	job, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0))),
		gocron.NewTask(
			func(ctx context.Context, id int64) {
				s.logger.Info("Running scheduled digest", "chat_id", id)
				startTime := time.Now()
				s.digestFn(ctx, id)
				s.logger.Info("Finished scheduled digest", "chat_id", id, "duration", time.Since(startTime))
			},
			context.Background(),
			chatID,
		),
		gocron.WithName(fmt.Sprintf("digest_%d", chatID)),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule digest job for chat %d: %w", chatID, err)
	}

	s.jobs[chatID] = job.ID()
	s.logger.Info("Scheduled daily digest", "chat_id", chatID, "time", fmt.Sprintf("%02d:%02d", hour, minute))
	return nil
}

// RemoveDigestJob removes the digest job for a chat if one exists. Removing a
// job that was never registered is a no-op.
func (s *Scheduler) RemoveDigestJob(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobID, exists := s.jobs[chatID]
	if !exists {
		s.logger.Debug("No digest job to remove", "chat_id", chatID)
		return
	}

	if err := s.scheduler.RemoveJob(jobID); err != nil {
		s.logger.Warn("Failed to remove digest job", "chat_id", chatID, "job_id", jobID, "error", err)
	}
	delete(s.jobs, chatID)
	s.logger.Info("Removed daily digest", "chat_id", chatID)
}

// HasDigestJob reports whether a chat currently has a live digest job.
func (s *Scheduler) HasDigestJob(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.jobs[chatID]
	return exists
}

// DigestJobCount returns the number of live digest jobs.
func (s *Scheduler) DigestJobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Start registers all enabled config-driven tasks and starts the scheduler's
// internal ticking. Digest jobs registered before Start begin firing once it
// is called.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	scheduledCount := 0
	if s.cfg != nil {
		for taskName, taskConfig := range s.cfg.Tasks {
			if !taskConfig.Enabled {
				s.logger.Info("Skipping disabled task", "task_name", taskName)
				continue
			}

			taskFunc, exists := s.taskMap[taskName]
			if !exists {
				s.logger.Warn("Scheduled task configured but not found in registry, skipping", "task_name", taskName)
				continue
			}

			if taskConfig.Schedule == "" {
				s.logger.Warn("Scheduled task enabled but has empty schedule, skipping", "task_name", taskName)
				continue
			}

			_, err := s.scheduler.NewJob(
				gocron.CronJob(taskConfig.Schedule, false),
				gocron.NewTask(
					func(ctx context.Context, name string) {
						s.logger.Info("Running scheduled task", "task_name", name)
						startTime := time.Now()
						if taskErr := taskFunc(ctx); taskErr != nil {
							s.logger.Error("Scheduled task failed", "task_name", name, "error", taskErr)
						}
						s.logger.Info("Finished scheduled task", "task_name", name, "duration", time.Since(startTime))
					},
					context.Background(),
					taskName,
				),
				gocron.WithName(taskName),
			)
			if err != nil {
				s.logger.Error("Failed to schedule task", "task_name", taskName, "schedule", taskConfig.Schedule, "error", err)
				continue
			}

			s.logger.Info("Scheduled task", "task_name", taskName, "schedule", taskConfig.Schedule)
			scheduledCount++
		}
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "digest_jobs", len(s.jobs), "tasks_scheduled", scheduledCount)

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs to complete.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.logger.Info("Scheduler is not running, nothing to stop.")
		return nil
	}

	s.logger.Debug("Stopping scheduler gracefully (waiting for jobs)...")
	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully.")
	}

	s.running = false
	return err
}
