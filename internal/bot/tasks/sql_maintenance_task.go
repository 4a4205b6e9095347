package tasks

import (
	"context"
	"fmt"
	"time"
)

// newSQLMaintenanceTask creates the background task that runs database
// maintenance. The message log is append-only with no eviction, so periodic
// VACUUM keeps the database file from growing past its live data.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting SQL maintenance task...")
		startTime := time.Now()

		err := deps.Store.RunSQLMaintenance(ctx)

		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "SQL maintenance task failed", "error", err, "duration", duration)
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "SQL maintenance task completed successfully", "duration", duration)
		return nil
	}
}
