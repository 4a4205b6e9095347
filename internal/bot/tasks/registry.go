package tasks

import (
	"context"
)

// ScheduledTaskFunc defines the standard signature for all background tasks.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks initializes and returns a map of all registered background
// tasks. The keys match the task names used in the scheduler section of the
// config file.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	tasks["sql_maintenance"] = newSQLMaintenanceTask(deps)

	deps.Logger.Info("Initialized background tasks", "count", len(tasks))
	return tasks
}
