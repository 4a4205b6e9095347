// Package tasks implements config-driven background tasks for tldrbot, along
// with their registration mechanism.
package tasks

import (
	"log/slog"

	"github.com/tldrbot/tldrbot/internal/config"
	"github.com/tldrbot/tldrbot/internal/database"
)

// TaskDeps contains all dependencies required by background tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
