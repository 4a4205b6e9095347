package handlers

import (
	"log/slog"

	"github.com/tldrbot/tldrbot/internal/bot"
	"github.com/tldrbot/tldrbot/internal/config"
	"github.com/tldrbot/tldrbot/internal/database"
	"github.com/tldrbot/tldrbot/internal/gemini"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger       *slog.Logger
	Config       *config.Config
	Store        database.Store
	GeminiClient gemini.Client
	Digester     *bot.Digester
	Schedules    *bot.ScheduleManager
}
