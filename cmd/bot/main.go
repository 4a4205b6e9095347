// Package main contains the entrypoint for the tldrbot Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/joho/godotenv"

	"github.com/tldrbot/tldrbot/internal/bot"
	"github.com/tldrbot/tldrbot/internal/bot/handlers"
	"github.com/tldrbot/tldrbot/internal/bot/tasks"
	"github.com/tldrbot/tldrbot/internal/config"
	"github.com/tldrbot/tldrbot/internal/database"
	"github.com/tldrbot/tldrbot/internal/gemini"
	"github.com/tldrbot/tldrbot/internal/logger"
	"github.com/tldrbot/tldrbot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// ai client, telegram bot, scheduler), restores persisted schedules, handles
// graceful shutdown, and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	// A missing .env file is fine, environment variables still apply
	_ = godotenv.Load()

	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}

	taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	})

	// The digest callback is bound after the Telegram bot exists, since
	// delivery needs it. The scheduler does not fire until bot.Run starts it.
	var digester *bot.Digester
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap, func(ctx context.Context, chatID int64) {
		digester.RunScheduledDigest(ctx, chatID)
	})
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	schedules := bot.NewScheduleManager(log, store, sched)

	hDeps := handlers.HandlerDeps{
		Logger:       log,
		Config:       cfg,
		Store:        store,
		GeminiClient: gemClient,
		Schedules:    schedules,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewListenHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	// Retrieve bot info and store it in the config for runtime use
	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	cfg.Telegram.BotInfo = config.BotInfo{ID: me.ID, Username: me.Username, FirstName: me.FirstName}
	log.Info("Retrieved bot info", "bot_id", me.ID, "bot_username", me.Username)

	digester = bot.NewDigester(log, store, gemClient, tg, cfg.Digest.ScheduledHours)
	hDeps.Digester = digester

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	// Rebuild the digest job registry from the schedules table before the
	// scheduler starts firing
	if err := schedules.Restore(ctx); err != nil {
		log.Error("Failed to restore persisted schedules", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, db, store, gemClient, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
