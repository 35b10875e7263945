package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"hangout/internal/adapters/cron"
	"hangout/internal/adapters/discord"
	"hangout/internal/adapters/httpapi"
	"hangout/internal/application"
	"hangout/internal/config"
	"hangout/internal/infrastructure/database"
	"hangout/internal/infrastructure/i18n"
	"hangout/internal/infrastructure/idgen"
	"hangout/internal/infrastructure/memory"
	"hangout/internal/ports/output"
	"hangout/pkg/tz"
)

func main() {
	if err := run(); err != nil {
		slog.Error("hangoutd stopped", "event", "fatal", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	translator := i18n.NewTranslator(cfg.Locale, logger)
	deps := application.Deps{
		Translator:  translator,
		IDs:         idgen.UUIDGenerator{},
		Tokens:      idgen.TokenGenerator{},
		Locale:      cfg.Locale,
		LinkBaseURL: cfg.LinkBaseURL,
		GuestTTL:    cfg.GuestTTL,
		Logger:      logger,
	}
	var queue output.NotificationQueue

	switch cfg.Storage {
	case config.StorageMemory:
		store := memory.NewStore()
		deps.Hangouts = store
		deps.Profiles = store.Profiles()
		deps.Guests = store.Guests()
		deps.Memberships = store.Memberships()
		deps.Options = store
		deps.Votes = store.Votes()
		deps.Invites = store
		deps.Tx = store
		queue = store
		logger.Warn("using in-memory storage, data is lost on restart", "event", "storage_memory")
	default:
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer pool.Close()
		repos := database.NewRepositories(pool, logger)
		deps.Hangouts = repos.Hangouts
		deps.Profiles = repos.Profiles
		deps.Guests = repos.Guests
		deps.Memberships = repos.Memberships
		deps.Options = repos.Options
		deps.Votes = repos.Votes
		deps.Invites = repos.Invites
		deps.Tx = repos.Tx
		queue = repos.Notifications
	}
	deps.Notifier = queue

	engine := application.NewEngine(deps)
	usecases := engine.UseCases()

	g, ctx := errgroup.WithContext(ctx)

	var deliverer output.Deliverer = cron.LogDeliverer{Logger: logger}
	if cfg.DiscordEnabled() {
		handler := discord.NewHandler(usecases, translator, discord.HandlerOptions{
			DefaultLocale: cfg.Locale,
			LinkBaseURL:   cfg.LinkBaseURL,
			Location:      tz.Paris,
			Logger:        logger,
		})
		bot, err := discord.NewBot(cfg.DiscordToken, cfg.DiscordGuildID, handler, logger)
		if err != nil {
			return err
		}
		deliverer = discord.NewDMNotifier(bot.Session(), usecases.Identity)
		g.Go(func() error { return bot.Start(ctx) })
	}

	if cfg.HTTPEnabled {
		api := httpapi.New(usecases, httpapi.Options{
			JWTSecret:     cfg.JWTSecret,
			DefaultLocale: cfg.Locale,
			Messages:      translator,
			Logger:        logger,
		})
		g.Go(func() error { return api.Run(ctx, cfg.HTTPAddr) })
	}

	scheduler := &cron.Scheduler{
		Hangouts:   usecases.Hangouts,
		Resolution: usecases.Resolution,
		Relay: &cron.OutboxRelay{
			Queue:       queue,
			Deliverer:   deliverer,
			BatchSize:   cfg.OutboxBatch,
			MaxAttempts: cfg.OutboxRetries,
			Logger:      logger,
		},
		Interval: cfg.SweepInterval,
		Logger:   logger,
	}
	g.Go(func() error {
		scheduler.Run(ctx)
		return nil
	})

	logger.Info("hangoutd started",
		"event", "startup",
		"storage", cfg.Storage,
		"http", cfg.HTTPEnabled,
		"discord", cfg.DiscordEnabled(),
	)
	return g.Wait()
}

func logLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo
	}
	return level
}
