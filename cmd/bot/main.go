package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/tutien/tutienbot/configs"
	"github.com/tutien/tutienbot/internal/catalog"
	"github.com/tutien/tutienbot/internal/concurrency"
	"github.com/tutien/tutienbot/internal/config"
	"github.com/tutien/tutienbot/internal/crafting"
	"github.com/tutien/tutienbot/internal/cultivation"
	"github.com/tutien/tutienbot/internal/database"
	"github.com/tutien/tutienbot/internal/database/postgres"
	"github.com/tutien/tutienbot/internal/discord"
	"github.com/tutien/tutienbot/internal/economy"
	"github.com/tutien/tutienbot/internal/event"
	"github.com/tutien/tutienbot/internal/ladder"
	"github.com/tutien/tutienbot/internal/logger"
	"github.com/tutien/tutienbot/internal/server"
	"github.com/tutien/tutienbot/internal/user"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogger(cfg)

	cat, err := catalog.Load(configs.Items)
	if err != nil {
		return err
	}
	lad, err := ladder.Load(configs.Ladder)
	if err != nil {
		return err
	}

	pool, err := database.NewPool(cfg.GetDBConnString(),
		database.DefaultMaxConnections, database.DefaultMaxIdleTime, database.DefaultMaxLifetime)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := postgres.NewUserRepository(pool)
	bus := event.NewMemoryBus()
	locks := concurrency.NewLockManager()
	seed := time.Now().UnixNano()

	users := user.NewService(repo, lad)
	cultivationSvc := cultivation.NewService(repo, users, lad, cat, bus, locks, seed)

	book, err := crafting.LoadRecipes(configs.Recipes, cat)
	if err != nil {
		return err
	}
	craftingSvc := crafting.NewService(repo, users, book, cat, bus, locks, seed+1)
	economySvc := economy.NewService(repo, users, cat, locks)

	bonus := discord.NewBonusResolver(cfg.BoosterRoleID, cfg.BoosterBonusPct, cfg.VIPRoleBonuses)
	bot, err := discord.New(cfg, discord.Deps{
		Cultivation: cultivationSvc,
		Crafting:    craftingSvc,
		Economy:     economySvc,
		Users:       users,
		Catalog:     cat,
		Bonus:       bonus,
	})
	if err != nil {
		return err
	}
	bot.SubscribeAnnouncements(bus)

	srv := server.NewServer(cfg.Port, cfg.APIKey, pool, users, cultivationSvc)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server stopped", "error", err)
		}
	}()

	ctx := context.Background()
	err = bot.Run(ctx)

	if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
		slog.Error("HTTP server shutdown failed", "error", shutdownErr)
	}
	return err
}

func initLogger(cfg *config.Config) {
	addSource := cfg.Environment == "dev" || cfg.Environment == "development"
	logger.InitLogger(logger.NewConfig(
		cfg.LogLevel,
		cfg.LogFormat,
		cfg.ServiceName,
		cfg.Version,
		cfg.Environment,
		addSource,
	))
}
