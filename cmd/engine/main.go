package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"dirsubmit/internal/adapter/repo"
	"dirsubmit/internal/automation/remote"
	"dirsubmit/internal/dirconfig"
	"dirsubmit/internal/engine/dispatch"
	"dirsubmit/internal/engine/executor"
	"dirsubmit/internal/engine/progress"
	"dirsubmit/internal/engine/queue"
	"dirsubmit/internal/engine/retry"
	"dirsubmit/internal/formfill"
	"dirsubmit/internal/infra"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "engine")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("engine: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	store := repo.NewJobStore(runner)

	if cfg.AutomationURL == "" {
		logger.Fatal().Msg("engine: AUTOMATION_BASE_URL is required")
	}
	session, err := remote.NewClient(remote.Options{BaseURL: cfg.AutomationURL, Logger: &logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("engine: automation backend misconfigured")
	}

	profiles := dirconfig.NewRegistry()
	loaded, err := dirconfig.LoadDir(cfg.ProfileDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.ProfileDir).Msg("engine: profile load failed")
	}
	profiles.Replace(loaded)
	logger.Info().Int("profiles", profiles.Len()).Msg("engine: directory profiles loaded")

	retryCtl := retry.NewController(store, logger)
	filler := formfill.NewFiller(logger)
	exec := executor.New(store, session, profiles, retryCtl, filler, logger)
	aggregator := progress.NewAggregator(store, logger)
	selector := queue.NewSelector(store, logger)
	registry := dispatch.NewTokenRegistry(cfg.MaxConcurrency)
	coordinator := dispatch.NewCoordinator(selector, registry, exec, aggregator, store, logger, dispatch.Options{
		Interval:    cfg.DispatchInterval,
		SelectLimit: cfg.SelectLimit,
	})
	sweeper := dispatch.NewSweeper(registry, cfg.SweepInterval, cfg.StaleTimeout, logger)
	watcher := dirconfig.NewWatcher(cfg.ProfileDir, profiles, logger)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return coordinator.Run(groupCtx) })
	group.Go(func() error { return sweeper.Run(groupCtx) })
	group.Go(func() error { return watcher.Run(groupCtx) })

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("engine: stopped with error")
	}
	logger.Info().Msg("engine: stopped")
}
