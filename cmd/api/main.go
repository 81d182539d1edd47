package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"dirsubmit/internal/adapter/repo"
	"dirsubmit/internal/http/handlers"
	"dirsubmit/internal/http/httpapi"
	"dirsubmit/internal/infra"
	"dirsubmit/internal/reporting"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	store := repo.NewJobStore(runner)

	cache, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("api: redis unavailable, snapshot cache disabled")
		cache = nil
	}
	if cache != nil {
		defer cache.Close()
	}

	reportingSvc := reporting.NewService(store, cache, cfg.SnapshotTTL, logger)
	app := handlers.NewApp(store, reportingSvc, logger)
	router := httpapi.NewRouter(app, logger)
	server := infra.NewHTTPServer(cfg, router)

	logger.Info().Str("addr", server.Addr()).Msg("api listening")
	if err := server.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("api: http server failed")
	}
	logger.Info().Msg("api: stopped")
}
