package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/OnTrak-Tech/TaskBuddy/config"
	"github.com/OnTrak-Tech/TaskBuddy/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logStartupInfo(ctx, logger, &cfg)

	redisClient, err := bootstrap.ConnectRedis(cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	registry, provider, err := bootstrap.BuildStoreRegistry(ctx, bootstrap.AuthDeps{
		Auth:        cfg.Auth,
		RedisClient: redisClient,
		TokenTTL:    cfg.Redis.TokenTTL,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	api, err := bootstrap.BuildAPIClient(cfg.API, provider)
	if err != nil {
		return err
	}

	server := bootstrap.StartHTTPServer(&bootstrap.HTTPServerConfig{
		Config:   &cfg,
		Registry: registry,
		API:      api,
		Logger:   logger,
	})

	// Wait for shutdown signal
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	return bootstrap.ShutdownHTTPServer(ctx, server, logger)
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting taskbuddy gateway",
		"auth_mode", cfg.Auth.Mode,
		"api_endpoint", cfg.API.BaseEndpoint,
		"addr", cfg.HTTP.Addr,
		"dev", cfg.IsDev)
}
