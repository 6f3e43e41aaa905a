package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"notevault/internal/app/server/api"
	"notevault/internal/config"
	"notevault/internal/domain/replication"
	"notevault/internal/infrastructure/storage/sqlite"
	"notevault/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	log.Info("starting notevault server",
		slog.String("env", cfg.Env),
		slog.String("address", cfg.Server.RunAddress),
		slog.String("server_name", cfg.Replication.ServerName),
	)

	if err := run(cfg, log); err != nil {
		log.Error("server terminated", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	storage, err := sqlite.New(cfg.DB.Path, cfg.DB.Migrations)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := storage.Close(); closeErr != nil {
			log.Error("failed to close storage", slog.String("error", closeErr.Error()))
		}
	}()

	engine := replication.NewEngine(
		sqlite.NewSyncRepository(storage, logger.Replication(log)),
		replication.EngineConfig{
			ServerName: cfg.Replication.ServerName,
			PeerURL:    cfg.Replication.PeerURL,
			Secret:     cfg.Replication.InternalSecret,
			Interval:   cfg.Replication.SyncInterval,
			Timeout:    cfg.Replication.SyncTimeout,
		},
		logger.Replication(log),
	)

	server := &http.Server{
		Addr:    cfg.Server.RunAddress,
		Handler: api.New(storage, engine, log),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine.Start()
	defer engine.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("address", cfg.Server.RunAddress))
		if serveErr := server.ListenAndServe(); !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
