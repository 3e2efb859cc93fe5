package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"helpdesk/internal/app/server/api"
	"helpdesk/internal/app/server/config"
	"helpdesk/internal/infrastructure/storage"
	"helpdesk/internal/infrastructure/storage/memory"
	"helpdesk/internal/infrastructure/storage/postgres"
	"helpdesk/internal/utils/logger"
)

func main() {
	cfg := config.MustLoad()
	log := logger.WithLevel(cfg.Env, cfg.Logger.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	router := api.New(api.Deps{
		Documents:         store,
		DB:                store,
		APITokenHash:      cfg.Auth.APITokenHash,
		HeartbeatInterval: cfg.Server.HeartbeatInterval,
	}, log)

	srv := &http.Server{
		Addr:              cfg.Server.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "address", cfg.Server.RunAddress, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	if cfg.DB.DatabaseURI == "" {
		log.Warn("DATABASE_URI is empty, keeping documents in memory")
		return memory.New(), nil
	}
	pg, err := postgres.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return postgres.NewDocuments(pg, log), nil
}
