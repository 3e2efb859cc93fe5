package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/exp/slog"

	"helpdesk/internal/app/client/config"
	"helpdesk/internal/app/client/connectivity"
	"helpdesk/internal/app/client/notify"
	"helpdesk/internal/app/client/remote"
	"helpdesk/internal/app/client/store"
)

// App wires the local store, the remote store and the sync service of one
// client process.
type App struct {
	config    *config.Config
	log       *slog.Logger
	persister store.Persister
	store     *store.Store
	remote    *remote.HTTPClient
	monitor   connectivity.Monitor
	notifier  notify.Notifier
	sync      *SyncService
	tickets   *TicketService
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger, notifier notify.Notifier) (*App, error) {
	persister, err := store.NewSQLitePersister(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	st, err := store.New(ctx, persister, log)
	if err != nil {
		_ = persister.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}

	rs := remote.NewHTTPClient(remote.HTTPOptions{
		BaseURL:    cfg.BaseURL(),
		Token:      cfg.APIToken,
		WriteRate:  cfg.WriteRate,
		WriteBurst: cfg.WriteBurst,
	}, log)

	var monitor connectivity.Monitor
	switch cfg.ConnectivityMode {
	case config.ModeStream:
		monitor = connectivity.NewStream(connectivity.StreamOptions{
			URL:              cfg.StreamURL(),
			Token:            cfg.APIToken,
			HeartbeatTimeout: 3 * time.Duration(cfg.ProbeInterval) * time.Second,
		}, log)
	default:
		monitor = connectivity.NewProbe(rs, time.Duration(cfg.ProbeInterval)*time.Second, log)
	}

	app := &App{
		config:    cfg,
		log:       log,
		persister: persister,
		store:     st,
		remote:    rs,
		monitor:   monitor,
		notifier:  notifier,
	}
	app.sync = NewSyncService(st, rs, monitor, notifier, log, SyncOptions{MaxAttempts: cfg.MaxAttempts})
	app.tickets = NewTicketService(st, rs, notifier, log, nil)

	return app, nil
}

func (a *App) Config() *config.Config { return a.config }
func (a *App) Store() *store.Store { return a.store }
func (a *App) Sync() *SyncService { return a.sync }
func (a *App) Tickets() *TicketService { return a.tickets }
func (a *App) Notifier() notify.Notifier { return a.notifier }
func (a *App) Remote() *remote.HTTPClient { return a.remote }

// CheckOnline asks the server directly. Commands that run once use it
// instead of waiting for the monitor.
func (a *App) CheckOnline(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.remote.HealthCheck(ctx); err != nil {
		a.log.Debug("server unreachable", "error", err)
		return false
	}
	return true
}

// Logout drops every local ticket and forgets the API token.
func (a *App) Logout() error {
	a.sync.Stop()
	a.sync.Wait()
	if err := a.store.ClearAll(); err != nil {
		return fmt.Errorf("clear local tickets: %w", err)
	}

	a.config.APIToken = ""
	if _, err := os.Stat(a.config.ConfigFile); err == nil {
		if err := a.config.WriteFile(a.config.ConfigFile); err != nil {
			return fmt.Errorf("forget token: %w", err)
		}
	}
	a.log.Info("logged out, local tickets cleared")
	return nil
}

// Close stops the sync service, waits for running drains and releases the
// monitor and the database.
func (a *App) Close() error {
	a.sync.Stop()
	a.sync.Wait()

	var errs []error
	if c, ok := a.monitor.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := a.persister.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
