package types

import (
	"context"
	"errors"

	"helpdesk/internal/app/client"
	"helpdesk/internal/app/client/config"
)

type contextKey string

const (
	ClientAppKey contextKey = "app"
	ConfigKey    contextKey = "config"
)

var ErrNotInitialized = errors.New("application is not initialized")

// App returns the client App stored by the root command.
func App(ctx context.Context) (*client.App, error) {
	app, ok := ctx.Value(ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}

// Config returns the configuration stored by the root command.
func Config(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(ConfigKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, ErrNotInitialized
	}
	return cfg, nil
}
