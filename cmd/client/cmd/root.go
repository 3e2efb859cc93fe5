package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"helpdesk/cmd/client/cmd/types"
	"helpdesk/internal/app/client"
	"helpdesk/internal/app/client/config"
	"helpdesk/internal/app/client/notify"
	"helpdesk/internal/utils/logger"
)

var (
	debug     bool
	serverURL string
	app       *client.App
)

var rootCmd = &cobra.Command{
	Use:   "helpdesk",
	Short: "Helpdesk - ticket client that keeps working offline",
	Long: `Helpdesk creates tickets, replies, notes and status changes.

While the server is unreachable every write is kept in a local queue and
synced once the connection is back, either by "helpdesk sync" or by a
running "helpdesk watch".`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	err := rootCmd.Execute()
	if app != nil {
		if cerr := app.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", cerr)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}
	return cfg, nil
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	log := logger.WithLevel(cfg.Env, level)

	ctx := cmd.Context()
	app, err = client.New(ctx, cfg, log, notify.NewConsole(os.Stdout))
	if err != nil {
		return fmt.Errorf("init application: %w", err)
	}

	ctx = context.WithValue(ctx, types.ConfigKey, cfg)
	cmd.SetContext(context.WithValue(ctx, types.ClientAppKey, app))
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server address, host:port")
}
