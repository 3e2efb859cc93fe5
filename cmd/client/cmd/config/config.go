package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"helpdesk/cmd/client/cmd/types"
	"helpdesk/internal/app/client/config"
)

var (
	serverAddress    string
	enableTLS        bool
	connectivityMode string
	maxAttempts      int
)

// ConfigCmd manages the config file. It never opens the local store.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the client configuration file",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cmd.SetContext(context.WithValue(cmd.Context(), types.ConfigKey, cfg))
		return nil
	},
}

var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write config.toml with the given settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := types.Config(cmd.Context())
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("address") {
			cfg.ServerAddress = serverAddress
		}
		if cmd.Flags().Changed("tls") {
			cfg.EnableTLS = enableTLS
		}
		if cmd.Flags().Changed("mode") {
			cfg.ConnectivityMode = connectivityMode
		}
		if cmd.Flags().Changed("max-attempts") {
			cfg.MaxAttempts = maxAttempts
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := cfg.WriteFile(cfg.ConfigFile); err != nil {
			return err
		}
		fmt.Printf("Configuration written to %s\n", cfg.ConfigFile)
		return nil
	},
}

var TokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Store the API token in config.toml",
	Long:  `Token asks for the API token without echoing it and stores it in config.toml.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := types.Config(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Print("API token: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		token := strings.TrimSpace(string(raw))
		if token == "" {
			return fmt.Errorf("token must not be empty")
		}

		cfg.APIToken = token
		if err := cfg.WriteFile(cfg.ConfigFile); err != nil {
			return err
		}
		fmt.Println("Token saved")
		return nil
	},
}

var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := types.Config(cmd.Context())
		if err != nil {
			return err
		}

		token := "(none)"
		if cfg.APIToken != "" {
			token = "(set)"
		}
		fmt.Printf("config file:       %s\n", cfg.ConfigFile)
		fmt.Printf("server:            %s\n", cfg.BaseURL())
		fmt.Printf("api token:         %s\n", token)
		fmt.Printf("data path:         %s\n", cfg.DataPath)
		fmt.Printf("connectivity mode: %s every %ds\n", cfg.ConnectivityMode, cfg.ProbeInterval)
		fmt.Printf("max attempts:      %d\n", cfg.MaxAttempts)
		return nil
	},
}

func init() {
	InitCmd.Flags().StringVar(&serverAddress, "address", "", "server address, host:port")
	InitCmd.Flags().BoolVar(&enableTLS, "tls", false, "use https and wss")
	InitCmd.Flags().StringVar(&connectivityMode, "mode", config.ModeProbe, "probe or stream")
	InitCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "abandon a write after this many failures, 0 keeps trying")

	ConfigCmd.AddCommand(InitCmd, TokenCmd, ShowCmd)
}
