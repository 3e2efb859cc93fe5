package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultLogLevel      = "info"
	defaultEnv           = "local"
	defaultConfigDir     = ".helpdesk"
	defaultConfigFile    = "config.toml"
	defaultDataFile      = "helpdesk.db"

	ModeProbe  = "probe"
	ModeStream = "stream"
)

type Config struct {
	Env              string  `mapstructure:"app_env" toml:"app_env"`
	ServerAddress    string  `mapstructure:"server_address" toml:"server_address"`
	EnableTLS        bool    `mapstructure:"enable_tls" toml:"enable_tls"`
	APIToken         string  `mapstructure:"api_token" toml:"api_token,omitempty"`
	ConfigDir        string  `mapstructure:"config_dir" toml:"-"`
	ConfigFile       string  `mapstructure:"-" toml:"-"`
	DataPath         string  `mapstructure:"data_path" toml:"data_path"`
	LogLevel         string  `mapstructure:"log_level" toml:"log_level"`
	ConnectivityMode string  `mapstructure:"connectivity_mode" toml:"connectivity_mode"`
	ProbeInterval    int     `mapstructure:"probe_interval_seconds" toml:"probe_interval_seconds"`
	MaxAttempts      int     `mapstructure:"max_attempts" toml:"max_attempts"`
	WriteRate        float64 `mapstructure:"write_rate" toml:"write_rate"`
	WriteBurst       int     `mapstructure:"write_burst" toml:"write_burst"`
}

// MustLoad reads .env, the optional config.toml in the config directory and
// env vars. Env vars win over the file.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

func Load() (*Config, error) {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("failed to load .env: %v\n", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app_env", defaultEnv)
	v.SetDefault("server_address", defaultServerAddress)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("config_dir", defaultConfigDir)
	v.SetDefault("enable_tls", false)
	v.SetDefault("connectivity_mode", ModeProbe)
	v.SetDefault("probe_interval_seconds", 10)
	v.SetDefault("max_attempts", 0)
	v.SetDefault("write_rate", 5.0)
	v.SetDefault("write_burst", 5)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := v.GetString("config_dir")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	configFile := filepath.Join(configDir, defaultConfigFile)
	v.SetConfigFile(configFile)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", configFile, err)
		}
	}

	dataPath := v.GetString("data_path")
	if dataPath == "" {
		dataPath = filepath.Join(configDir, defaultDataFile)
	}

	cfg := &Config{
		Env:              v.GetString("app_env"),
		ServerAddress:    v.GetString("server_address"),
		EnableTLS:        v.GetBool("enable_tls"),
		APIToken:         v.GetString("api_token"),
		ConfigDir:        configDir,
		ConfigFile:       configFile,
		DataPath:         dataPath,
		LogLevel:         v.GetString("log_level"),
		ConnectivityMode: v.GetString("connectivity_mode"),
		ProbeInterval:    v.GetInt("probe_interval_seconds"),
		MaxAttempts:      v.GetInt("max_attempts"),
		WriteRate:        v.GetFloat64("write_rate"),
		WriteBurst:       v.GetInt("write_burst"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerAddress == "" {
		return errors.New("server_address must not be empty")
	}
	switch c.ConnectivityMode {
	case ModeProbe, ModeStream:
	default:
		return fmt.Errorf("unknown connectivity_mode %q", c.ConnectivityMode)
	}
	if c.ProbeInterval <= 0 {
		return errors.New("probe_interval_seconds must be positive")
	}
	if c.MaxAttempts < 0 {
		return errors.New("max_attempts must not be negative")
	}
	return nil
}

// BaseURL is the http(s) root of the document server.
func (c *Config) BaseURL() string {
	if c.EnableTLS {
		return "https://" + c.ServerAddress
	}
	return "http://" + c.ServerAddress
}

// StreamURL is the websocket root of the document server.
func (c *Config) StreamURL() string {
	if c.EnableTLS {
		return "wss://" + c.ServerAddress
	}
	return "ws://" + c.ServerAddress
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}
