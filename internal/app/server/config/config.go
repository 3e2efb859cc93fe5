package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env    string
	DB     DB
	Server Server
	Logger Logger
	Auth   Auth
}

// DB without a DatabaseURI makes the server keep documents in memory.
type DB struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type Server struct {
	RunAddress        string        `env:"RUN_ADDRESS"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL_SECONDS"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT_SECONDS"`
}

type Logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Auth holds the bcrypt hash of the single API token clients present.
// An empty hash disables authentication.
type Auth struct {
	APITokenHash string `env:"API_TOKEN_HASH"`
}

// MustLoad reads the server configuration and exits when it is unusable.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return cfg
}

func Load() (*Config, error) {
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", envPath, err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("app_env", EnvLocal)
	v.SetDefault("run_address", ":8080")
	v.SetDefault("migrations_path", "migrations")
	v.SetDefault("log_level", "info")
	v.SetDefault("heartbeat_interval_seconds", 5)
	v.SetDefault("shutdown_timeout_seconds", 10)

	cfg := &Config{
		Env: v.GetString("app_env"),
		DB: DB{
			DatabaseURI: v.GetString("database_uri"),
			Migrations:  v.GetString("migrations_path"),
		},
		Server: Server{
			RunAddress:        v.GetString("run_address"),
			HeartbeatInterval: time.Duration(v.GetInt("heartbeat_interval_seconds")) * time.Second,
			ShutdownTimeout:   time.Duration(v.GetInt("shutdown_timeout_seconds")) * time.Second,
		},
		Logger: Logger{LogLevel: v.GetString("log_level")},
		Auth:   Auth{APITokenHash: v.GetString("api_token_hash")},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DB.DatabaseURI == "" && c.Env == EnvProd {
		return errors.New("DATABASE_URI is required in prod")
	}
	if c.Server.HeartbeatInterval <= 0 {
		return errors.New("HEARTBEAT_INTERVAL_SECONDS must be positive")
	}
	if c.Env == EnvProd && c.Auth.APITokenHash == "" {
		return errors.New("API_TOKEN_HASH is required in prod")
	}
	return nil
}
