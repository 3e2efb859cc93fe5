package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URI", "postgres://localhost/helpdesk")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, ":8080", cfg.Server.RunAddress)
	assert.Equal(t, "migrations", cfg.DB.Migrations)
	assert.Equal(t, 5*time.Second, cfg.Server.HeartbeatInterval)
	assert.Empty(t, cfg.Auth.APITokenHash)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DATABASE_URI", "postgres://db/helpdesk")
	t.Setenv("RUN_ADDRESS", ":9000")
	t.Setenv("HEARTBEAT_INTERVAL_SECONDS", "2")
	t.Setenv("API_TOKEN_HASH", "$2a$10$abc")
	t.Setenv("APP_ENV", EnvProd)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.RunAddress)
	assert.Equal(t, 2*time.Second, cfg.Server.HeartbeatInterval)
	assert.Equal(t, "$2a$10$abc", cfg.Auth.APITokenHash)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Env:    EnvDev,
		DB:     DB{DatabaseURI: "postgres://db"},
		Server: Server{HeartbeatInterval: time.Second},
	}
	assert.NoError(t, valid.Validate())

	inMemory := valid
	inMemory.DB.DatabaseURI = ""
	assert.NoError(t, inMemory.Validate())

	prodInMemory := inMemory
	prodInMemory.Env = EnvProd
	prodInMemory.Auth.APITokenHash = "$2a$10$abc"
	assert.Error(t, prodInMemory.Validate())

	prodWithoutAuth := valid
	prodWithoutAuth.Env = EnvProd
	assert.Error(t, prodWithoutAuth.Validate())
}
