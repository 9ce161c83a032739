package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sessionworks/authcore/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, config.StorePostgres, cfg.Store.Backend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
	assert.Contains(t, cfg.Database.ConnectionString(), "dbname=authcore")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("STORE_BACKEND", config.StoreMemory)
	t.Setenv("TRUSTED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("SERVER_READ_TIMEOUT", "30")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.Server.IsDevelopment())
	assert.Equal(t, config.StoreMemory, cfg.Store.Backend)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.TrustedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "cassandra")

	_, err := config.Load()
	assert.Error(t, err)
}
