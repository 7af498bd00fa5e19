package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"HUB_HOST", "HUB_PORT", "ZONES", "LOW_STOCK_THRESHOLD", "READ_BUFFER_SIZE", "IDLE_TIMEOUT", "RATE_LIMIT", "LOG_LEVEL", "LOG_FORMAT", "REDIS_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HubPort)
	assert.Equal(t, []string{"A", "B"}, cfg.Zones)
	assert.Equal(t, 3, cfg.LowStockThreshold)
	assert.Equal(t, 1024, cfg.ReadBufferSize)
	assert.Equal(t, time.Duration(0), cfg.IdleTimeout)
	assert.Zero(t, cfg.RateLimit)
	assert.True(t, cfg.EvictWorkerOnDisconnect)
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("HUB_PORT", "9090")
	t.Setenv("ZONES", " North , South,, East ")
	t.Setenv("IDLE_TIMEOUT", "30s")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("EVICT_WORKER_ON_DISCONNECT", "false")
	t.Setenv("REDIS_URL", "redis://cache:6379")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HubPort)
	assert.Equal(t, []string{"North", "South", "East"}, cfg.Zones)
	assert.Equal(t, 30*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.False(t, cfg.EvictWorkerOnDisconnect)
	assert.Equal(t, "cache:6379", cfg.RedisAddr())
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("HUB_PORT", "eighty")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "HUB_PORT")

	t.Setenv("HUB_PORT", "")
	t.Setenv("IDLE_TIMEOUT", "soon")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "IDLE_TIMEOUT")
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		HubPort:               70000,
		Zones:                 []string{"A:1"},
		LowStockThreshold:     -1,
		ReadBufferSize:        16,
		RateLimit:             1,
		RateBurst:             0,
		WarehousePollInterval: time.Second,
		LogLevel:              "verbose",
		LogFormat:             "xml",
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"HUB_PORT", "':'", "LOW_STOCK_THRESHOLD", "READ_BUFFER_SIZE", "RATE_BURST", "LOG_LEVEL", "LOG_FORMAT"} {
		assert.Contains(t, err.Error(), want)
	}
}
