package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ramory-l/roomcast/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "roomcast", cfg.ServiceName)
	require.Equal(t, ":3000", cfg.Addr)
	require.Equal(t, 25*time.Second, cfg.PingInterval)
	require.Equal(t, 20*time.Second, cfg.PingTimeout)
	require.EqualValues(t, 1000000, cfg.MaxPayload)
	require.Equal(t, "roomcast:", cfg.RedisChannelPrefix)
	require.False(t, cfg.DedupRooms)
	require.Empty(t, cfg.Origins())
	require.Zero(t, cfg.EventRate)
	require.Equal(t, 20, cfg.EventBurst)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("NODE_ID", "node-1")
	t.Setenv("PING_INTERVAL", "5s")
	t.Setenv("DEDUP_ROOMS", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,,")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.Addr)
	require.Equal(t, "node-1", cfg.NodeID)
	require.Equal(t, 5*time.Second, cfg.PingInterval)
	require.True(t, cfg.DedupRooms)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
	require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]struct {
		key, value string
	}{
		"zero max payload": {"MAX_PAYLOAD", "0"},
		"negative ping":    {"PING_TIMEOUT", "-1s"},
		"unknown format":   {"LOG_FORMAT", "xml"},
		"zero burst":       {"EVENT_BURST", "0"},
		"bad redis url":    {"REDIS_URL", "not a url"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestLoad_Unparseable(t *testing.T) {
	t.Setenv("PING_INTERVAL", "soon")

	_, err := config.Load()
	require.Error(t, err)
}
