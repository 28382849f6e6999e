package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{
		Telegram: TelegramConfig{Token: "123:abc", OwnerID: 42, RunMode: "polling"},
		RateLimit: RateLimitConfig{
			ExcludeUpdates: []string{" Callback ", ""},
		},
		Metrics: MetricsConfig{Listen: ":9090"},
	}
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, "callback", cfg.RateLimit.ExcludeUpdates[0])
	assert.Equal(t, 1, cfg.RateLimit.Burst)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing token", cfg: Config{Telegram: TelegramConfig{OwnerID: 1}}},
		{name: "missing owner", cfg: Config{Telegram: TelegramConfig{Token: "t"}}},
		{name: "webhook without url", cfg: Config{Telegram: TelegramConfig{Token: "t", OwnerID: 1, RunMode: "webhook"}}},
		{name: "unknown mode", cfg: Config{Telegram: TelegramConfig{Token: "t", OwnerID: 1, RunMode: "carrier-pigeon"}}},
		{
			name: "bad exclusion",
			cfg: Config{
				Telegram:  TelegramConfig{Token: "t", OwnerID: 1},
				RateLimit: RateLimitConfig{ExcludeUpdates: []string{"poll"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			assert.Error(t, Normalize(&cfg))
		})
	}
}

func TestLoadOverlaysEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("telegram:\n  token: from-file\n  owner_id: 7\nlogging:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, int64(7), cfg.Telegram.OwnerID)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
