package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadSQLiteDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "1:abc"
  owner_id: 111
database:
  driver: sqlite
  path: /tmp/filestore.db
bot:
  database_chat_id: -1001234567890
  initial_admins: [222, 333]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StorageSQL, cfg.Storage.Driver)
	assert.Equal(t, 64, cfg.Storage.CacheSize)
	assert.Equal(t, 5*time.Minute, cfg.Storage.CacheTTL())
	assert.Equal(t, 45*time.Second, cfg.Bot.PromptTimeout())
	assert.Equal(t, 3*time.Second, cfg.Bot.CaptionDelay())
	assert.Equal(t, []int64{222, 333}, cfg.Bot.InitialAdmins)
	assert.Equal(t, int64(111), cfg.CoreConfig().Telegram.OwnerID)
	assert.Equal(t, 1, cfg.Database.MaxConnections)
	assert.NotEmpty(t, cfg.Bot.StartText)
}

func TestLoadRedisFromEnv(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "1:abc"
  owner_id: 111
storage:
  driver: redis
bot:
  database_chat_id: -100
`)
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("PROMPT_TIMEOUT_SECONDS", "10")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "filestore:", cfg.Redis.Prefix)
	assert.Equal(t, 10*time.Second, cfg.Bot.PromptTimeout())
}

func TestNormalizeRejects(t *testing.T) {
	base := func() Config {
		var c Config
		c.Telegram.Token = "t"
		c.Telegram.OwnerID = 1
		c.Storage.Driver = StorageMemory
		c.Bot.DatabaseChatID = -100
		return c
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "mongo" }},
		{name: "redis without addr", mutate: func(c *Config) { c.Storage.Driver = StorageRedis }},
		{name: "sql without database", mutate: func(c *Config) { c.Storage.Driver = StorageSQL }},
		{name: "missing database chat", mutate: func(c *Config) { c.Bot.DatabaseChatID = 0 }},
		{name: "negative caption delay", mutate: func(c *Config) { c.Bot.CaptionDelayMS = -1 }},
		{name: "missing owner", mutate: func(c *Config) { c.Telegram.OwnerID = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			assert.Error(t, Normalize(&cfg))
		})
	}

	ok := base()
	require.NoError(t, Normalize(&ok))
}
